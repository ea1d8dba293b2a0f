package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	JWTSecret      string
	StaffAPIURL    string
	MenuAPIURL     string
	InvoiceAPIURL  string
	RestaurantName string
	TableCount     int
	DefaultLocale  string
}

func Load() *Config {
	// Missing .env is fine; env vars win either way.
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8081"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		StaffAPIURL:    getEnv("STAFF_API_URL", "http://localhost:9090/api"),
		MenuAPIURL:     getEnv("MENU_API_URL", "http://localhost:9090/api"),
		InvoiceAPIURL:  getEnv("INVOICE_API_URL", "http://localhost:9090/api"),
		RestaurantName: getEnv("RESTAURANT_NAME", "Annapurna"),
		TableCount:     getEnvInt("TABLE_COUNT", 10),
		DefaultLocale:  getEnv("DEFAULT_LOCALE", "mr"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
