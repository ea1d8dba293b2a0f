package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/annapurna-pos/api/internal/config"
	"github.com/annapurna-pos/api/internal/menu"
	"github.com/annapurna-pos/api/internal/order"
	"github.com/annapurna-pos/api/internal/router"
	"github.com/annapurna-pos/api/internal/ws"
)

func main() {
	cfg := config.Load()

	catalog := loadCatalog(cfg)

	store := order.NewStore(catalog, cfg.TableCount)

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, catalog, store, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}

// loadCatalog fetches the menu from the remote menu service, falling back
// to the built-in catalog when the service is unreachable at startup.
func loadCatalog(cfg *config.Config) *menu.Catalog {
	if cfg.MenuAPIURL == "" {
		log.Println("MENU_API_URL not set, using built-in menu")
		return menu.Seed()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := menu.NewClient(cfg.MenuAPIURL)
	items, err := client.Fetch(ctx, cfg.DefaultLocale)
	if err != nil {
		log.Printf("ERROR: fetch menu: %v, using built-in menu", err)
		return menu.Seed()
	}

	log.Printf("Loaded %d menu items from %s", len(items), cfg.MenuAPIURL)
	return menu.NewCatalog(items, menu.DefaultFrequent)
}
