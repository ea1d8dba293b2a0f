package router

import (
	"log"
	"net/http"

	"github.com/annapurna-pos/api/internal/auth"
	"github.com/annapurna-pos/api/internal/config"
	"github.com/annapurna-pos/api/internal/enum"
	"github.com/annapurna-pos/api/internal/handler"
	"github.com/annapurna-pos/api/internal/invoice"
	"github.com/annapurna-pos/api/internal/menu"
	mw "github.com/annapurna-pos/api/internal/middleware"
	"github.com/annapurna-pos/api/internal/order"
	"github.com/annapurna-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, catalog *menu.Catalog, store *order.Store, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	staffClient := auth.NewClient(cfg.StaffAPIURL)
	authHandler := handler.NewAuthHandler(staffClient, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		sessionHandler := handler.NewSessionHandler()
		sessionHandler.RegisterRoutes(r)

		// Billing routes (kitchen staff are routed to their own view)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin, enum.RoleEmployee, enum.RoleOwner))

			menuHandler := handler.NewMenuHandler(catalog, cfg.DefaultLocale)
			r.Route("/menu", menuHandler.RegisterRoutes)

			builder := invoice.NewBuilder(catalog)
			submitter := invoice.NewClient(cfg.InvoiceAPIURL)
			invoiceHandler := handler.NewInvoiceHandler(store, builder, submitter, hub, cfg.DefaultLocale, cfg.RestaurantName)

			tableHandler := handler.NewTableHandler(store, catalog, hub, cfg.DefaultLocale)
			r.Route("/tables", func(r chi.Router) {
				tableHandler.RegisterRoutes(r)

				// Billing (nested under tables)
				r.Post("/{tid}/invoice", invoiceHandler.Generate)
			})

			r.Route("/invoices", invoiceHandler.RegisterRoutes)
		})

		// Kitchen routes (admins and the owner may oversee)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleKitchen, enum.RoleAdmin, enum.RoleOwner))

			kitchenHandler := handler.NewKitchenHandler(store, hub)
			r.Route("/kitchen", kitchenHandler.RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
