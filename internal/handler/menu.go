package handler

import (
	"net/http"

	"github.com/annapurna-pos/api/internal/enum"
	"github.com/annapurna-pos/api/internal/menu"
	"github.com/go-chi/chi/v5"
)

// MenuCatalog defines the catalog methods needed by menu handlers.
// Satisfied by *menu.Catalog; narrow interface for testability.
type MenuCatalog interface {
	All() []menu.Item
	Frequent() []menu.Item
}

// MenuHandler serves the read-only menu.
type MenuHandler struct {
	catalog       MenuCatalog
	defaultLocale string
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(catalog MenuCatalog, defaultLocale string) *MenuHandler {
	return &MenuHandler{catalog: catalog, defaultLocale: defaultLocale}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/frequent", h.Frequent)
}

type menuItemResponse struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	UnitPrice   string `json:"unit_price"`
}

func (h *MenuHandler) locale(r *http.Request) string {
	if l := r.URL.Query().Get("locale"); l == enum.LocaleEnglish || l == enum.LocaleMarathi {
		return l
	}
	return h.defaultLocale
}

// List handles GET /menu.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toMenuResponses(h.catalog.All(), h.locale(r)))
}

// Frequent handles GET /menu/frequent, the quick-add shortlist.
func (h *MenuHandler) Frequent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toMenuResponses(h.catalog.Frequent(), h.locale(r)))
}

func toMenuResponses(items []menu.Item, locale string) []menuItemResponse {
	resp := make([]menuItemResponse, len(items))
	for i, it := range items {
		resp[i] = menuItemResponse{
			ID:          it.ID,
			Code:        it.Code,
			Name:        it.Name,
			DisplayName: it.DisplayName(locale),
			UnitPrice:   it.UnitPrice.StringFixed(2),
		}
	}
	return resp
}
