package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/annapurna-pos/api/internal/enum"
	"github.com/annapurna-pos/api/internal/invoice"
	"github.com/annapurna-pos/api/internal/middleware"
	"github.com/annapurna-pos/api/internal/order"
	"github.com/annapurna-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// InvoiceBuilder defines the builder methods needed by invoice handlers.
// Satisfied by *invoice.Builder; narrow interface for testability.
type InvoiceBuilder interface {
	Generate(tableID int, lines []order.Line, issuedBy int64) (invoice.Invoice, error)
}

// InvoiceSubmitter submits invoices to the remote invoice service.
// Satisfied by *invoice.Client; narrow interface for testability.
type InvoiceSubmitter interface {
	Submit(ctx context.Context, inv invoice.Invoice) (string, error)
}

// InvoiceHandler generates, submits, and serves printable invoices.
// Generated invoices are held in memory only for the preview and print
// endpoints; the remote service owns their persistence.
type InvoiceHandler struct {
	store      TableStore
	builder    InvoiceBuilder
	submitter  InvoiceSubmitter
	hub        Broadcaster
	locale     string
	restaurant string

	mu     sync.RWMutex
	recent map[string]invoice.Invoice
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(store TableStore, builder InvoiceBuilder, submitter InvoiceSubmitter, hub Broadcaster, defaultLocale, restaurantName string) *InvoiceHandler {
	return &InvoiceHandler{
		store:      store,
		builder:    builder,
		submitter:  submitter,
		hub:        hub,
		locale:     defaultLocale,
		restaurant: restaurantName,
		recent:     make(map[string]invoice.Invoice),
	}
}

// RegisterRoutes registers invoice lookup endpoints on the given Chi
// router. Generate is nested under the tables routes by the caller.
func (h *InvoiceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{number}", h.Get)
	r.Get("/{number}/receipt", h.Receipt)
}

// --- Response types ---

type invoiceLineResponse struct {
	MenuID    int64  `json:"menu_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type invoiceResponse struct {
	ID           uuid.UUID             `json:"id"`
	Number       string                `json:"number"`
	ServerNumber string                `json:"server_number,omitempty"`
	TableID      int                   `json:"table_id"`
	IssuedBy     int64                 `json:"issued_by"`
	GeneratedAt  time.Time             `json:"generated_at"`
	Lines        []invoiceLineResponse `json:"lines"`
	Total        string                `json:"total"`
}

// --- Handlers ---

// Generate handles POST /tables/{tid}/invoice: snapshot the table's order,
// submit it remotely, and clear the table on success. Submission failures
// keep the order intact so the operator can resubmit.
func (h *InvoiceHandler) Generate(w http.ResponseWriter, r *http.Request) {
	tid, err := strconv.Atoi(chi.URLParam(r, "tid"))
	if err != nil || tid < 1 || tid > h.store.TableCount() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	inv, err := h.builder.Generate(tid, h.store.Order(tid), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrEmptyOrder):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order is empty"})
		case errors.Is(err, invoice.ErrUnresolvableItem):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: generate invoice: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	serverNumber, err := h.submitter.Submit(r.Context(), inv)
	if err != nil {
		// The order stays on the table; resubmission is the retry path.
		log.Printf("ERROR: submit invoice %s: %v", inv.Number, err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "invoice service unavailable, please retry"})
		return
	}

	h.mu.Lock()
	h.recent[inv.Number] = inv
	h.mu.Unlock()

	h.store.Clear(tid)
	h.broadcastCleared(tid, inv.Number)

	writeJSON(w, http.StatusCreated, toInvoiceResponse(inv, serverNumber))
}

// Get handles GET /invoices/{number}.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.lookup(chi.URLParam(r, "number"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invoice not found"})
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv, ""))
}

// Receipt handles GET /invoices/{number}/receipt, the printable view.
func (h *InvoiceHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.lookup(chi.URLParam(r, "number"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invoice not found"})
		return
	}

	locale := h.locale
	if l := r.URL.Query().Get("locale"); l == enum.LocaleEnglish || l == enum.LocaleMarathi {
		locale = l
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(invoice.Receipt(inv, locale, h.restaurant))); err != nil {
		log.Printf("ERROR: write receipt: %v", err)
	}
}

// --- Helpers ---

func (h *InvoiceHandler) lookup(number string) (invoice.Invoice, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	inv, ok := h.recent[number]
	return inv, ok
}

func (h *InvoiceHandler) broadcastCleared(tableID int, invoiceNumber string) {
	payload, err := json.Marshal(map[string]interface{}{
		"table_id": tableID,
		"invoice":  invoiceNumber,
	})
	if err != nil {
		return
	}
	h.hub.BroadcastToViews(ws.Event{Type: "table.cleared", Payload: payload}, enum.ViewKitchen, enum.ViewBilling)
}

func toInvoiceResponse(inv invoice.Invoice, serverNumber string) invoiceResponse {
	resp := invoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		TableID:     inv.TableID,
		IssuedBy:    inv.IssuedBy,
		GeneratedAt: inv.GeneratedAt,
		Lines:       make([]invoiceLineResponse, len(inv.Lines)),
		Total:       inv.Total.StringFixed(2),
	}
	if serverNumber != "" && serverNumber != inv.Number {
		resp.ServerNumber = serverNumber
	}
	for i, l := range inv.Lines {
		resp.Lines[i] = invoiceLineResponse{
			MenuID:    l.MenuID,
			Code:      l.Code,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			LineTotal: l.LineTotal.StringFixed(2),
		}
	}
	return resp
}
