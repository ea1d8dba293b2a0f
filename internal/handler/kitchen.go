package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/annapurna-pos/api/internal/enum"
	"github.com/annapurna-pos/api/internal/order"
	"github.com/annapurna-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
)

// KitchenStore defines the store methods needed by kitchen handlers.
// Satisfied by *order.Store; narrow interface for testability.
type KitchenStore interface {
	Tickets() []order.Ticket
	SetCompleted(tableID int, code string, completed bool) error
	TableCount() int
}

// KitchenHandler serves the kitchen display: open tickets and per-item
// completion toggles.
type KitchenHandler struct {
	store KitchenStore
	hub   Broadcaster
}

// NewKitchenHandler creates a new KitchenHandler.
func NewKitchenHandler(store KitchenStore, hub Broadcaster) *KitchenHandler {
	return &KitchenHandler{store: store, hub: hub}
}

// RegisterRoutes registers kitchen endpoints on the given Chi router.
func (h *KitchenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tickets", h.ListTickets)
	r.Patch("/tables/{tid}/items/{code}", h.SetItemCompleted)
}

// --- Request/Response types ---

type setCompletedRequest struct {
	Completed bool `json:"completed"`
}

type ticketItemResponse struct {
	Code      string `json:"code"`
	Quantity  int    `json:"quantity"`
	Completed bool   `json:"completed"`
}

type ticketResponse struct {
	TableID int                  `json:"table_id"`
	Items   []ticketItemResponse `json:"items"`
}

// --- Handlers ---

// ListTickets handles GET /kitchen/tickets. Tables with no pending
// items are omitted.
func (h *KitchenHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets := h.store.Tickets()
	resp := make([]ticketResponse, len(tickets))
	for i, t := range tickets {
		items := make([]ticketItemResponse, len(t.Lines))
		for j, l := range t.Lines {
			items[j] = ticketItemResponse{Code: l.Code, Quantity: l.Quantity, Completed: l.Completed}
		}
		resp[i] = ticketResponse{TableID: t.TableID, Items: items}
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetItemCompleted handles PATCH /kitchen/tables/{tid}/items/{code}.
func (h *KitchenHandler) SetItemCompleted(w http.ResponseWriter, r *http.Request) {
	tid, err := strconv.Atoi(chi.URLParam(r, "tid"))
	if err != nil || tid < 1 || tid > h.store.TableCount() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table"})
		return
	}
	code := chi.URLParam(r, "code")

	var req setCompletedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.store.SetCompleted(tid, code, req.Completed); err != nil {
		if errors.Is(err, order.ErrItemNotInOrder) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not in order"})
			return
		}
		log.Printf("ERROR: set completed table %d item %s: %v", tid, code, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcastTicket(tid, code, req.Completed)
	w.WriteHeader(http.StatusNoContent)
}

func (h *KitchenHandler) broadcastTicket(tableID int, code string, completed bool) {
	payload, err := json.Marshal(map[string]interface{}{
		"table_id":  tableID,
		"code":      code,
		"completed": completed,
	})
	if err != nil {
		return
	}
	h.hub.BroadcastToViews(ws.Event{Type: "ticket.updated", Payload: payload}, enum.ViewKitchen, enum.ViewBilling)
}
