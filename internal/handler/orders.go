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
	"github.com/shopspring/decimal"
)

// TableStore defines the order store methods needed by table handlers.
// Satisfied by *order.Store; narrow interface for testability.
type TableStore interface {
	AddItem(tableID int, code string, delta int) error
	Decrement(tableID int, code string) error
	Remove(tableID int, code string) error
	UpdateQuantity(tableID int, code string, quantity int) error
	Order(tableID int) []order.Line
	Clear(tableID int)
	TableCount() int
}

// Broadcaster pushes events to the view rooms.
// Satisfied by *ws.Hub; narrow interface for testability.
type Broadcaster interface {
	BroadcastToViews(event ws.Event, views ...enum.View)
}

// TableHandler handles per-table order endpoints for the billing view.
type TableHandler struct {
	store   TableStore
	catalog order.Catalog
	hub     Broadcaster
	locale  string
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(store TableStore, catalog order.Catalog, hub Broadcaster, defaultLocale string) *TableHandler {
	return &TableHandler{store: store, catalog: catalog, hub: hub, locale: defaultLocale}
}

// RegisterRoutes registers table order endpoints on the given Chi router.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Route("/{tid}", func(r chi.Router) {
		r.Get("/order", h.GetOrder)
		r.Delete("/order", h.ClearOrder)
		r.Post("/items", h.AddItem)
		r.Patch("/items/{code}", h.UpdateQuantity)
		r.Post("/items/{code}/decrement", h.DecrementItem)
		r.Delete("/items/{code}", h.RemoveItem)
	})
}

// --- Request / Response types ---

type addItemRequest struct {
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type lineResponse struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
	Completed   bool   `json:"completed"`
}

type orderResponse struct {
	TableID int            `json:"table_id"`
	Lines   []lineResponse `json:"lines"`
	Total   string         `json:"total"`
}

type tableSummaryResponse struct {
	TableID  int    `json:"table_id"`
	Occupied bool   `json:"occupied"`
	Items    int    `json:"items"`
	Total    string `json:"total"`
}

// --- Handlers ---

// List handles GET /tables: every table with its open-order summary.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	count := h.store.TableCount()
	resp := make([]tableSummaryResponse, count)
	for tid := 1; tid <= count; tid++ {
		lines := h.store.Order(tid)
		items := 0
		for _, l := range lines {
			items += l.Quantity
		}
		resp[tid-1] = tableSummaryResponse{
			TableID:  tid,
			Occupied: len(lines) > 0,
			Items:    items,
			Total:    order.Total(lines).StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOrder handles GET /tables/{tid}/order.
func (h *TableHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	tableID, ok := h.tableID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.orderResponse(tableID))
}

// AddItem handles POST /tables/{tid}/items.
func (h *TableHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	tableID, ok := h.tableID(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code is required"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.store.AddItem(tableID, req.Code, req.Quantity); err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.broadcastOrder(tableID)
	writeJSON(w, http.StatusOK, h.orderResponse(tableID))
}

// UpdateQuantity handles PATCH /tables/{tid}/items/{code}.
func (h *TableHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	tableID, ok := h.tableID(w, r)
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.store.UpdateQuantity(tableID, code, req.Quantity); err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.broadcastOrder(tableID)
	writeJSON(w, http.StatusOK, h.orderResponse(tableID))
}

// DecrementItem handles POST /tables/{tid}/items/{code}/decrement.
func (h *TableHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	tableID, ok := h.tableID(w, r)
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")

	if err := h.store.Decrement(tableID, code); err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.broadcastOrder(tableID)
	writeJSON(w, http.StatusOK, h.orderResponse(tableID))
}

// RemoveItem handles DELETE /tables/{tid}/items/{code}.
func (h *TableHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	tableID, ok := h.tableID(w, r)
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")

	if err := h.store.Remove(tableID, code); err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.broadcastOrder(tableID)
	writeJSON(w, http.StatusOK, h.orderResponse(tableID))
}

// ClearOrder handles DELETE /tables/{tid}/order.
func (h *TableHandler) ClearOrder(w http.ResponseWriter, r *http.Request) {
	tableID, ok := h.tableID(w, r)
	if !ok {
		return
	}

	h.store.Clear(tableID)
	h.broadcastCleared(tableID)
	writeJSON(w, http.StatusOK, h.orderResponse(tableID))
}

// --- Helpers ---

func (h *TableHandler) tableID(w http.ResponseWriter, r *http.Request) (int, bool) {
	tid, err := strconv.Atoi(chi.URLParam(r, "tid"))
	if err != nil || tid < 1 || tid > h.store.TableCount() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table"})
		return 0, false
	}
	return tid, true
}

func (h *TableHandler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrInvalidTable):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table"})
	case errors.Is(err, order.ErrUnknownMenuItem):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown menu item"})
	case errors.Is(err, order.ErrItemNotInOrder):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not in order"})
	default:
		log.Printf("ERROR: table order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func (h *TableHandler) orderResponse(tableID int) orderResponse {
	return toOrderResponse(tableID, h.store.Order(tableID), h.catalog, h.locale)
}

func toOrderResponse(tableID int, lines []order.Line, catalog order.Catalog, locale string) orderResponse {
	resp := orderResponse{
		TableID: tableID,
		Lines:   make([]lineResponse, len(lines)),
		Total:   order.Total(lines).StringFixed(2),
	}
	for i, l := range lines {
		resp.Lines[i] = lineResponse{
			Code:        l.Code,
			DisplayName: order.DisplayName(catalog, l.Code, locale),
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice.StringFixed(2),
			LineTotal:   l.UnitPrice.Mul(decimalFromInt(l.Quantity)).StringFixed(2),
			Completed:   l.Completed,
		}
	}
	return resp
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func (h *TableHandler) broadcastOrder(tableID int) {
	payload, err := json.Marshal(h.orderResponse(tableID))
	if err != nil {
		return
	}
	h.hub.BroadcastToViews(ws.Event{Type: "order.updated", Payload: payload}, enum.ViewKitchen, enum.ViewBilling)
}

func (h *TableHandler) broadcastCleared(tableID int) {
	payload, err := json.Marshal(map[string]int{"table_id": tableID})
	if err != nil {
		return
	}
	h.hub.BroadcastToViews(ws.Event{Type: "table.cleared", Payload: payload}, enum.ViewKitchen, enum.ViewBilling)
}
