package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/annapurna-pos/api/internal/auth"
	"github.com/annapurna-pos/api/internal/enum"
	"github.com/annapurna-pos/api/internal/handler"
	"github.com/annapurna-pos/api/internal/invoice"
	"github.com/annapurna-pos/api/internal/menu"
	"github.com/annapurna-pos/api/internal/middleware"
	"github.com/annapurna-pos/api/internal/order"
	"github.com/go-chi/chi/v5"
)

// --- Mock InvoiceSubmitter ---

type mockSubmitter struct {
	submitFn func(ctx context.Context, inv invoice.Invoice) (string, error)
}

func (m *mockSubmitter) Submit(ctx context.Context, inv invoice.Invoice) (string, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, inv)
	}
	return inv.Number, nil
}

func setupInvoiceRouter(submitter *mockSubmitter, hub *mockBroadcaster) (*chi.Mux, *order.Store) {
	catalog := testCatalog()
	store := order.NewStore(catalog, 10)
	builder := invoice.NewBuilder(catalog)
	h := handler.NewInvoiceHandler(store, builder, submitter, hub, "en", "Annapurna")
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Post("/tables/{tid}/invoice", h.Generate)
	r.Route("/invoices", h.RegisterRoutes)
	return r, store
}

func billingClaims() *auth.Claims {
	return &auth.Claims{UserID: 7, FullName: "Asha Kulkarni", Role: enum.RoleEmployee}
}

// --- Tests ---

func TestGenerateInvoice_HappyPath(t *testing.T) {
	var submitted *invoice.Invoice
	submitter := &mockSubmitter{
		submitFn: func(ctx context.Context, inv invoice.Invoice) (string, error) {
			submitted = &inv
			return inv.Number, nil
		},
	}
	hub := &mockBroadcaster{}
	router, store := setupInvoiceRouter(submitter, hub)

	if err := store.AddItem(4, "T15", 2); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.AddItem(4, "D23", 1); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rr := doAuthRequest(t, router, "POST", "/tables/4/invoice", nil, billingClaims())
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeMap(t, rr)
	if resp["table_id"] != float64(4) {
		t.Errorf("table_id: got %v", resp["table_id"])
	}
	if resp["issued_by"] != float64(7) {
		t.Errorf("issued_by: got %v, want 7", resp["issued_by"])
	}
	if resp["total"] != "9.00" {
		t.Errorf("total: got %v, want 9.00", resp["total"])
	}
	number, _ := resp["number"].(string)
	if !strings.HasPrefix(number, "INV-") {
		t.Errorf("number: got %v", number)
	}

	if submitted == nil {
		t.Fatal("invoice not submitted to remote service")
	}
	if len(submitted.Lines) != 2 {
		t.Errorf("submitted lines: got %d, want 2", len(submitted.Lines))
	}

	// Payment settles the table.
	if len(store.Order(4)) != 0 {
		t.Error("table not cleared after successful submission")
	}
	types := hub.eventTypes()
	if len(types) != 1 || types[0] != "table.cleared" {
		t.Errorf("broadcasts: got %v, want [table.cleared]", types)
	}
}

func TestGenerateInvoice_EmptyOrder(t *testing.T) {
	router, _ := setupInvoiceRouter(&mockSubmitter{}, &mockBroadcaster{})

	rr := doAuthRequest(t, router, "POST", "/tables/4/invoice", nil, billingClaims())
	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestGenerateInvoice_SubmissionFailureKeepsOrder(t *testing.T) {
	submitter := &mockSubmitter{
		submitFn: func(ctx context.Context, inv invoice.Invoice) (string, error) {
			return "", invoice.ErrSubmitFailed
		},
	}
	hub := &mockBroadcaster{}
	router, store := setupInvoiceRouter(submitter, hub)

	if err := store.AddItem(4, "T15", 2); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rr := doAuthRequest(t, router, "POST", "/tables/4/invoice", nil, billingClaims())
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadGateway)
	}

	// The order survives the failure for resubmission.
	if len(store.Order(4)) != 1 {
		t.Error("order must be retained after failed submission")
	}
	if len(hub.eventTypes()) != 0 {
		t.Error("no broadcast expected on failed submission")
	}
}

func TestGenerateInvoice_UnresolvableItem(t *testing.T) {
	catalog := testCatalog()
	store := order.NewStore(catalog, 10)
	if err := store.AddItem(4, "T15", 1); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Build the invoice against a catalog that lost the item.
	builder := invoice.NewBuilder(testEmptyCatalog{})
	h := handler.NewInvoiceHandler(store, builder, &mockSubmitter{}, &mockBroadcaster{}, "en", "Annapurna")
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Post("/tables/{tid}/invoice", h.Generate)

	rr := doAuthRequest(t, r, "POST", "/tables/4/invoice", nil, billingClaims())
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusUnprocessableEntity, rr.Body.String())
	}

	if len(store.Order(4)) != 1 {
		t.Error("order must be retained when generation fails")
	}
}

func TestGenerateInvoice_InvalidTable(t *testing.T) {
	router, _ := setupInvoiceRouter(&mockSubmitter{}, &mockBroadcaster{})

	rr := doAuthRequest(t, router, "POST", "/tables/99/invoice", nil, billingClaims())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGetInvoiceAndReceipt(t *testing.T) {
	router, store := setupInvoiceRouter(&mockSubmitter{}, &mockBroadcaster{})

	if err := store.AddItem(2, "T15", 2); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rr := doAuthRequest(t, router, "POST", "/tables/2/invoice", nil, billingClaims())
	if rr.Code != http.StatusCreated {
		t.Fatalf("generate: got %d; body: %s", rr.Code, rr.Body.String())
	}
	number := decodeMap(t, rr)["number"].(string)

	rr = doAuthRequest(t, router, "GET", "/invoices/"+number, nil, billingClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("get: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeMap(t, rr); resp["number"] != number {
		t.Errorf("number: got %v, want %s", resp["number"], number)
	}

	rr = doAuthRequest(t, router, "GET", "/invoices/"+number+"/receipt", nil, billingClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("receipt: got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type: got %s", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{"Annapurna", number, "Tea", "4.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("receipt missing %q:\n%s", want, body)
		}
	}
}

func TestGetInvoice_NotFound(t *testing.T) {
	router, _ := setupInvoiceRouter(&mockSubmitter{}, &mockBroadcaster{})

	rr := doAuthRequest(t, router, "GET", "/invoices/INV-9999", nil, billingClaims())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// testEmptyCatalog resolves nothing.
type testEmptyCatalog struct{}

func (testEmptyCatalog) Lookup(code string) (menu.Item, error) {
	return menu.Item{}, menu.ErrNotFound
}
