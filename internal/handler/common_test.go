package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/annapurna-pos/api/internal/auth"
	"github.com/annapurna-pos/api/internal/enum"
	"github.com/annapurna-pos/api/internal/menu"
	"github.com/annapurna-pos/api/internal/ws"
	"github.com/shopspring/decimal"
)

const testJWTSecret = "test-secret-for-handlers"

// --- Mock Broadcaster ---

type broadcastCall struct {
	Event ws.Event
	Views []enum.View
}

type mockBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (m *mockBroadcaster) BroadcastToViews(event ws.Event, views ...enum.View) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, broadcastCall{Event: event, Views: views})
}

func (m *mockBroadcaster) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.calls))
	for i, c := range m.calls {
		types[i] = c.Event.Type
	}
	return types
}

// --- Test catalog ---

func testCatalog() *menu.Catalog {
	return menu.NewCatalog([]menu.Item{
		{ID: 1, Code: "T15", Name: "Tea", LocalName: "चहा", UnitPrice: decimal.NewFromInt(2)},
		{ID: 2, Code: "D23", Name: "Dosa", LocalName: "डोसा", UnitPrice: decimal.NewFromInt(5)},
		{ID: 3, Code: "C10", Name: "Coffee", LocalName: "कॉफी", UnitPrice: decimal.NewFromInt(3)},
	}, []string{"T15", "D23"})
}

// --- Request helpers ---

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()

	token, err := auth.GenerateToken(testJWTSecret, claims.UserID, claims.FullName, claims.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeSlice(t *testing.T, rr *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var resp []interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}
