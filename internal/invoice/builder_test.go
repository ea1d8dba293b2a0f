package invoice_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/annapurna-pos/api/internal/invoice"
	"github.com/annapurna-pos/api/internal/menu"
	"github.com/annapurna-pos/api/internal/order"
	"github.com/shopspring/decimal"
)

// --- Mock Catalog ---

type mockCatalog struct {
	lookupFn func(code string) (menu.Item, error)
}

func (m *mockCatalog) Lookup(code string) (menu.Item, error) {
	if m.lookupFn != nil {
		return m.lookupFn(code)
	}
	return menu.Item{}, menu.ErrNotFound
}

func seededCatalog() *mockCatalog {
	items := map[string]menu.Item{
		"T15": {ID: 1, Code: "T15", Name: "Tea", LocalName: "चहा", UnitPrice: decimal.NewFromInt(2)},
		"D23": {ID: 2, Code: "D23", Name: "Dosa", LocalName: "डोसा", UnitPrice: decimal.NewFromInt(5)},
	}
	return &mockCatalog{
		lookupFn: func(code string) (menu.Item, error) {
			it, ok := items[code]
			if !ok {
				return menu.Item{}, menu.ErrNotFound
			}
			return it, nil
		},
	}
}

// --- Tests ---

func TestGenerate_HappyPath(t *testing.T) {
	b := invoice.NewBuilder(seededCatalog())

	lines := []order.Line{
		{Code: "T15", Quantity: 2, UnitPrice: decimal.NewFromInt(2)},
		{Code: "D23", Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
	}

	inv, err := b.Generate(4, lines, 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if inv.TableID != 4 {
		t.Errorf("table: got %d, want 4", inv.TableID)
	}
	if inv.IssuedBy != 7 {
		t.Errorf("issued by: got %d, want 7", inv.IssuedBy)
	}
	if len(inv.Lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(inv.Lines))
	}
	if inv.Lines[0].Name != "Tea" || inv.Lines[0].MenuID != 1 {
		t.Errorf("line 0 not denormalized: %+v", inv.Lines[0])
	}
	if !inv.Lines[0].LineTotal.Equal(decimal.NewFromInt(4)) {
		t.Errorf("line 0 total: got %s, want 4", inv.Lines[0].LineTotal)
	}
	if !inv.Total.Equal(decimal.NewFromInt(9)) {
		t.Errorf("total: got %s, want 9", inv.Total)
	}
	if inv.GeneratedAt.IsZero() {
		t.Error("generated at not set")
	}
}

func TestGenerate_EmptyOrder(t *testing.T) {
	b := invoice.NewBuilder(seededCatalog())

	if _, err := b.Generate(1, nil, 7); !errors.Is(err, invoice.ErrEmptyOrder) {
		t.Fatalf("got %v, want ErrEmptyOrder", err)
	}
}

func TestGenerate_UnresolvableItem(t *testing.T) {
	b := invoice.NewBuilder(seededCatalog())

	lines := []order.Line{
		{Code: "T15", Quantity: 1, UnitPrice: decimal.NewFromInt(2)},
		{Code: "X99", Quantity: 1, UnitPrice: decimal.NewFromInt(9)},
	}

	_, err := b.Generate(1, lines, 7)
	if !errors.Is(err, invoice.ErrUnresolvableItem) {
		t.Fatalf("got %v, want ErrUnresolvableItem", err)
	}
}

func TestGenerate_NumbersMonotonic(t *testing.T) {
	b := invoice.NewBuilder(seededCatalog())
	lines := []order.Line{{Code: "T15", Quantity: 1, UnitPrice: decimal.NewFromInt(2)}}

	var prev string
	for i := 0; i < 5; i++ {
		inv, err := b.Generate(1, lines, 7)
		if err != nil {
			t.Fatalf("generate %d: %v", i, err)
		}
		want := fmt.Sprintf("INV-%04d", i+1)
		if inv.Number != want {
			t.Errorf("number %d: got %s, want %s", i, inv.Number, want)
		}
		if inv.Number == prev {
			t.Errorf("duplicate number %s", inv.Number)
		}
		prev = inv.Number
	}
}

func TestGenerate_NumbersUniqueUnderConcurrency(t *testing.T) {
	b := invoice.NewBuilder(seededCatalog())
	lines := []order.Line{{Code: "T15", Quantity: 1, UnitPrice: decimal.NewFromInt(2)}}

	const n = 50
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := b.Generate(1, lines, 7)
			if err != nil {
				t.Errorf("generate: %v", err)
				return
			}
			numbers <- inv.Number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, n)
	for num := range numbers {
		if seen[num] {
			t.Fatalf("duplicate invoice number %s", num)
		}
		seen[num] = true
	}
}

func TestGenerate_SnapshotImmuneToLaterEdits(t *testing.T) {
	b := invoice.NewBuilder(seededCatalog())

	lines := []order.Line{{Code: "T15", Quantity: 2, UnitPrice: decimal.NewFromInt(2)}}
	inv, err := b.Generate(1, lines, 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	lines[0].Quantity = 50
	if inv.Lines[0].Quantity != 2 {
		t.Errorf("invoice mutated through source lines: got %d, want 2", inv.Lines[0].Quantity)
	}
}

func TestGenerate_ClampsNegativeQuantity(t *testing.T) {
	b := invoice.NewBuilder(seededCatalog())

	lines := []order.Line{
		{Code: "T15", Quantity: -3, UnitPrice: decimal.NewFromInt(2)},
		{Code: "D23", Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
	}

	inv, err := b.Generate(1, lines, 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if inv.Lines[0].Quantity != 0 {
		t.Errorf("quantity: got %d, want 0", inv.Lines[0].Quantity)
	}
	if !inv.Total.Equal(decimal.NewFromInt(5)) {
		t.Errorf("total: got %s, want 5", inv.Total)
	}
}
