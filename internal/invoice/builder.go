package invoice

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/annapurna-pos/api/internal/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Errors returned by the invoice builder.
var (
	ErrEmptyOrder       = errors.New("order has no items")
	ErrUnresolvableItem = errors.New("order item no longer on the menu")
)

// Line is one billed row, fully denormalized from the catalog at
// generation time.
type Line struct {
	MenuID    int64
	Code      string
	Name      string
	LocalName string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Invoice is an immutable billing snapshot of a table's order. It holds no
// references back into the live order; later edits to the table never
// change a generated invoice.
type Invoice struct {
	ID          uuid.UUID
	Number      string
	TableID     int
	IssuedBy    int64
	GeneratedAt time.Time
	Lines       []Line
	Total       decimal.Decimal
}

// Builder snapshots table orders into invoices. Numbers come from a
// process-wide monotonic counter, so rapid generation within the same
// millisecond still yields unique numbers.
type Builder struct {
	catalog order.Catalog
	seq     atomic.Uint64
	now     func() time.Time
}

// NewBuilder creates a Builder over the catalog.
func NewBuilder(catalog order.Catalog) *Builder {
	return &Builder{catalog: catalog, now: time.Now}
}

// Generate produces an invoice from a table's current lines. Every line
// must still resolve in the catalog; a catalog that changed mid-session
// fails the whole invoice rather than billing a partial one.
func (b *Builder) Generate(tableID int, lines []order.Line, issuedBy int64) (Invoice, error) {
	if len(lines) == 0 {
		return Invoice{}, ErrEmptyOrder
	}

	invLines := make([]Line, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		item, err := b.catalog.Lookup(l.Code)
		if err != nil {
			return Invoice{}, fmt.Errorf("%w: %s", ErrUnresolvableItem, l.Code)
		}
		qty := l.Quantity
		if qty < 0 {
			qty = 0
		}
		lineTotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
		invLines = append(invLines, Line{
			MenuID:    item.ID,
			Code:      l.Code,
			Name:      item.Name,
			LocalName: item.LocalName,
			Quantity:  qty,
			UnitPrice: l.UnitPrice,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}

	return Invoice{
		ID:          uuid.New(),
		Number:      fmt.Sprintf("INV-%04d", b.seq.Add(1)),
		TableID:     tableID,
		IssuedBy:    issuedBy,
		GeneratedAt: b.now().UTC(),
		Lines:       invLines,
		Total:       total,
	}, nil
}
