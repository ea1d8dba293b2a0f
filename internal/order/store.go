package order

import (
	"errors"
	"sort"
	"sync"

	"github.com/annapurna-pos/api/internal/menu"
	"github.com/shopspring/decimal"
)

// Errors returned by the table order store.
var (
	ErrInvalidTable    = errors.New("no valid table selected")
	ErrUnknownMenuItem = errors.New("unknown menu item")
	ErrItemNotInOrder  = errors.New("item not in order")
)

// Catalog defines the menu methods the store needs.
// Satisfied by *menu.Catalog; narrow interface for testability.
type Catalog interface {
	Lookup(code string) (menu.Item, error)
}

// Line is one menu item entry within a table's open order. UnitPrice is
// snapshotted at add time so later catalog changes never reprice an open
// order. Completed is the kitchen's done flag.
type Line struct {
	Code      string
	Quantity  int
	UnitPrice decimal.Decimal
	Completed bool
}

// Ticket is a kitchen-facing snapshot of one table's open order.
type Ticket struct {
	TableID int
	Lines   []Line
}

// Store maps table IDs to their open order lines. Tables are the fixed set
// 1..tableCount; orders are created lazily on first add and live until
// explicitly cleared. One logical writer at a time, but HTTP handlers are
// concurrent, so access is mutex-guarded.
type Store struct {
	mu         sync.RWMutex
	catalog    Catalog
	tableCount int
	orders     map[int][]Line
}

// NewStore creates an empty store over the given catalog and table range.
func NewStore(catalog Catalog, tableCount int) *Store {
	return &Store{
		catalog:    catalog,
		tableCount: tableCount,
		orders:     make(map[int][]Line),
	}
}

func (s *Store) validTable(tableID int) bool {
	return tableID >= 1 && tableID <= s.tableCount
}

// AddItem adds delta units of a menu item to a table's order. Repeated adds
// of the same code merge into one line; the price snapshot is taken on the
// first add and kept on merges.
func (s *Store) AddItem(tableID int, code string, delta int) error {
	if !s.validTable(tableID) {
		return ErrInvalidTable
	}
	if delta < 1 {
		delta = 1
	}

	item, err := s.catalog.Lookup(code)
	if err != nil {
		return ErrUnknownMenuItem
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.orders[tableID]
	for i := range lines {
		if lines[i].Code == code {
			lines[i].Quantity += delta
			lines[i].Completed = false
			return nil
		}
	}
	s.orders[tableID] = append(lines, Line{
		Code:      code,
		Quantity:  delta,
		UnitPrice: item.UnitPrice,
	})
	return nil
}

// Decrement reduces a line's quantity by one, removing the line entirely
// when it would reach zero. A line with quantity 0 is never retained.
func (s *Store) Decrement(tableID int, code string) error {
	if !s.validTable(tableID) {
		return ErrInvalidTable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.orders[tableID]
	for i := range lines {
		if lines[i].Code != code {
			continue
		}
		if lines[i].Quantity <= 1 {
			s.orders[tableID] = append(lines[:i], lines[i+1:]...)
		} else {
			lines[i].Quantity--
		}
		return nil
	}
	return ErrItemNotInOrder
}

// Remove deletes the whole line for a code regardless of quantity.
func (s *Store) Remove(tableID int, code string) error {
	if !s.validTable(tableID) {
		return ErrInvalidTable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.orders[tableID]
	for i := range lines {
		if lines[i].Code == code {
			s.orders[tableID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return ErrItemNotInOrder
}

// UpdateQuantity sets a line's quantity, clamped to a minimum of 1.
// Removal is a distinct operation; this path never drops a line. The price
// snapshot is untouched.
func (s *Store) UpdateQuantity(tableID int, code string, quantity int) error {
	if !s.validTable(tableID) {
		return ErrInvalidTable
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.orders[tableID]
	for i := range lines {
		if lines[i].Code == code {
			lines[i].Quantity = quantity
			return nil
		}
	}
	return ErrItemNotInOrder
}

// SetCompleted toggles the kitchen done flag on a line.
func (s *Store) SetCompleted(tableID int, code string, done bool) error {
	if !s.validTable(tableID) {
		return ErrInvalidTable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.orders[tableID]
	for i := range lines {
		if lines[i].Code == code {
			lines[i].Completed = done
			return nil
		}
	}
	return ErrItemNotInOrder
}

// Order returns a copy of a table's lines in insertion order. Unknown or
// empty tables yield an empty slice, not an error.
func (s *Store) Order(tableID int) []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := s.orders[tableID]
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// Clear drops a table's order. Clearing an empty table is a no-op.
func (s *Store) Clear(tableID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, tableID)
}

// Tickets returns a snapshot of every non-empty table in ascending table
// order, for the kitchen view.
func (s *Store) Tickets() []Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tickets := make([]Ticket, 0, len(s.orders))
	for tableID, lines := range s.orders {
		if len(lines) == 0 {
			continue
		}
		out := make([]Line, len(lines))
		copy(out, lines)
		tickets = append(tickets, Ticket{TableID: tableID, Lines: out})
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].TableID < tickets[j].TableID })
	return tickets
}

// TableCount reports the size of the fixed table set.
func (s *Store) TableCount() int {
	return s.tableCount
}
