package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Unit      string
	Category  string
	OnHand    decimal.Decimal
	Version   int // optimistic locking
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot is the point-in-time catalog copy read once per ledger session.
// It is advisory: deductions are re-validated against the store at mutation
// time, never against the snapshot.
type Snapshot struct {
	items   map[string]InventoryItem
	names   []string
	takenAt time.Time
}

func NewSnapshot(items []InventoryItem) *Snapshot {
	s := &Snapshot{
		items:   make(map[string]InventoryItem, len(items)),
		names:   make([]string, 0, len(items)),
		takenAt: time.Now(),
	}
	for _, item := range items {
		s.items[item.Name] = item
		s.names = append(s.names, item.Name)
	}
	return s
}

// Lookup matches by exact case-sensitive name equality. No normalization,
// no fuzzy matching.
func (s *Snapshot) Lookup(name string) (InventoryItem, bool) {
	item, ok := s.items[name]
	return item, ok
}

func (s *Snapshot) Names() []string {
	return s.names
}

func (s *Snapshot) Items() []InventoryItem {
	items := make([]InventoryItem, 0, len(s.names))
	for _, name := range s.names {
		items = append(items, s.items[name])
	}
	return items
}

func (s *Snapshot) TakenAt() time.Time {
	return s.takenAt
}
