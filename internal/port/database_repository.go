package port

import (
	"context"

	"github.com/smartor/case-ledger/internal/core/domain"
)

type CatalogRepository interface {
	// ListItems returns the full catalog for a session snapshot
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)

	// GetItem retrieves one item by its stable id
	GetItem(ctx context.Context, id string) (*domain.InventoryItem, error)

	// SeedItems inserts initial catalog rows when the table is empty
	SeedItems(ctx context.Context, items []domain.InventoryItem) error
}

type LedgerRepository interface {
	// RecordUsage appends the ledger row and deducts the item's on-hand
	// quantity in one transaction, so a candidate's (deduct + log) pair is
	// atomic and independent of its batch siblings
	RecordUsage(ctx context.Context, entry domain.LogEntry, itemID string, policy domain.StockPolicy) error

	// AppendEntry writes one zero-cost row (not-found candidates, workflow
	// stamps, safety counts); existing rows are never touched
	AppendEntry(ctx context.Context, entry domain.LogEntry) error

	// ListEntries returns every row ever written, oldest first
	ListEntries(ctx context.Context) ([]domain.LogEntry, error)
}
