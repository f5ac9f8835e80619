package port

import (
	"context"

	"github.com/shopspring/decimal"
)

type CacheRepository interface {
	// DecrementStock atomically decreases the mirrored stock, returns false
	// if the mirror would go negative
	DecrementStock(ctx context.Context, itemID string, qty decimal.Decimal) (bool, error)

	// AdjustStock shifts the mirrored stock by delta with no floor (rollback
	// on failure, or best-effort mirror maintenance)
	AdjustStock(ctx context.Context, itemID string, delta decimal.Decimal) error

	// SetStock overwrites the mirrored stock (session-start sync)
	SetStock(ctx context.Context, itemID string, qty decimal.Decimal) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
