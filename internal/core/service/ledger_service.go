package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/smartor/case-ledger/internal/core/domain"
	"github.com/smartor/case-ledger/internal/port"
)

var (
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNoCatalog         = errors.New("catalog snapshot not loaded")
	ErrCaseClosed        = errors.New("case is closed")
)

type LineStatus string

const (
	LineRecorded LineStatus = "recorded"
	LineNotFound LineStatus = "not_found"
	LineFailed   LineStatus = "failed"
)

// UsageLine is the per-candidate outcome of one utterance. A failed line
// never blocks or rolls back its batch siblings.
type UsageLine struct {
	Item   string
	Qty    decimal.Decimal
	Unit   string
	Cost   decimal.Decimal
	Status LineStatus
	Error  string
}

type LedgerService struct {
	catalog   port.CatalogRepository
	ledger    port.LedgerRepository
	cache     port.CacheRepository
	extractor port.Extractor
	policy    domain.StockPolicy

	mu   sync.RWMutex
	snap *domain.Snapshot
}

func NewLedgerService(catalog port.CatalogRepository, ledger port.LedgerRepository, cache port.CacheRepository, extractor port.Extractor, policy domain.StockPolicy) *LedgerService {
	return &LedgerService{
		catalog:   catalog,
		ledger:    ledger,
		cache:     cache,
		extractor: extractor,
		policy:    policy,
	}
}

// LoadSnapshot reads the full catalog into the session snapshot and syncs
// the stock mirror. Fatal for the session when the store is unreachable:
// all ledger actions refuse to run until a snapshot exists.
func (s *LedgerService) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	items, err := s.catalog.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	snap := domain.NewSnapshot(items)
	for _, item := range items {
		if err := s.cache.SetStock(ctx, item.ID, item.OnHand); err != nil {
			return nil, fmt.Errorf("sync stock mirror: %w", err)
		}
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return snap, nil
}

func (s *LedgerService) Snapshot() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// RecordUsage runs one user action end to end: idempotency gate, extraction,
// then resolve → deduct → log per candidate, strictly in extractor order.
// An extraction failure writes nothing; a candidate failure is isolated to
// its own line.
func (s *LedgerService) RecordUsage(ctx context.Context, requestID, caseID string, u port.Utterance) ([]UsageLine, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, ErrNoCatalog
	}

	ok, err := s.cache.SetIdempotency(ctx, fmt.Sprintf("usage:%s", requestID))
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return nil, ErrDuplicateRequest
	}

	candidates, err := s.extractor.Extract(ctx, u, snap.Names())
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	source := domain.SourceText
	if u.IsVoice() {
		source = domain.SourceVoice
	}

	lines := make([]UsageLine, 0, len(candidates))
	for _, c := range candidates {
		lines = append(lines, s.recordCandidate(ctx, caseID, c, snap, source))
	}
	return lines, nil
}

func (s *LedgerService) recordCandidate(ctx context.Context, caseID string, c domain.Candidate, snap *domain.Snapshot, source domain.SourceTag) UsageLine {
	res := domain.Resolve(c, snap)

	if !res.Resolved() {
		entry := domain.LogEntry{
			ID:        uuid.New().String(),
			Timestamp: time.Now(),
			CaseID:    caseID,
			Item:      c.Item,
			Qty:       c.Qty,
			Unit:      domain.Placeholder,
			Category:  domain.Placeholder,
			Cost:      decimal.Zero,
			Source:    domain.SourceNotFound,
		}
		if err := s.ledger.AppendEntry(ctx, entry); err != nil {
			return UsageLine{Item: c.Item, Qty: c.Qty, Status: LineFailed, Error: err.Error()}
		}
		return UsageLine{Item: c.Item, Qty: c.Qty, Status: LineNotFound}
	}

	item := *res.Item
	cost := item.UnitPrice.Mul(c.Qty)

	// When negatives are rejected, gate on the mirror first, then persist,
	// rolling the gate back if persistence fails.
	gated := s.policy == domain.PolicyReject
	if gated {
		ok, err := s.cache.DecrementStock(ctx, item.ID, c.Qty)
		if err != nil {
			return UsageLine{Item: item.Name, Qty: c.Qty, Unit: item.Unit, Status: LineFailed, Error: err.Error()}
		}
		if !ok {
			return UsageLine{Item: item.Name, Qty: c.Qty, Unit: item.Unit, Status: LineFailed, Error: ErrInsufficientStock.Error()}
		}
	}

	entry := domain.LogEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		CaseID:    caseID,
		Item:      item.Name,
		Qty:       c.Qty,
		Unit:      item.Unit,
		Category:  item.Category,
		Cost:      cost,
		Source:    source,
	}

	if err := s.ledger.RecordUsage(ctx, entry, item.ID, s.policy); err != nil {
		if gated {
			if rollbackErr := s.cache.AdjustStock(ctx, item.ID, c.Qty); rollbackErr != nil {
				log.Error().Err(rollbackErr).Str("item", item.Name).Msg("CRITICAL: stock mirror rollback failed")
			}
		}
		return UsageLine{Item: item.Name, Qty: c.Qty, Unit: item.Unit, Status: LineFailed, Error: err.Error()}
	}

	if !gated {
		// Best-effort mirror maintenance; the store stays authoritative.
		if err := s.cache.AdjustStock(ctx, item.ID, c.Qty.Neg()); err != nil {
			log.Warn().Err(err).Str("item", item.Name).Msg("stock mirror adjust failed")
		}
	}

	return UsageLine{Item: item.Name, Qty: c.Qty, Unit: item.Unit, Cost: cost, Status: LineRecorded}
}

// RecordStamp appends one workflow marker after validating the case state
// machine: stamps are monotonic and a closed case accepts nothing.
func (s *LedgerService) RecordStamp(ctx context.Context, requestID, caseID string, stage domain.WorkflowStage) error {
	ok, err := s.cache.SetIdempotency(ctx, fmt.Sprintf("stamp:%s", requestID))
	if err != nil {
		return fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return ErrDuplicateRequest
	}

	entries, err := s.ledger.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	state := domain.ReplayWorkflow(entries, caseID)
	if _, err := state.Next(stage); err != nil {
		return err
	}

	entry := domain.LogEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		CaseID:    caseID,
		Item:      string(stage),
		Qty:       decimal.Zero,
		Unit:      domain.Placeholder,
		Category:  domain.Placeholder,
		Cost:      decimal.Zero,
		Source:    domain.SourceWorkflow,
	}
	return s.ledger.AppendEntry(ctx, entry)
}

// RecordSafetyCount appends one count confirmation. Counts are rejected once
// the case is closed but carry no ordering of their own.
func (s *LedgerService) RecordSafetyCount(ctx context.Context, requestID, caseID string, phase domain.CountPhase, correct bool) error {
	ok, err := s.cache.SetIdempotency(ctx, fmt.Sprintf("count:%s", requestID))
	if err != nil {
		return fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return ErrDuplicateRequest
	}

	entries, err := s.ledger.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	if domain.ReplayWorkflow(entries, caseID) == domain.CaseClosed {
		return ErrCaseClosed
	}

	entry := domain.LogEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		CaseID:    caseID,
		Item:      domain.CountLabel(phase, correct),
		Qty:       decimal.Zero,
		Unit:      domain.Placeholder,
		Category:  domain.Placeholder,
		Cost:      decimal.Zero,
		Source:    domain.SourceSafetyCount,
	}
	return s.ledger.AppendEntry(ctx, entry)
}
