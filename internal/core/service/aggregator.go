package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/smartor/case-ledger/internal/core/domain"
	"github.com/smartor/case-ledger/internal/port"
)

// CaseAggregator derives per-case metrics from the full ledger stream. It is
// a pure projection recomputed from scratch on every call; it holds no
// state of its own.
type CaseAggregator struct {
	ledger port.LedgerRepository
}

func NewCaseAggregator(ledger port.LedgerRepository) *CaseAggregator {
	return &CaseAggregator{ledger: ledger}
}

// Totals scans and filters the whole log: entry count, summed line cost,
// and cost grouped by category for one case.
func (a *CaseAggregator) Totals(ctx context.Context, caseID string) (domain.CaseTotals, error) {
	entries, err := a.ledger.ListEntries(ctx)
	if err != nil {
		return domain.CaseTotals{}, fmt.Errorf("read ledger: %w", err)
	}

	totals := domain.CaseTotals{
		CaseID:         caseID,
		TotalCost:      decimal.Zero,
		CostByCategory: make(map[string]decimal.Decimal),
	}
	for _, e := range entries {
		if e.CaseID != caseID {
			continue
		}
		totals.EntryCount++
		totals.TotalCost = totals.TotalCost.Add(e.Cost)
		if cur, ok := totals.CostByCategory[e.Category]; ok {
			totals.CostByCategory[e.Category] = cur.Add(e.Cost)
		} else {
			totals.CostByCategory[e.Category] = e.Cost
		}
	}
	return totals, nil
}

// RecentEntries returns the case's newest entries first, truncated to limit.
func (a *CaseAggregator) RecentEntries(ctx context.Context, caseID string, limit int) ([]domain.LogEntry, error) {
	entries, err := a.ledger.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	matched := make([]domain.LogEntry, 0, limit)
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].CaseID != caseID {
			continue
		}
		matched = append(matched, entries[i])
		if limit > 0 && len(matched) == limit {
			break
		}
	}
	return matched, nil
}

// State reports the workflow position of one case, derived by replay.
func (a *CaseAggregator) State(ctx context.Context, caseID string) (domain.CaseState, error) {
	entries, err := a.ledger.ListEntries(ctx)
	if err != nil {
		return "", fmt.Errorf("read ledger: %w", err)
	}
	return domain.ReplayWorkflow(entries, caseID), nil
}
