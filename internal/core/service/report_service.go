package service

import (
	"context"
	"fmt"

	"github.com/smartor/case-ledger/internal/port"
)

// reportEntryWindow caps how much of the case timeline goes into the
// synthesis prompt.
const reportEntryWindow = 50

// ReportService drives the generative side: end-of-case reports and
// pick-list suggestions. Output is prose for display only.
type ReportService struct {
	assistant  port.Assistant
	aggregator *CaseAggregator
}

func NewReportService(assistant port.Assistant, aggregator *CaseAggregator) *ReportService {
	return &ReportService{assistant: assistant, aggregator: aggregator}
}

func (r *ReportService) CaseReport(ctx context.Context, caseID, surgeon, procedure string) (string, error) {
	totals, err := r.aggregator.Totals(ctx, caseID)
	if err != nil {
		return "", err
	}
	entries, err := r.aggregator.RecentEntries(ctx, caseID, reportEntryWindow)
	if err != nil {
		return "", err
	}

	report, err := r.assistant.SummarizeCase(ctx, surgeon, procedure, totals, entries)
	if err != nil {
		return "", fmt.Errorf("case report failed: %w", err)
	}
	return report, nil
}

func (r *ReportService) PickList(ctx context.Context, surgeon, procedure string) (string, error) {
	suggestion, err := r.assistant.SuggestPickList(ctx, surgeon, procedure)
	if err != nil {
		return "", fmt.Errorf("pick list suggestion failed: %w", err)
	}
	return suggestion, nil
}
