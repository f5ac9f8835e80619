package port

import (
	"context"

	"github.com/smartor/case-ledger/internal/core/domain"
)

// Utterance is one raw user input: typed text or a recorded audio payload.
type Utterance struct {
	Text      string
	Audio     []byte
	AudioMIME string
}

func (u Utterance) IsVoice() bool {
	return len(u.Audio) > 0
}

type Extractor interface {
	// Extract turns one utterance into candidate (item, qty) pairs, given
	// the known catalog names as context. The model's output contract is a
	// strict JSON array; anything that fails to parse after defensive
	// cleanup is a hard error and yields no candidates.
	Extract(ctx context.Context, u Utterance, knownItems []string) ([]domain.Candidate, error)
}

type Assistant interface {
	// SummarizeCase synthesizes the end-of-case report (ICD-10 / ICD-9-CM
	// coding, cost review) from the aggregated usage. Output is prose and
	// is not consumed by any downstream component.
	SummarizeCase(ctx context.Context, surgeon, procedure string, totals domain.CaseTotals, entries []domain.LogEntry) (string, error)

	// SuggestPickList recommends consumables to prepare for a procedure.
	SuggestPickList(ctx context.Context, surgeon, procedure string) (string, error)
}
