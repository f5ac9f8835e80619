package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smartor/case-ledger/internal/core/domain"
)

// ErrMalformedExtraction means the model violated its output contract. The
// whole action fails; nothing is written.
var ErrMalformedExtraction = errors.New("malformed extraction payload")

type extractedRow struct {
	Item string          `json:"item"`
	Qty  json.RawMessage `json:"qty"`
}

// ParseCandidates validates the model's JSON-array contract. Incidental
// formatting (code fences, stray prose around the array) is stripped first;
// any remaining parse failure is a hard error.
func ParseCandidates(raw string) ([]domain.Candidate, error) {
	payload := stripFences(raw)

	start := strings.Index(payload, "[")
	end := strings.LastIndex(payload, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON array in %q", ErrMalformedExtraction, truncate(raw, 120))
	}
	payload = payload[start : end+1]

	var rows []extractedRow
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}

	candidates := make([]domain.Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, domain.Candidate{
			Item: strings.TrimSpace(row.Item),
			Qty:  coerceQty(row.Qty),
		})
	}
	return candidates, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i != -1 {
		s = s[i+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// coerceQty maps a missing or non-numeric quantity to zero by convention;
// the resolver forwards zero-quantity candidates and the deduction becomes
// a no-op mutation.
func coerceQty(raw json.RawMessage) decimal.Decimal {
	token := strings.TrimSpace(string(raw))
	if token == "" || token == "null" {
		return decimal.Zero
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		token = strings.TrimSpace(s)
	}

	qty, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero
	}
	return qty
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
