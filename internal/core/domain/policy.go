package domain

import "fmt"

// StockPolicy decides what happens when a deduction would push on-hand
// quantity below zero.
type StockPolicy string

const (
	// PolicyAllowNegative applies the deduction unconditionally; on-hand
	// may go negative and must not be silently clamped.
	PolicyAllowNegative StockPolicy = "allow-negative"

	// PolicyReject fails the candidate and leaves stock untouched.
	PolicyReject StockPolicy = "reject"

	// PolicyClamp floors on-hand at zero; the ledger still records the
	// requested quantity.
	PolicyClamp StockPolicy = "clamp"
)

func ParseStockPolicy(s string) (StockPolicy, error) {
	switch StockPolicy(s) {
	case PolicyAllowNegative, PolicyReject, PolicyClamp:
		return StockPolicy(s), nil
	case "":
		return PolicyAllowNegative, nil
	default:
		return "", fmt.Errorf("unknown stock policy %q", s)
	}
}
