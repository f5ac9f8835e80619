package domain

import "github.com/shopspring/decimal"

// Candidate is one (item-name, quantity) pair proposed by the extractor for
// a single utterance. The name is free text and may not match any catalog
// entry; the quantity is zero when the extractor omitted or mangled it.
type Candidate struct {
	Item string
	Qty  decimal.Decimal
}

// Resolution classifies a candidate against the catalog snapshot. Item is
// nil when the candidate is unresolved.
type Resolution struct {
	Candidate Candidate
	Item      *InventoryItem
}

func (r Resolution) Resolved() bool {
	return r.Item != nil
}

// Resolve matches one candidate against the snapshot. Pure function, no
// side effects; zero-quantity candidates are forwarded as-is.
func Resolve(c Candidate, snap *Snapshot) Resolution {
	if item, ok := snap.Lookup(c.Item); ok {
		return Resolution{Candidate: c, Item: &item}
	}
	return Resolution{Candidate: c}
}
