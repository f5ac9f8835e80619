package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SourceTag string

const (
	SourceText        SourceTag = "Text"
	SourceVoice       SourceTag = "Voice"
	SourceNotFound    SourceTag = "Not Found"
	SourceWorkflow    SourceTag = "Workflow"
	SourceSafetyCount SourceTag = "Safety Count"
)

// Placeholder for unit/category on entries that carry no catalog reference
// (unresolved candidates, workflow stamps, safety counts).
const Placeholder = "-"

// LogEntry is one immutable row in the append-only case timeline. Material
// usage, workflow stamps and safety counts all share this sink and are
// distinguished by source tag and item-name convention.
type LogEntry struct {
	ID        string
	Timestamp time.Time
	CaseID    string
	Item      string
	Qty       decimal.Decimal
	Unit      string
	Category  string
	Cost      decimal.Decimal
	Source    SourceTag
}
