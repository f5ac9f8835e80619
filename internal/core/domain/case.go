package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type WorkflowStage string

const (
	StagePatientIn WorkflowStage = "Patient In"
	StageIncision  WorkflowStage = "Incision"
	StageCloseSkin WorkflowStage = "Close Skin"
)

type CaseState string

const (
	CaseNotStarted CaseState = "not_started"
	CaseInProgress CaseState = "in_progress"
	CaseClosed     CaseState = "closed"
)

var ErrBadTransition = errors.New("workflow stamp out of order")

// Next returns the state after applying one workflow stamp. Transitions are
// monotonic: Patient In opens the case, Incision requires an open case,
// Close Skin closes it, and a closed case accepts nothing.
func (s CaseState) Next(stage WorkflowStage) (CaseState, error) {
	switch stage {
	case StagePatientIn:
		if s != CaseNotStarted {
			return s, ErrBadTransition
		}
		return CaseInProgress, nil
	case StageIncision:
		if s != CaseInProgress {
			return s, ErrBadTransition
		}
		return CaseInProgress, nil
	case StageCloseSkin:
		if s != CaseInProgress {
			return s, ErrBadTransition
		}
		return CaseClosed, nil
	default:
		return s, fmt.Errorf("unknown workflow stage %q", stage)
	}
}

// ReplayWorkflow derives the current case state from the full ledger stream.
// Entries from other cases and non-workflow entries are skipped; malformed
// stamps (which the writer rejects anyway) are ignored.
func ReplayWorkflow(entries []LogEntry, caseID string) CaseState {
	state := CaseNotStarted
	for _, e := range entries {
		if e.CaseID != caseID || e.Source != SourceWorkflow {
			continue
		}
		if next, err := state.Next(WorkflowStage(e.Item)); err == nil {
			state = next
		}
	}
	return state
}

type CountPhase string

const (
	CountInitial CountPhase = "Initial Count"
	CountClosing CountPhase = "Closing Count"
)

// CountLabel builds the controlled-vocabulary item name for a safety-count
// confirmation entry.
func CountLabel(phase CountPhase, correct bool) string {
	if correct {
		return string(phase) + " Correct"
	}
	return string(phase) + " Discrepancy"
}

// CaseTotals is the read-side projection over the ledger for one case.
type CaseTotals struct {
	CaseID         string
	EntryCount     int
	TotalCost      decimal.Decimal
	CostByCategory map[string]decimal.Decimal
}
