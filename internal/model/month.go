package model

import (
	"fmt"
	"regexp"
	"strconv"
)

// ImportMode selects how a month's candidates reconcile against stored data.
type ImportMode string

// Import mode constants.
const (
	ModeReplace ImportMode = "replace"
	ModeMerge   ImportMode = "merge"
)

// ParseImportMode converts a string into an ImportMode.
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(s) {
	case ModeReplace, ModeMerge:
		return ImportMode(s), nil
	default:
		return "", fmt.Errorf("unknown import mode: %q (expected replace or merge)", s)
	}
}

var monthIDPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// ParseMonthID validates a strict YYYY-MM month identifier and splits it
// into its year and month components.
func ParseMonthID(id string) (year, month int, err error) {
	m := monthIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, 0, fmt.Errorf("month identifier %q does not match YYYY-MM", id)
	}
	year, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month identifier %q has month outside 01-12", id)
	}
	return year, month, nil
}

// MonthID formats a year and month pair as a YYYY-MM identifier.
func MonthID(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// MonthImportContext is the per-month working set for one import request.
// It is created per month, never shared across months, and discarded after
// persistence completes or fails.
type MonthImportContext struct {
	MonthID      string
	Mode         ImportMode
	Transactions []Transaction
	ExistingKeys map[string]struct{} // populated only for merge
	Year         int
	Month        int
}

// NewMonthImportContext validates the month identifier and builds a context.
func NewMonthImportContext(monthID string, mode ImportMode, txns []Transaction) (*MonthImportContext, error) {
	year, month, err := ParseMonthID(monthID)
	if err != nil {
		return nil, err
	}
	return &MonthImportContext{
		MonthID:      monthID,
		Year:         year,
		Month:        month,
		Mode:         mode,
		Transactions: txns,
	}, nil
}

// MonthResult summarizes a successfully persisted month.
type MonthResult struct {
	MonthID       string
	Categorized   int
	Skipped       int
	LowConfidence int
	Score         float64
}

// MonthStatus tracks a month through the import state machine.
type MonthStatus string

// Month status constants.
const (
	StatusPending      MonthStatus = "PENDING"
	StatusCategorizing MonthStatus = "CATEGORIZING"
	StatusReconciling  MonthStatus = "RECONCILING"
	StatusPersisted    MonthStatus = "PERSISTED"
	StatusFailed       MonthStatus = "FAILED"
)

var monthTransitions = map[MonthStatus][]MonthStatus{
	StatusPending:      {StatusCategorizing, StatusFailed},
	StatusCategorizing: {StatusReconciling, StatusFailed},
	StatusReconciling:  {StatusPersisted, StatusFailed},
}

// CanTransition reports whether moving from the current status to next is a
// legal state-machine step. PERSISTED and FAILED are terminal.
func (s MonthStatus) CanTransition(next MonthStatus) bool {
	for _, allowed := range monthTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status ends the state machine.
func (s MonthStatus) Terminal() bool {
	return s == StatusPersisted || s == StatusFailed
}
