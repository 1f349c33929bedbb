package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single bank-exported transaction as produced by the
// statement parser. The pipeline treats it as read-only.
type Transaction struct {
	Date              time.Time
	Description       string
	Account           string
	SourceCategory    string
	SourceSubcategory string
	Amount            decimal.Decimal
	SequenceID        int
}

// IsExpense reports whether the transaction moves money out of the account.
func (t *Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// DuplicateKey builds the composite signature used by the import reconciler
// to detect a transaction already stored for a month under merge policy.
func (t *Transaction) DuplicateKey() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		t.Date.Format("2006-01-02"),
		t.Description,
		t.Amount.String(),
		t.Account)
}

// PersistedTransaction is a transaction row as stored for a month, carrying
// its categorization alongside the raw statement fields.
type PersistedTransaction struct {
	CreatedAt         time.Time
	Date              time.Time
	ID                string
	MonthID           string
	Description       string
	Account           string
	SourceCategory    string
	SourceSubcategory string
	BudgetSubcategory string
	DupKey            string
	BudgetType        BudgetType
	Amount            decimal.Decimal
	Confidence        float64
	SequenceID        int
}

// DuplicateKey recomputes the composite signature from the stored fields.
func (p *PersistedTransaction) DuplicateKey() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		p.Date.Format("2006-01-02"),
		p.Description,
		p.Amount.String(),
		p.Account)
}
