// Package model defines the core domain models used throughout the application.
package model

import "fmt"

// BudgetType is the top-level budget categorization assigned to a transaction.
type BudgetType string

// Budget type constants.
const (
	BudgetIncome   BudgetType = "INCOME"
	BudgetCore     BudgetType = "CORE"
	BudgetChoice   BudgetType = "CHOICE"
	BudgetCompound BudgetType = "COMPOUND"
	BudgetExcluded BudgetType = "EXCLUDED"
)

// AllBudgetTypes lists every valid budget type.
var AllBudgetTypes = []BudgetType{
	BudgetIncome,
	BudgetCore,
	BudgetChoice,
	BudgetCompound,
	BudgetExcluded,
}

// ParseBudgetType converts a string into a BudgetType, rejecting anything
// outside the fixed enumeration.
func ParseBudgetType(s string) (BudgetType, error) {
	for _, bt := range AllBudgetTypes {
		if string(bt) == s {
			return bt, nil
		}
	}
	return "", fmt.Errorf("unknown budget type: %q", s)
}

// Valid reports whether the budget type is part of the fixed enumeration.
func (b BudgetType) Valid() bool {
	_, err := ParseBudgetType(string(b))
	return err == nil
}

// Subcategories lists the known subcategory names for each budget type.
// Subcategories are free text on the wire but constrained to these per type.
var Subcategories = map[BudgetType][]string{
	BudgetIncome:   {"Salary", "Freelance", "Interest", "Refund", "Other Income"},
	BudgetCore:     {"Housing", "Groceries", "Utilities", "Transport", "Healthcare", "Insurance", "Education"},
	BudgetChoice:   {"Dining", "Entertainment", "Shopping", "Travel", "Subscriptions", "Hobbies"},
	BudgetCompound: {"Savings", "Investments", "Debt Repayment"},
	BudgetExcluded: {"Internal Transfer", "Manual Review"},
}
