// Package rules applies hand-authored categorization rules: internal-transfer
// detection and a static mapping from bank source categories to budget
// categories. This tier is deterministic and never calls any service.
package rules

import (
	"strings"

	"github.com/mendoza-g/centavo/internal/model"
)

// transferPhrases are description fragments that mark a transaction as a
// movement between the user's own accounts.
var transferPhrases = []string{
	"TRANSFER TO",
	"TRANSFER FROM",
	"INTERNAL TRANSFER",
	"VIREMENT INTERNE",
	"OWN ACCOUNT",
	"ACCOUNT TO ACCOUNT",
}

type sourceKey struct {
	category    string
	subcategory string
}

type mapping struct {
	budgetType  model.BudgetType
	subcategory string
}

// sourceMappings maps known (source_category, source_subcategory) pairs from
// bank exports onto the budget taxonomy. Keys are lowercased; an empty
// subcategory matches exports that only carry a top-level category.
var sourceMappings = map[sourceKey]mapping{
	{"income", "salary"}:         {model.BudgetIncome, "Salary"},
	{"income", "freelance"}:      {model.BudgetIncome, "Freelance"},
	{"income", "interest"}:       {model.BudgetIncome, "Interest"},
	{"income", ""}:               {model.BudgetIncome, "Other Income"},
	{"housing", "rent"}:          {model.BudgetCore, "Housing"},
	{"housing", "mortgage"}:      {model.BudgetCore, "Housing"},
	{"housing", ""}:              {model.BudgetCore, "Housing"},
	{"groceries", ""}:            {model.BudgetCore, "Groceries"},
	{"supermarket", ""}:          {model.BudgetCore, "Groceries"},
	{"utilities", "electricity"}: {model.BudgetCore, "Utilities"},
	{"utilities", "water"}:       {model.BudgetCore, "Utilities"},
	{"utilities", "internet"}:    {model.BudgetCore, "Utilities"},
	{"utilities", ""}:            {model.BudgetCore, "Utilities"},
	{"transport", "fuel"}:        {model.BudgetCore, "Transport"},
	{"transport", "public"}:      {model.BudgetCore, "Transport"},
	{"transport", ""}:            {model.BudgetCore, "Transport"},
	{"health", "pharmacy"}:       {model.BudgetCore, "Healthcare"},
	{"health", ""}:               {model.BudgetCore, "Healthcare"},
	{"insurance", ""}:            {model.BudgetCore, "Insurance"},
	{"restaurants", ""}:          {model.BudgetChoice, "Dining"},
	{"dining", ""}:               {model.BudgetChoice, "Dining"},
	{"entertainment", ""}:        {model.BudgetChoice, "Entertainment"},
	{"shopping", ""}:             {model.BudgetChoice, "Shopping"},
	{"travel", ""}:               {model.BudgetChoice, "Travel"},
	{"subscriptions", ""}:        {model.BudgetChoice, "Subscriptions"},
	{"savings", ""}:              {model.BudgetCompound, "Savings"},
	{"investments", ""}:          {model.BudgetCompound, "Investments"},
	{"loan", "repayment"}:        {model.BudgetCompound, "Debt Repayment"},
}

// Matcher is the deterministic rule tier.
type Matcher struct{}

// NewMatcher creates a rule matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match applies the two rule checks in order: transfer detection first, then
// the source-category mapping table. Returns false when neither applies.
// Same input always yields the same output.
func (m *Matcher) Match(txn model.Transaction) (model.CategorizationResult, bool) {
	if isInternalTransfer(txn.Description) {
		return model.CategorizationResult{
			SequenceID:        txn.SequenceID,
			BudgetType:        model.BudgetExcluded,
			BudgetSubcategory: "Internal Transfer",
			Confidence:        1.0,
			Source:            model.SourceRule,
		}, true
	}

	key := sourceKey{
		category:    strings.ToLower(strings.TrimSpace(txn.SourceCategory)),
		subcategory: strings.ToLower(strings.TrimSpace(txn.SourceSubcategory)),
	}
	mapped, ok := sourceMappings[key]
	if !ok {
		// Fall back to the bare category before giving up.
		mapped, ok = sourceMappings[sourceKey{category: key.category}]
	}
	if !ok {
		return model.CategorizationResult{}, false
	}

	return model.CategorizationResult{
		SequenceID:        txn.SequenceID,
		BudgetType:        mapped.budgetType,
		BudgetSubcategory: mapped.subcategory,
		Confidence:        1.0,
		Source:            model.SourceRule,
	}, true
}

func isInternalTransfer(description string) bool {
	upper := strings.ToUpper(description)
	for _, phrase := range transferPhrases {
		if strings.Contains(upper, phrase) {
			return true
		}
	}
	return false
}
