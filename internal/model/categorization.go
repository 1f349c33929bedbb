package model

// ResultSource indicates which tier produced a categorization.
type ResultSource string

// Result source constants.
const (
	SourceCache ResultSource = "CACHE"
	SourceRule  ResultSource = "RULE"
	SourceAI    ResultSource = "AI"
)

// LowConfidenceThreshold marks categorizations that need human review.
const LowConfidenceThreshold = 0.8

// CategorizationResult is the outcome of categorizing one transaction.
// Results merged back into a run must align 1:1 with the input by SequenceID.
type CategorizationResult struct {
	BudgetType        BudgetType
	BudgetSubcategory string
	Source            ResultSource
	Confidence        float64
	SequenceID        int
}

// NeedsReview reports whether the confidence is below the review threshold.
func (r *CategorizationResult) NeedsReview() bool {
	return r.Confidence < LowConfidenceThreshold
}
