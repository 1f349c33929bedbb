package engine

import (
	"context"
	"sync"

	"github.com/mendoza-g/centavo/internal/model"
)

// MockClassifier is a test double for the AI tier. By default it answers
// every transaction with a fixed categorization; Respond or Err override
// that per test.
type MockClassifier struct {
	// Respond, when set, computes the reply for a call.
	Respond func(transactions []model.Transaction) ([]model.CategorizationResult, error)
	// Err, when set, fails every call.
	Err error
	// Fixed reply used when Respond is nil.
	BudgetType        model.BudgetType
	BudgetSubcategory string
	Confidence        float64

	mu    sync.Mutex
	calls [][]model.Transaction
}

// NewMockClassifier creates a mock that classifies everything as CHOICE
// with the given confidence.
func NewMockClassifier(confidence float64) *MockClassifier {
	return &MockClassifier{
		BudgetType:        model.BudgetChoice,
		BudgetSubcategory: "Shopping",
		Confidence:        confidence,
	}
}

// Classify implements the Classifier interface.
func (m *MockClassifier) Classify(_ context.Context, transactions []model.Transaction) ([]model.CategorizationResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, transactions)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Respond != nil {
		return m.Respond(transactions)
	}

	results := make([]model.CategorizationResult, len(transactions))
	for i, txn := range transactions {
		results[i] = model.CategorizationResult{
			SequenceID:        txn.SequenceID,
			BudgetType:        m.BudgetType,
			BudgetSubcategory: m.BudgetSubcategory,
			Confidence:        m.Confidence,
			Source:            model.SourceAI,
		}
	}
	return results, nil
}

// CallCount returns how many times Classify was invoked.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the transactions of the most recent invocation.
func (m *MockClassifier) LastCall() []model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}
