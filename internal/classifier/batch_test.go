package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendoza-g/centavo/internal/common"
	"github.com/mendoza-g/centavo/internal/model"
)

// mockClient scripts Complete responses per call.
type mockClient struct {
	respond func(call int, prompt string) (string, error)
	prompts []string
}

func (m *mockClient) Complete(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.respond(len(m.prompts)-1, prompt)
}

func testConfig() Config {
	return Config{RetryDelay: time.Millisecond}
}

func makeTransactions(n int) []model.Transaction {
	txns := make([]model.Transaction, n)
	for i := range txns {
		txns[i] = model.Transaction{
			SequenceID:  i,
			Date:        time.Date(2025, 1, 1+i%27, 0, 0, 0, 0, time.UTC),
			Description: fmt.Sprintf("MERCHANT %d", i),
			Amount:      decimal.RequireFromString("-10.50"),
			Account:     "Checking",
		}
	}
	return txns
}

// responseFor builds a well-formed JSON reply covering seq ids [from, to).
func responseFor(from, to int) string {
	var items []string
	for id := from; id < to; id++ {
		items = append(items, fmt.Sprintf(
			`{"sequence_id": %d, "budget_type": "CHOICE", "budget_subcategory": "Shopping", "confidence": 0.9}`, id))
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestBatchClassifier_Classify(t *testing.T) {
	client := &mockClient{respond: func(_ int, _ string) (string, error) {
		return responseFor(0, 3), nil
	}}
	bc := NewBatchClassifier(client, testConfig(), nil)

	results, err := bc.Classify(context.Background(), makeTransactions(3))
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, i, result.SequenceID)
		assert.Equal(t, model.BudgetChoice, result.BudgetType)
		assert.Equal(t, "Shopping", result.BudgetSubcategory)
		assert.Equal(t, model.SourceAI, result.Source)
	}

	// The request payload lists every transaction field the service needs.
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], `"sequence_id":0`)
	assert.Contains(t, client.prompts[0], "MERCHANT 2")
	assert.Contains(t, client.prompts[0], `"amount":"-10.5"`)
}

func TestBatchClassifier_EmptyInput(t *testing.T) {
	client := &mockClient{respond: func(_ int, _ string) (string, error) {
		t.Fatal("no call expected for empty input")
		return "", nil
	}}
	bc := NewBatchClassifier(client, testConfig(), nil)

	results, err := bc.Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBatchClassifier_PartitionsIntoBatchesOfFifty(t *testing.T) {
	ranges := [][2]int{{0, 50}, {50, 100}, {100, 120}}
	client := &mockClient{respond: func(call int, _ string) (string, error) {
		return responseFor(ranges[call][0], ranges[call][1]), nil
	}}
	bc := NewBatchClassifier(client, testConfig(), nil)

	results, err := bc.Classify(context.Background(), makeTransactions(120))
	require.NoError(t, err)
	require.Len(t, results, 120)
	assert.Len(t, client.prompts, 3, "120 transactions should use 3 batches")

	// Concatenation preserves the original relative order.
	for i, result := range results {
		assert.Equal(t, i, result.SequenceID)
	}
}

func TestBatchClassifier_RetriesThenConnectionError(t *testing.T) {
	client := &mockClient{respond: func(_ int, _ string) (string, error) {
		return "", errors.New("connection refused")
	}}
	bc := NewBatchClassifier(client, testConfig(), nil)

	_, err := bc.Classify(context.Background(), makeTransactions(1))
	require.Error(t, err)

	var connErr *common.APIConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, 3, connErr.Retries)
	assert.ErrorIs(t, err, common.ErrCategorization)
	assert.Len(t, client.prompts, 4, "initial call plus three retries")
}

func TestBatchClassifier_TransientFailureRecovers(t *testing.T) {
	client := &mockClient{respond: func(call int, _ string) (string, error) {
		if call < 2 {
			return "", errors.New("503 service unavailable")
		}
		return responseFor(0, 2), nil
	}}
	bc := NewBatchClassifier(client, testConfig(), nil)

	results, err := bc.Classify(context.Background(), makeTransactions(2))
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Len(t, client.prompts, 3)
}

func TestBatchClassifier_InvalidResponseNotRetried(t *testing.T) {
	client := &mockClient{respond: func(_ int, _ string) (string, error) {
		return "I am sorry, I cannot categorize these.", nil
	}}
	bc := NewBatchClassifier(client, testConfig(), nil)

	_, err := bc.Classify(context.Background(), makeTransactions(1))
	require.Error(t, err)

	var respErr *common.InvalidResponseError
	require.ErrorAs(t, err, &respErr)
	assert.ErrorIs(t, err, common.ErrCategorization)
	assert.Len(t, client.prompts, 1, "parse failures are not transient")
}

func TestBatchClassifier_InvalidResponseTruncatedInMessage(t *testing.T) {
	raw := strings.Repeat("x", 500)
	err := (&common.InvalidResponseError{Raw: raw}).Error()
	assert.Less(t, len(err), 300)
	assert.Contains(t, err, "...")
}

func TestBatchClassifier_StripsMarkdownFence(t *testing.T) {
	client := &mockClient{respond: func(_ int, _ string) (string, error) {
		return "```json\n" + responseFor(0, 1) + "\n```", nil
	}}
	bc := NewBatchClassifier(client, testConfig(), nil)

	results, err := bc.Classify(context.Background(), makeTransactions(1))
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestBatchClassifier_MissingConfidenceDefaultsToOne(t *testing.T) {
	client := &mockClient{respond: func(_ int, _ string) (string, error) {
		return `[{"sequence_id": 0, "budget_type": "CORE", "budget_subcategory": "Groceries"}]`, nil
	}}
	bc := NewBatchClassifier(client, testConfig(), nil)

	results, err := bc.Classify(context.Background(), makeTransactions(1))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].Confidence)
}

func TestBatchClassifier_UnknownBudgetTypeFlagsForReview(t *testing.T) {
	client := &mockClient{respond: func(_ int, _ string) (string, error) {
		return `[{"sequence_id": 0, "budget_type": "SPLURGE", "budget_subcategory": "Whatever", "confidence": 0.9}]`, nil
	}}
	bc := NewBatchClassifier(client, testConfig(), nil)

	results, err := bc.Classify(context.Background(), makeTransactions(1))
	require.NoError(t, err, "unknown categories must not abort the batch")
	require.Len(t, results, 1)
	assert.Equal(t, model.BudgetExcluded, results[0].BudgetType)
	assert.Equal(t, "Manual Review", results[0].BudgetSubcategory)
	assert.Equal(t, 0.0, results[0].Confidence)
}

func TestBatchClassifier_MissingIDFailsBatch(t *testing.T) {
	client := &mockClient{respond: func(_ int, _ string) (string, error) {
		return responseFor(0, 2), nil // id 2 never answered
	}}
	bc := NewBatchClassifier(client, testConfig(), nil)

	_, err := bc.Classify(context.Background(), makeTransactions(3))
	require.Error(t, err)

	var batchErr *common.BatchCategorizationError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, []int{2}, batchErr.FailedIDs)
	assert.Len(t, batchErr.Partial, 2, "valid subset is carried for the caller")
}

func TestBatchClassifier_ExtraIDFailsBatch(t *testing.T) {
	client := &mockClient{respond: func(_ int, _ string) (string, error) {
		return responseFor(0, 3), nil // id 2 was never requested
	}}
	bc := NewBatchClassifier(client, testConfig(), nil)

	_, err := bc.Classify(context.Background(), makeTransactions(2))
	require.Error(t, err)

	var batchErr *common.BatchCategorizationError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, []int{2}, batchErr.FailedIDs)
}

func TestStripMarkdownFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no fence", input: `[1]`, want: `[1]`},
		{name: "json fence", input: "```json\n[1]\n```", want: `[1]`},
		{name: "bare fence", input: "```\n[1]\n```", want: `[1]`},
		{name: "surrounding whitespace", input: "  ```json\n[1]\n```  ", want: `[1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdownFence(tt.input))
		})
	}
}
