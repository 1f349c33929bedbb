package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mendoza-g/centavo/internal/common"
	"github.com/mendoza-g/centavo/internal/model"
)

// DefaultBatchSize is the number of transactions sent per service call.
const DefaultBatchSize = 50

// DefaultMaxRetries is how many times a failed batch call is retried
// before APIConnectionError surfaces.
const DefaultMaxRetries = 3

// BatchClassifier groups uncategorized transactions into fixed-size batches
// and classifies each batch through the external AI service. Batches run
// sequentially so later batches benefit from earlier cache learns.
type BatchClassifier struct {
	client     Client
	logger     *slog.Logger
	batchSize  int
	maxRetries int
	retryDelay time.Duration
}

// NewBatchClassifier creates a batch classifier around an AI client.
func NewBatchClassifier(client Client, cfg Config, logger *slog.Logger) *BatchClassifier {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BatchClassifier{
		client:     client,
		logger:     logger,
		batchSize:  batchSize,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Classify categorizes the given transactions, preserving their order in the
// returned results. Transport failures are retried with exponential backoff;
// unparseable responses and id-set mismatches are fatal for the batch.
func (b *BatchClassifier) Classify(ctx context.Context, transactions []model.Transaction) ([]model.CategorizationResult, error) {
	if len(transactions) == 0 {
		return nil, nil
	}

	results := make([]model.CategorizationResult, 0, len(transactions))
	for start := 0; start < len(transactions); start += b.batchSize {
		end := start + b.batchSize
		if end > len(transactions) {
			end = len(transactions)
		}
		batch := transactions[start:end]

		batchResults, err := b.classifyBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		results = append(results, batchResults...)
	}

	return results, nil
}

func (b *BatchClassifier) classifyBatch(ctx context.Context, batch []model.Transaction) ([]model.CategorizationResult, error) {
	prompt, err := b.buildPrompt(batch)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("classifying batch",
		"batch_size", len(batch),
		"first_sequence_id", batch[0].SequenceID)

	var raw string
	err = common.WithRetry(ctx, func() error {
		out, completeErr := b.client.Complete(ctx, prompt)
		if completeErr != nil {
			return &common.RetryableError{Err: completeErr, Retryable: true}
		}
		raw = out
		return nil
	}, common.RetryOptions{
		MaxAttempts:  b.maxRetries + 1,
		InitialDelay: b.retryDelay,
		Multiplier:   2.0,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &common.APIConnectionError{Err: err, Retries: b.maxRetries}
	}

	return b.parseResponse(raw, batch)
}

// requestTransaction is the per-transaction shape of the service request.
type requestTransaction struct {
	SequenceID        int    `json:"sequence_id"`
	Date              string `json:"date"`
	Description       string `json:"description"`
	Amount            string `json:"amount"`
	SourceCategory    string `json:"source_category"`
	SourceSubcategory string `json:"source_subcategory"`
}

func (b *BatchClassifier) buildPrompt(batch []model.Transaction) (string, error) {
	payload := make([]requestTransaction, len(batch))
	for i, txn := range batch {
		payload[i] = requestTransaction{
			SequenceID:        txn.SequenceID,
			Date:              txn.Date.Format("2006-01-02"),
			Description:       txn.Description,
			Amount:            txn.Amount.String(),
			SourceCategory:    txn.SourceCategory,
			SourceSubcategory: txn.SourceSubcategory,
		}
	}

	body, err := json.Marshal(map[string]any{"transactions": payload})
	if err != nil {
		return "", fmt.Errorf("failed to marshal batch request: %w", err)
	}

	var taxonomy strings.Builder
	for _, bt := range model.AllBudgetTypes {
		taxonomy.WriteString(fmt.Sprintf("- %s: %s\n", bt, strings.Join(model.Subcategories[bt], ", ")))
	}

	return fmt.Sprintf(`Categorize each bank transaction below into the budget taxonomy.

Budget types and their subcategories:
%s
Transactions (negative amount = expense):
%s

Respond with ONLY a JSON array, one object per transaction, covering every
sequence_id exactly once:
[{"sequence_id": <int>, "budget_type": "<type>", "budget_subcategory": "<name>", "confidence": <0.0-1.0>}]`,
		taxonomy.String(),
		string(body)), nil
}

// responseItem is one element of the service's JSON reply.
type responseItem struct {
	Confidence        *float64 `json:"confidence"`
	BudgetType        string   `json:"budget_type"`
	BudgetSubcategory string   `json:"budget_subcategory"`
	SequenceID        int      `json:"sequence_id"`
}

func (b *BatchClassifier) parseResponse(raw string, batch []model.Transaction) ([]model.CategorizationResult, error) {
	content := stripMarkdownFence(raw)

	var items []responseItem
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, &common.InvalidResponseError{Raw: raw}
	}

	requested := make(map[int]bool, len(batch))
	for _, txn := range batch {
		requested[txn.SequenceID] = true
	}

	byID := make(map[int]model.CategorizationResult, len(items))
	var mismatched []int
	for _, item := range items {
		if !requested[item.SequenceID] {
			// Extra ids the service invented are a defect, same as gaps.
			mismatched = append(mismatched, item.SequenceID)
			continue
		}
		if _, dup := byID[item.SequenceID]; dup {
			mismatched = append(mismatched, item.SequenceID)
			continue
		}
		byID[item.SequenceID] = b.toResult(item)
	}

	for _, txn := range batch {
		if _, ok := byID[txn.SequenceID]; !ok {
			mismatched = append(mismatched, txn.SequenceID)
		}
	}

	// Results in original batch order, for both success and partial recovery.
	ordered := make([]model.CategorizationResult, 0, len(byID))
	for _, txn := range batch {
		if result, ok := byID[txn.SequenceID]; ok {
			ordered = append(ordered, result)
		}
	}

	if len(mismatched) > 0 {
		sort.Ints(mismatched)
		return nil, &common.BatchCategorizationError{
			FailedIDs: mismatched,
			Partial:   ordered,
		}
	}

	return ordered, nil
}

func (b *BatchClassifier) toResult(item responseItem) model.CategorizationResult {
	confidence := 1.0
	if item.Confidence != nil {
		confidence = *item.Confidence
	}

	budgetType, err := model.ParseBudgetType(item.BudgetType)
	if err != nil {
		// Unknown categories must not abort a batch; flag for manual review.
		b.logger.Warn("classification returned unknown budget type",
			"sequence_id", item.SequenceID,
			"budget_type", item.BudgetType)
		return model.CategorizationResult{
			SequenceID:        item.SequenceID,
			BudgetType:        model.BudgetExcluded,
			BudgetSubcategory: "Manual Review",
			Confidence:        0.0,
			Source:            model.SourceAI,
		}
	}

	return model.CategorizationResult{
		SequenceID:        item.SequenceID,
		BudgetType:        budgetType,
		BudgetSubcategory: item.BudgetSubcategory,
		Confidence:        confidence,
		Source:            model.SourceAI,
	}
}

// stripMarkdownFence removes surrounding ```json fencing that some models
// wrap around structured output.
func stripMarkdownFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
