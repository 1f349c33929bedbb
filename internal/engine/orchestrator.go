// Package engine runs the three-tier categorization flow and the per-month
// import boundary.
package engine

import (
	"context"
	"log/slog"

	"github.com/mendoza-g/centavo/internal/common"
	"github.com/mendoza-g/centavo/internal/model"
	"github.com/mendoza-g/centavo/internal/sigcache"
)

// Orchestrator runs the categorization tiers in order: cache, rules, then
// the batched AI classifier for whatever remains.
type Orchestrator struct {
	cache      SignatureCache
	rules      RuleMatcher
	classifier Classifier
	logger     *slog.Logger
}

// NewOrchestrator creates an orchestrator over the three tiers.
func NewOrchestrator(cache SignatureCache, rules RuleMatcher, classifier Classifier, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cache:      cache,
		rules:      rules,
		classifier: classifier,
		logger:     logger,
	}
}

// Categorize assigns a budget category to every transaction, preserving the
// input order in the result. If the AI tier fails, its error propagates
// unmodified and no tier-3 results are applied.
func (o *Orchestrator) Categorize(ctx context.Context, transactions []model.Transaction) ([]model.CategorizationResult, error) {
	resolved := make(map[int]model.CategorizationResult, len(transactions))
	byID := make(map[int]model.Transaction, len(transactions))
	var remainder []model.Transaction

	for _, txn := range transactions {
		byID[txn.SequenceID] = txn

		// Cache wins over rules; both win over the AI tier.
		if result, ok := o.cache.Lookup(txn); ok {
			resolved[txn.SequenceID] = result
			continue
		}
		if result, ok := o.rules.Match(txn); ok {
			resolved[txn.SequenceID] = result
			continue
		}
		remainder = append(remainder, txn)
	}

	o.logger.Debug("tier 1 and 2 complete",
		"total", len(transactions),
		"resolved", len(resolved),
		"remainder", len(remainder))

	if len(remainder) > 0 {
		aiResults, err := o.classifier.Classify(ctx, remainder)
		if err != nil {
			return nil, err
		}

		for _, result := range aiResults {
			resolved[result.SequenceID] = result
			if result.Source == model.SourceAI && result.Confidence >= sigcache.LearnThreshold {
				o.cache.Learn(byID[result.SequenceID], result)
			}
		}
	}

	// Merge back into the original ordering by sequence id. A gap after a
	// successful batch is a defect, never silently dropped.
	merged := make([]model.CategorizationResult, 0, len(transactions))
	var missing []int
	for _, txn := range transactions {
		result, ok := resolved[txn.SequenceID]
		if !ok {
			missing = append(missing, txn.SequenceID)
			continue
		}
		merged = append(merged, result)
	}
	if len(missing) > 0 {
		return nil, &common.BatchCategorizationError{FailedIDs: missing, Partial: merged}
	}

	return merged, nil
}
