package engine

import (
	"context"

	"github.com/mendoza-g/centavo/internal/model"
)

// Classifier is the tier-3 collaborator: batched AI classification of
// transactions the cache and rules could not resolve.
type Classifier interface {
	Classify(ctx context.Context, transactions []model.Transaction) ([]model.CategorizationResult, error)
}

// RuleMatcher is the tier-2 collaborator: deterministic rule matching.
type RuleMatcher interface {
	Match(txn model.Transaction) (model.CategorizationResult, bool)
}

// SignatureCache is the tier-1 collaborator: signature lookup plus learning
// of high-confidence AI results.
type SignatureCache interface {
	Lookup(txn model.Transaction) (model.CategorizationResult, bool)
	Learn(txn model.Transaction, result model.CategorizationResult)
}
