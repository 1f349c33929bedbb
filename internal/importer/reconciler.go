// Package importer reconciles a month's categorized transactions against
// already-stored data under the replace and merge import policies.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mendoza-g/centavo/internal/common"
	"github.com/mendoza-g/centavo/internal/model"
	"github.com/mendoza-g/centavo/internal/service"
)

// PersistencePlan is the effective write set for one month. DeleteMonth is
// set only under replace policy; Skipped counts merge candidates dropped as
// duplicates.
type PersistencePlan struct {
	Insert      []model.PersistedTransaction
	Skipped     int
	DeleteMonth bool
}

// Reconciler computes persistence plans for categorized months.
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger}
}

// Plan validates the month and computes the policy-dependent write set.
// Under merge it reads the month's existing transactions through store,
// which may be a transaction handle so the read and the subsequent writes
// share one isolation scope.
func (r *Reconciler) Plan(ctx context.Context, store service.Storage, mctx *model.MonthImportContext, categorized []model.CategorizationResult) (*PersistencePlan, error) {
	if _, _, err := model.ParseMonthID(mctx.MonthID); err != nil {
		return nil, &common.InvalidMonthFormatError{Value: mctx.MonthID}
	}
	if len(mctx.Transactions) == 0 {
		return nil, &common.NoTransactionsFoundError{MonthID: mctx.MonthID}
	}

	rows, err := buildRows(mctx, categorized)
	if err != nil {
		return nil, err
	}

	switch mctx.Mode {
	case model.ModeReplace:
		return &PersistencePlan{DeleteMonth: true, Insert: rows}, nil
	case model.ModeMerge:
		return r.planMerge(ctx, store, mctx, rows)
	default:
		return nil, fmt.Errorf("unknown import mode: %q", mctx.Mode)
	}
}

func (r *Reconciler) planMerge(ctx context.Context, store service.Storage, mctx *model.MonthImportContext, rows []model.PersistedTransaction) (*PersistencePlan, error) {
	existing, err := store.GetTransactionsForMonth(ctx, mctx.MonthID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing transactions for %s: %w", mctx.MonthID, err)
	}

	seen := make(map[string]struct{}, len(existing))
	for i := range existing {
		seen[existing[i].DuplicateKey()] = struct{}{}
	}
	mctx.ExistingKeys = seen

	plan := &PersistencePlan{}
	for _, row := range rows {
		if _, dup := seen[row.DupKey]; dup {
			plan.Skipped++
			continue
		}
		// Candidates deduplicate against each other too, so importing a
		// file containing the same line twice stores it once.
		seen[row.DupKey] = struct{}{}
		plan.Insert = append(plan.Insert, row)
	}

	r.logger.Debug("merge plan computed",
		"month", mctx.MonthID,
		"existing", len(existing),
		"insert", len(plan.Insert),
		"skipped", plan.Skipped)

	return plan, nil
}

// buildRows joins candidates with their categorization by sequence id. A
// candidate without a result is a defect in the categorization merge.
func buildRows(mctx *model.MonthImportContext, categorized []model.CategorizationResult) ([]model.PersistedTransaction, error) {
	byID := make(map[int]model.CategorizationResult, len(categorized))
	for _, result := range categorized {
		byID[result.SequenceID] = result
	}

	rows := make([]model.PersistedTransaction, 0, len(mctx.Transactions))
	var missing []int
	for _, txn := range mctx.Transactions {
		result, ok := byID[txn.SequenceID]
		if !ok {
			missing = append(missing, txn.SequenceID)
			continue
		}
		rows = append(rows, model.PersistedTransaction{
			ID:                uuid.NewString(),
			MonthID:           mctx.MonthID,
			SequenceID:        txn.SequenceID,
			Date:              txn.Date,
			Description:       txn.Description,
			Amount:            txn.Amount,
			Account:           txn.Account,
			SourceCategory:    txn.SourceCategory,
			SourceSubcategory: txn.SourceSubcategory,
			BudgetType:        result.BudgetType,
			BudgetSubcategory: result.BudgetSubcategory,
			Confidence:        result.Confidence,
			DupKey:            txn.DuplicateKey(),
			CreatedAt:         time.Now(),
		})
	}

	if len(missing) > 0 {
		return nil, &common.BatchCategorizationError{FailedIDs: missing, Partial: categorized}
	}

	return rows, nil
}
