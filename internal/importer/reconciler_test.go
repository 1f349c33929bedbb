package importer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendoza-g/centavo/internal/common"
	"github.com/mendoza-g/centavo/internal/model"
	"github.com/mendoza-g/centavo/internal/storage"
)

func newTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func candidate(seq int, date, description, amount string) model.Transaction {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return model.Transaction{
		SequenceID:  seq,
		Date:        parsed,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Account:     "Checking",
	}
}

func choiceResult(seq int) model.CategorizationResult {
	return model.CategorizationResult{
		SequenceID:        seq,
		BudgetType:        model.BudgetChoice,
		BudgetSubcategory: "Shopping",
		Confidence:        0.9,
		Source:            model.SourceAI,
	}
}

func TestReconciler_ReplacePlan(t *testing.T) {
	store := newTestStore(t)
	reconciler := NewReconciler(nil)

	txns := []model.Transaction{
		candidate(0, "2025-01-05", "CARREFOUR", "-42.10"),
		candidate(1, "2025-01-05", "CARREFOUR", "-42.10"), // same line twice
	}
	mctx, err := model.NewMonthImportContext("2025-01", model.ModeReplace, txns)
	require.NoError(t, err)

	plan, err := reconciler.Plan(context.Background(), store, mctx,
		[]model.CategorizationResult{choiceResult(0), choiceResult(1)})
	require.NoError(t, err)

	assert.True(t, plan.DeleteMonth)
	assert.Equal(t, 0, plan.Skipped)
	// Replace does not deduplicate; the file is the source of truth.
	require.Len(t, plan.Insert, 2)

	for _, row := range plan.Insert {
		assert.Equal(t, "2025-01", row.MonthID)
		assert.Equal(t, model.BudgetChoice, row.BudgetType)
		assert.Equal(t, "2025-01-05|CARREFOUR|-42.1|Checking", row.DupKey)
		_, parseErr := uuid.Parse(row.ID)
		assert.NoError(t, parseErr)
	}
}

func TestReconciler_MergeSkipsExistingDuplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertMonth(ctx, "2025-01"))

	existing := model.PersistedTransaction{
		ID:                uuid.NewString(),
		MonthID:           "2025-01",
		SequenceID:        0,
		Date:              time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Description:       "CARREFOUR",
		Amount:            decimal.RequireFromString("-42.10"),
		Account:           "Checking",
		BudgetType:        model.BudgetCore,
		BudgetSubcategory: "Groceries",
		Confidence:        1.0,
		CreatedAt:         time.Now(),
	}
	existing.DupKey = existing.DuplicateKey()
	require.NoError(t, store.BulkInsert(ctx, []model.PersistedTransaction{existing}))

	reconciler := NewReconciler(nil)
	txns := []model.Transaction{
		candidate(0, "2025-01-05", "CARREFOUR", "-42.10"), // already stored
		candidate(1, "2025-01-06", "NETFLIX", "-15.99"),
	}
	mctx, err := model.NewMonthImportContext("2025-01", model.ModeMerge, txns)
	require.NoError(t, err)

	plan, err := reconciler.Plan(ctx, store, mctx,
		[]model.CategorizationResult{choiceResult(0), choiceResult(1)})
	require.NoError(t, err)

	assert.False(t, plan.DeleteMonth)
	assert.Equal(t, 1, plan.Skipped)
	require.Len(t, plan.Insert, 1)
	assert.Equal(t, "NETFLIX", plan.Insert[0].Description)
	assert.Contains(t, mctx.ExistingKeys, existing.DupKey)
}

func TestReconciler_MergeDeduplicatesWithinBatch(t *testing.T) {
	store := newTestStore(t)
	reconciler := NewReconciler(nil)

	txns := []model.Transaction{
		candidate(0, "2025-01-05", "CARREFOUR", "-42.10"),
		candidate(1, "2025-01-05", "CARREFOUR", "-42.10"),
	}
	mctx, err := model.NewMonthImportContext("2025-01", model.ModeMerge, txns)
	require.NoError(t, err)

	plan, err := reconciler.Plan(context.Background(), store, mctx,
		[]model.CategorizationResult{choiceResult(0), choiceResult(1)})
	require.NoError(t, err)

	assert.Equal(t, 1, plan.Skipped)
	require.Len(t, plan.Insert, 1)
	assert.Equal(t, 0, plan.Insert[0].SequenceID, "first occurrence wins")
}

func TestReconciler_InvalidMonthID(t *testing.T) {
	store := newTestStore(t)
	reconciler := NewReconciler(nil)

	mctx := &model.MonthImportContext{
		MonthID:      "2025-13",
		Mode:         model.ModeReplace,
		Transactions: []model.Transaction{candidate(0, "2025-01-05", "X", "-1.00")},
	}

	_, err := reconciler.Plan(context.Background(), store, mctx, []model.CategorizationResult{choiceResult(0)})

	var invalid *common.InvalidMonthFormatError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "2025-13", invalid.Value)
	assert.ErrorIs(t, err, common.ErrImport)
}

func TestReconciler_EmptyMonth(t *testing.T) {
	store := newTestStore(t)
	reconciler := NewReconciler(nil)

	mctx := &model.MonthImportContext{MonthID: "2025-01", Mode: model.ModeMerge}

	_, err := reconciler.Plan(context.Background(), store, mctx, nil)

	var notFound *common.NoTransactionsFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "2025-01", notFound.MonthID)
}

func TestReconciler_MissingCategorization(t *testing.T) {
	store := newTestStore(t)
	reconciler := NewReconciler(nil)

	txns := []model.Transaction{
		candidate(0, "2025-01-05", "A", "-1.00"),
		candidate(1, "2025-01-06", "B", "-2.00"),
	}
	mctx, err := model.NewMonthImportContext("2025-01", model.ModeReplace, txns)
	require.NoError(t, err)

	_, err = reconciler.Plan(context.Background(), store, mctx,
		[]model.CategorizationResult{choiceResult(0)})

	var batchErr *common.BatchCategorizationError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, []int{1}, batchErr.FailedIDs)
}
