package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mendoza-g/centavo/internal/common"
	"github.com/mendoza-g/centavo/internal/importer"
	"github.com/mendoza-g/centavo/internal/model"
	"github.com/mendoza-g/centavo/internal/service"
)

// Processor is the per-month import boundary: categorization and
// reconciliation for one month commit or roll back as a unit.
type Processor struct {
	storage      service.Storage
	orchestrator *Orchestrator
	reconciler   *importer.Reconciler
	logger       *slog.Logger
}

// NewProcessor creates a month processor.
func NewProcessor(storage service.Storage, orchestrator *Orchestrator, reconciler *importer.Reconciler, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		storage:      storage,
		orchestrator: orchestrator,
		reconciler:   reconciler,
		logger:       logger,
	}
}

// MonthOutcome records how one month of a multi-month import ended.
type MonthOutcome struct {
	Err     error
	Result  *model.MonthResult
	MonthID string
	Status  model.MonthStatus
}

// ProcessMonths processes months one at a time in the order given. A failed
// month is rolled back and recorded; already-committed months stay committed.
func (p *Processor) ProcessMonths(ctx context.Context, months []*model.MonthImportContext) []MonthOutcome {
	outcomes := make([]MonthOutcome, 0, len(months))
	for _, mctx := range months {
		result, err := p.ProcessMonth(ctx, mctx)
		outcome := MonthOutcome{MonthID: mctx.MonthID, Result: result}
		if err != nil {
			outcome.Status = model.StatusFailed
			outcome.Err = err
			p.logger.Error("month import failed",
				"month", mctx.MonthID,
				"error", err)
		} else {
			outcome.Status = model.StatusPersisted
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// ProcessMonth categorizes, reconciles, and persists one month inside a
// single storage transaction. Any failure rolls the month back completely.
func (p *Processor) ProcessMonth(ctx context.Context, mctx *model.MonthImportContext) (*model.MonthResult, error) {
	status := model.StatusPending

	if len(mctx.Transactions) == 0 {
		return nil, &common.NoTransactionsFoundError{MonthID: mctx.MonthID}
	}

	status = p.advance(mctx.MonthID, status, model.StatusCategorizing)
	results, err := p.orchestrator.Categorize(ctx, mctx.Transactions)
	if err != nil {
		p.advance(mctx.MonthID, status, model.StatusFailed)
		return nil, err
	}

	status = p.advance(mctx.MonthID, status, model.StatusReconciling)
	tx, err := p.storage.BeginTx(ctx)
	if err != nil {
		p.advance(mctx.MonthID, status, model.StatusFailed)
		return nil, fmt.Errorf("failed to open month transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	result, err := p.persistMonth(ctx, tx, mctx, results)
	if err != nil {
		p.advance(mctx.MonthID, status, model.StatusFailed)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		p.advance(mctx.MonthID, status, model.StatusFailed)
		return nil, fmt.Errorf("failed to commit month %s: %w", mctx.MonthID, err)
	}
	committed = true
	p.advance(mctx.MonthID, status, model.StatusPersisted)

	return result, nil
}

func (p *Processor) persistMonth(ctx context.Context, tx service.Tx, mctx *model.MonthImportContext, results []model.CategorizationResult) (*model.MonthResult, error) {
	plan, err := p.reconciler.Plan(ctx, tx, mctx, results)
	if err != nil {
		return nil, err
	}

	if plan.DeleteMonth {
		if err := tx.DeleteMonth(ctx, mctx.MonthID); err != nil {
			return nil, err
		}
	}
	if err := tx.UpsertMonth(ctx, mctx.MonthID); err != nil {
		return nil, err
	}
	if err := tx.BulkInsert(ctx, plan.Insert); err != nil {
		return nil, err
	}

	score, err := tx.RecomputeScore(ctx, mctx.MonthID)
	if err != nil {
		return nil, err
	}

	lowConfidence := 0
	for i := range results {
		if results[i].NeedsReview() {
			lowConfidence++
		}
	}

	p.logger.Info("month persisted",
		"month", mctx.MonthID,
		"mode", mctx.Mode,
		"inserted", len(plan.Insert),
		"skipped", plan.Skipped,
		"low_confidence", lowConfidence,
		"score", score)

	return &model.MonthResult{
		MonthID:       mctx.MonthID,
		Categorized:   len(plan.Insert),
		Skipped:       plan.Skipped,
		LowConfidence: lowConfidence,
		Score:         score,
	}, nil
}

// advance moves the month's state machine forward, rejecting illegal
// transitions.
func (p *Processor) advance(monthID string, from, to model.MonthStatus) model.MonthStatus {
	if !from.CanTransition(to) {
		p.logger.Warn("illegal month status transition",
			"month", monthID,
			"from", from,
			"to", to)
		return from
	}
	p.logger.Debug("month status",
		"month", monthID,
		"from", from,
		"to", to)
	return to
}
