package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mendoza-g/centavo/internal/model"
	"github.com/mendoza-g/centavo/internal/service"
)

// UpsertMonth creates the month row if it does not exist and refreshes its
// import timestamp.
func (s *SQLiteStorage) UpsertMonth(ctx context.Context, monthID string) error {
	return upsertMonth(ctx, s.db, monthID)
}

func upsertMonth(ctx context.Context, q queryable, monthID string) error {
	year, month, err := model.ParseMonthID(monthID)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO months (id, year, month, imported_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET imported_at = excluded.imported_at
	`, monthID, year, month, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert month %s: %w", monthID, err)
	}
	return nil
}

// GetMonths lists stored months with their scores and transaction counts,
// newest first.
func (s *SQLiteStorage) GetMonths(ctx context.Context) ([]service.MonthSummary, error) {
	return getMonths(ctx, s.db)
}

func getMonths(ctx context.Context, q queryable) ([]service.MonthSummary, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT m.id, m.score, COUNT(t.id)
		FROM months m
		LEFT JOIN transactions t ON t.month_id = m.id
		GROUP BY m.id
		ORDER BY m.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query months: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var months []service.MonthSummary
	for rows.Next() {
		var summary service.MonthSummary
		if err := rows.Scan(&summary.MonthID, &summary.Score, &summary.TransactionCount); err != nil {
			return nil, fmt.Errorf("failed to scan month: %w", err)
		}
		months = append(months, summary)
	}
	return months, rows.Err()
}

// DeleteMonth removes the month row; the schema cascades the delete to its
// transactions.
func (s *SQLiteStorage) DeleteMonth(ctx context.Context, monthID string) error {
	return deleteMonth(ctx, s.db, monthID)
}

func deleteMonth(ctx context.Context, q queryable, monthID string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM months WHERE id = ?`, monthID); err != nil {
		return fmt.Errorf("failed to delete month %s: %w", monthID, err)
	}
	return nil
}

// RecomputeScore recalculates and stores the month's budget score: the share
// of non-excluded spend that is CORE or COMPOUND rather than CHOICE, on a
// 0-100 scale. A month with no qualifying spend scores 100.
func (s *SQLiteStorage) RecomputeScore(ctx context.Context, monthID string) (float64, error) {
	return recomputeScore(ctx, s.db, monthID)
}

func recomputeScore(ctx context.Context, q queryable, monthID string) (float64, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT budget_type, amount FROM transactions WHERE month_id = ?
	`, monthID)
	if err != nil {
		return 0, fmt.Errorf("failed to query transactions for score: %w", err)
	}
	defer func() { _ = rows.Close() }()

	spend := decimal.Zero
	choice := decimal.Zero
	for rows.Next() {
		var budgetType, amountStr string
		if err := rows.Scan(&budgetType, &amountStr); err != nil {
			return 0, fmt.Errorf("failed to scan transaction for score: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return 0, fmt.Errorf("invalid stored amount %q: %w", amountStr, err)
		}
		if !amount.IsNegative() {
			continue
		}

		switch model.BudgetType(budgetType) {
		case model.BudgetCore, model.BudgetCompound:
			spend = spend.Add(amount.Abs())
		case model.BudgetChoice:
			spend = spend.Add(amount.Abs())
			choice = choice.Add(amount.Abs())
		case model.BudgetIncome, model.BudgetExcluded:
			// Not part of the spend ratio.
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	score := 100.0
	if spend.IsPositive() {
		share, _ := choice.Div(spend).Float64()
		score = 100.0 * (1.0 - share)
	}
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	if _, err := q.ExecContext(ctx, `UPDATE months SET score = ? WHERE id = ?`, score, monthID); err != nil {
		return 0, fmt.Errorf("failed to store score for %s: %w", monthID, err)
	}
	return score, nil
}
