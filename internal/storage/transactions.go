package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mendoza-g/centavo/internal/model"
)

// GetTransactionsForMonth returns the month's stored transactions in their
// original sequence order.
func (s *SQLiteStorage) GetTransactionsForMonth(ctx context.Context, monthID string) ([]model.PersistedTransaction, error) {
	return getTransactionsForMonth(ctx, s.db, monthID)
}

func getTransactionsForMonth(ctx context.Context, q queryable, monthID string) ([]model.PersistedTransaction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, month_id, seq, date, description, amount, account,
		       source_category, source_subcategory,
		       budget_type, budget_subcategory, confidence, dup_key, created_at
		FROM transactions
		WHERE month_id = ?
		ORDER BY seq ASC
	`, monthID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.PersistedTransaction
	for rows.Next() {
		var txn model.PersistedTransaction
		var amountStr, budgetType string
		if err := rows.Scan(
			&txn.ID,
			&txn.MonthID,
			&txn.SequenceID,
			&txn.Date,
			&txn.Description,
			&amountStr,
			&txn.Account,
			&txn.SourceCategory,
			&txn.SourceSubcategory,
			&budgetType,
			&txn.BudgetSubcategory,
			&txn.Confidence,
			&txn.DupKey,
			&txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("invalid stored amount %q: %w", amountStr, err)
		}
		txn.Amount = amount
		txn.BudgetType = model.BudgetType(budgetType)
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

// BulkInsert stores the given transactions. Amounts are stored as exact
// decimal strings.
func (s *SQLiteStorage) BulkInsert(ctx context.Context, transactions []model.PersistedTransaction) error {
	return bulkInsert(ctx, s.db, transactions)
}

func bulkInsert(ctx context.Context, q queryable, transactions []model.PersistedTransaction) error {
	if len(transactions) == 0 {
		return nil
	}

	stmt, err := q.PrepareContext(ctx, `
		INSERT INTO transactions (
			id, month_id, seq, date, description, amount, account,
			source_category, source_subcategory,
			budget_type, budget_subcategory, confidence, dup_key, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		if !txn.BudgetType.Valid() {
			return fmt.Errorf("transaction %s has invalid budget type %q", txn.ID, txn.BudgetType)
		}
		if _, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.MonthID,
			txn.SequenceID,
			txn.Date,
			txn.Description,
			txn.Amount.String(),
			txn.Account,
			txn.SourceCategory,
			txn.SourceSubcategory,
			string(txn.BudgetType),
			txn.BudgetSubcategory,
			txn.Confidence,
			txn.DupKey,
			txn.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return nil
}
