// Package service defines the interfaces for the application's collaborators.
package service

import (
	"context"

	"github.com/mendoza-g/centavo/internal/model"
)

// MonthSummary describes one stored month for read-side listings.
type MonthSummary struct {
	MonthID          string
	Score            float64
	TransactionCount int
}

// Storage defines the contract for the persistence layer. Each method is
// assumed transactional per call site; BeginTx scopes multiple calls into
// one unit of work.
type Storage interface {
	// Month operations
	UpsertMonth(ctx context.Context, monthID string) error
	GetMonths(ctx context.Context) ([]MonthSummary, error)
	DeleteMonth(ctx context.Context, monthID string) error
	RecomputeScore(ctx context.Context, monthID string) (float64, error)

	// Transaction operations
	GetTransactionsForMonth(ctx context.Context, monthID string) ([]model.PersistedTransaction, error)
	BulkInsert(ctx context.Context, transactions []model.PersistedTransaction) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is a storage transaction. It exposes the full Storage surface so a
// month's writes can run inside one commit-or-rollback scope.
type Tx interface {
	Commit() error
	Rollback() error
	Storage
}
