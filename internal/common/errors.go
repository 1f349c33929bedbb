// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"

	"github.com/mendoza-g/centavo/internal/model"
)

// Base errors of the two failure families. Every specific error below
// matches its base via errors.Is.
var (
	ErrCategorization = errors.New("categorization failed")
	ErrImport         = errors.New("import failed")
)

// APIConnectionError reports that the classification service could not be
// reached after exhausting all retries.
type APIConnectionError struct {
	Err     error
	Retries int
}

func (e *APIConnectionError) Error() string {
	return fmt.Sprintf("classification service unreachable after %d retries: %v", e.Retries, e.Err)
}

func (e *APIConnectionError) Unwrap() error { return e.Err }

// Is matches the categorization error family.
func (e *APIConnectionError) Is(target error) bool { return target == ErrCategorization }

// InvalidResponseError reports a classification service response that could
// not be parsed as valid structured data. Never retried.
type InvalidResponseError struct {
	Raw string
}

const rawResponseLimit = 200

func (e *InvalidResponseError) Error() string {
	raw := e.Raw
	if len(raw) > rawResponseLimit {
		raw = raw[:rawResponseLimit] + "..."
	}
	return fmt.Sprintf("unparseable classification response: %q", raw)
}

// Is matches the categorization error family.
func (e *InvalidResponseError) Is(target error) bool { return target == ErrCategorization }

// BatchCategorizationError reports that the id set of a batch response does
// not exactly match the request. Partial carries whatever valid subset was
// recovered so the caller can decide how to proceed.
type BatchCategorizationError struct {
	FailedIDs []int
	Partial   []model.CategorizationResult
}

func (e *BatchCategorizationError) Error() string {
	return fmt.Sprintf("batch categorization incomplete: %d ids unresolved %v", len(e.FailedIDs), e.FailedIDs)
}

// Is matches the categorization error family.
func (e *BatchCategorizationError) Is(target error) bool { return target == ErrCategorization }

// InvalidMonthFormatError reports a month identifier that does not match the
// strict YYYY-MM shape.
type InvalidMonthFormatError struct {
	Value string
}

func (e *InvalidMonthFormatError) Error() string {
	return fmt.Sprintf("invalid month format: %q (expected YYYY-MM)", e.Value)
}

// Is matches the import error family.
func (e *InvalidMonthFormatError) Is(target error) bool { return target == ErrImport }

// NoTransactionsFoundError reports an empty candidate set for a month.
type NoTransactionsFoundError struct {
	MonthID string
}

func (e *NoTransactionsFoundError) Error() string {
	return fmt.Sprintf("no transactions found for month %s", e.MonthID)
}

// Is matches the import error family.
func (e *NoTransactionsFoundError) Is(target error) bool { return target == ErrImport }
