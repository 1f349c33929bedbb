// Package parser reads bank-exported CSV statements into transactions.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mendoza-g/centavo/internal/model"
)

// Expected header columns, in order.
var expectedHeader = []string{"date", "description", "amount", "account", "category", "subcategory"}

var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// Parse reads a CSV statement. The file must carry the standard header; rows
// keep their file order and are assigned sequence ids from zero.
func Parse(r io.Reader) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		txn, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txn.SequenceID = len(transactions)
		transactions = append(transactions, txn)
	}

	return transactions, nil
}

func validateHeader(header []string) error {
	if len(header) != len(expectedHeader) {
		return fmt.Errorf("unexpected CSV header: got %d columns, want %d", len(header), len(expectedHeader))
	}
	for i, want := range expectedHeader {
		if strings.ToLower(strings.TrimSpace(header[i])) != want {
			return fmt.Errorf("unexpected CSV column %d: got %q, want %q", i, header[i], want)
		}
	}
	return nil
}

func parseRecord(record []string) (model.Transaction, error) {
	if len(record) != len(expectedHeader) {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", len(expectedHeader), len(record))
	}

	date, err := parseDate(strings.TrimSpace(record[0]))
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := parseAmount(strings.TrimSpace(record[2]))
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		Date:              date,
		Description:       strings.TrimSpace(record[1]),
		Amount:            amount,
		Account:           strings.TrimSpace(record[3]),
		SourceCategory:    strings.TrimSpace(record[4]),
		SourceSubcategory: strings.TrimSpace(record[5]),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, s); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// parseAmount accepts decimal amounts with either a dot or a lone comma as
// the decimal separator.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, " ", "")
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unparseable amount %q", s)
	}
	return amount, nil
}

// GroupByMonth splits transactions into calendar months, renumbering
// sequence ids per month in file order. Returned month keys are sorted
// ascending.
func GroupByMonth(transactions []model.Transaction) (map[string][]model.Transaction, []string) {
	groups := make(map[string][]model.Transaction)
	for _, txn := range transactions {
		monthID := model.MonthID(txn.Date.Year(), int(txn.Date.Month()))
		txn.SequenceID = len(groups[monthID])
		groups[monthID] = append(groups[monthID], txn)
	}

	months := make([]string, 0, len(groups))
	for monthID := range groups {
		months = append(months, monthID)
	}
	sort.Strings(months)

	return groups, months
}
