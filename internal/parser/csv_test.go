package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `date,description,amount,account,category,subcategory
2025-01-05,CARREFOUR MARKET,-42.10,Checking,Groceries,Supermarket
06/01/2025,NETFLIX.COM,"-15,99",Checking,,
2025-02-01,SALARY ACME,2500.00,Checking,Income,Salary
`

func TestParse(t *testing.T) {
	transactions, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, transactions, 3)

	first := transactions[0]
	assert.Equal(t, 0, first.SequenceID)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "CARREFOUR MARKET", first.Description)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("-42.10")))
	assert.Equal(t, "Checking", first.Account)
	assert.Equal(t, "Groceries", first.SourceCategory)
	assert.Equal(t, "Supermarket", first.SourceSubcategory)

	// Day-first dates and comma decimals parse too.
	second := transactions[1]
	assert.Equal(t, 1, second.SequenceID)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), second.Date)
	assert.True(t, second.Amount.Equal(decimal.RequireFromString("-15.99")))
	assert.Empty(t, second.SourceCategory)
}

func TestParse_HeaderValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing column", "date,description,amount,account,category\n"},
		{"wrong column name", "date,payee,amount,account,category,subcategory\n"},
		{"empty input", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParse_CaseInsensitiveHeader(t *testing.T) {
	input := "Date, Description ,AMOUNT,Account,Category,Subcategory\n2025-01-05,X,-1.00,Checking,,\n"
	transactions, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, transactions, 1)
}

func TestParse_BadRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad date", "05.01.2025,X,-1.00,Checking,,", "unparseable date"},
		{"bad amount", "2025-01-05,X,abc,Checking,,", "unparseable amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "date,description,amount,account,category,subcategory\n" + tt.row + "\n"
			_, err := Parse(strings.NewReader(input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestGroupByMonth(t *testing.T) {
	transactions, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	groups, months := GroupByMonth(transactions)

	assert.Equal(t, []string{"2025-01", "2025-02"}, months)
	require.Len(t, groups["2025-01"], 2)
	require.Len(t, groups["2025-02"], 1)

	// Sequence ids restart per month, preserving file order within it.
	assert.Equal(t, 0, groups["2025-01"][0].SequenceID)
	assert.Equal(t, "CARREFOUR MARKET", groups["2025-01"][0].Description)
	assert.Equal(t, 1, groups["2025-01"][1].SequenceID)
	assert.Equal(t, 0, groups["2025-02"][0].SequenceID)
	assert.Equal(t, "SALARY ACME", groups["2025-02"][0].Description)
}

func TestGroupByMonth_Empty(t *testing.T) {
	groups, months := GroupByMonth(nil)
	assert.Empty(t, groups)
	assert.Empty(t, months)
}
