package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonthID(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantYear  int
		wantMonth int
		wantErr   bool
	}{
		{name: "valid month", input: "2025-01", wantYear: 2025, wantMonth: 1},
		{name: "valid december", input: "2024-12", wantYear: 2024, wantMonth: 12},
		{name: "month zero", input: "2025-00", wantErr: true},
		{name: "month thirteen", input: "2025-13", wantErr: true},
		{name: "missing zero padding", input: "2025-1", wantErr: true},
		{name: "slash separator", input: "2025/01", wantErr: true},
		{name: "trailing text", input: "2025-01x", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, month, err := ParseMonthID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantYear, year)
			assert.Equal(t, tt.wantMonth, month)
		})
	}
}

func TestMonthID(t *testing.T) {
	assert.Equal(t, "2025-03", MonthID(2025, 3))
	assert.Equal(t, "0999-12", MonthID(999, 12))
}

func TestNewMonthImportContext(t *testing.T) {
	mctx, err := NewMonthImportContext("2025-06", ModeMerge, nil)
	require.NoError(t, err)
	assert.Equal(t, 2025, mctx.Year)
	assert.Equal(t, 6, mctx.Month)
	assert.Equal(t, ModeMerge, mctx.Mode)

	_, err = NewMonthImportContext("bogus", ModeMerge, nil)
	assert.Error(t, err)
}

func TestParseImportMode(t *testing.T) {
	mode, err := ParseImportMode("replace")
	require.NoError(t, err)
	assert.Equal(t, ModeReplace, mode)

	mode, err = ParseImportMode("merge")
	require.NoError(t, err)
	assert.Equal(t, ModeMerge, mode)

	_, err = ParseImportMode("upsert")
	assert.Error(t, err)
}

func TestMonthStatusTransitions(t *testing.T) {
	tests := []struct {
		from MonthStatus
		to   MonthStatus
		want bool
	}{
		{StatusPending, StatusCategorizing, true},
		{StatusCategorizing, StatusReconciling, true},
		{StatusReconciling, StatusPersisted, true},
		{StatusPending, StatusFailed, true},
		{StatusCategorizing, StatusFailed, true},
		{StatusReconciling, StatusFailed, true},
		{StatusPending, StatusPersisted, false},
		{StatusPersisted, StatusFailed, false},
		{StatusFailed, StatusCategorizing, false},
		{StatusReconciling, StatusCategorizing, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, StatusPersisted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusReconciling.Terminal())
}
