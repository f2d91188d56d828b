package sections

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

func TestSortRows(t *testing.T) {
	input := &domain.TableSection{
		Title:   "Ratings",
		Columns: []string{"Policy", "PnL%"},
		Rows: [][]string{
			{"b", "12.5%"},
			{"a", "-3"},
			{"c", "n/a"},
			{"d", "1 200"},
			{"e", "4,5"},
			{"f", "-3"},
		},
	}

	t.Run("ascending numeric", func(t *testing.T) {
		out, err := SortRows(input, "PnL%", SortAsc)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "f", "e", "b", "d", "c"}, column(out, 0))
	})

	t.Run("descending keeps ties stable and text last", func(t *testing.T) {
		out, err := SortRows(input, "PnL%", SortDesc)
		require.NoError(t, err)
		assert.Equal(t, []string{"d", "b", "e", "a", "f", "c"}, column(out, 0))
	})

	t.Run("text column", func(t *testing.T) {
		out, err := SortRows(input, "Policy", SortDesc)
		require.NoError(t, err)
		assert.Equal(t, []string{"f", "e", "d", "c", "b", "a"}, column(out, 0))
	})

	t.Run("input untouched", func(t *testing.T) {
		_, err := SortRows(input, "PnL%", SortAsc)
		require.NoError(t, err)
		assert.Equal(t, "b", input.Rows[0][0])
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := SortRows(input, "Sharpe", SortAsc)
		assert.True(t, errors.Is(err, ErrUnknownColumn))
	})

	t.Run("bad direction", func(t *testing.T) {
		_, err := SortRows(input, "Policy", "up")
		assert.True(t, errors.Is(err, ErrUnknownMode))
	})
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		cell string
		want float64
		ok   bool
	}{
		{"12", 12, true},
		{" -3.5 ", -3.5, true},
		{"+7", 7, true},
		{"4,2", 4.2, true},
		{"7.5%", 7.5, true},
		{"1 234", 1234, true},
		{"1,234", 1234, true},
		{"-1,234,567.5", -1234567.5, true},
		{"0,500", 0.5, true},
		{"12,34", 12.34, true},
		{"1,2,3", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
		{"P1", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got, ok := parseNumber(tt.cell)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func column(t *domain.TableSection, idx int) []string {
	out := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, r[idx])
	}
	return out
}
