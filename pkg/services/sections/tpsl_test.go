package sections

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

// Columns: Policy, Branch, Days, Tr, TotalPnl%, Dyn Days/Tr/PnL%, Stat Days/Tr/PnL%.
var (
	rowA = []string{"P1", "BASE", "10", "5", "12.5", "6", "3", "8.1", "4", "0", "0"}
	rowB = []string{"P2", "ANTI", "7", "2", "-1.5", "0", "0", "0", "7", "2", "-1.5"}
)

func megaPart(title string, rows ...[]string) *domain.TableSection {
	return &domain.TableSection{
		Title:   title,
		Columns: []string{ColumnPolicy, ColumnBranch, "WinRate%", "MaxDD%"},
		Rows:    rows,
	}
}

func TestApplyTpSlMode_Scenario(t *testing.T) {
	section := tpSlSource("Policy Branch Mega", rowA, rowB)

	t.Run("dynamic", func(t *testing.T) {
		out, err := ApplyTpSlMode([]*domain.TableSection{section}, domain.TpSlDynamic)
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Len(t, out[0].Rows, 1)

		row := out[0].Rows[0]
		assert.Equal(t, "P1", row[0])
		assert.Equal(t, "BASE", row[1])
		assert.Equal(t, "6", row[2])
		assert.Equal(t, "3", row[3])
		assert.Equal(t, "8.1", row[4])
		assert.Equal(t, rowA[5:], row[5:])
	})

	t.Run("static", func(t *testing.T) {
		out, err := ApplyTpSlMode([]*domain.TableSection{section}, domain.TpSlStatic)
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Len(t, out[0].Rows, 1)

		row := out[0].Rows[0]
		assert.Equal(t, "P2", row[0])
		assert.Equal(t, "2", row[3])
		assert.Equal(t, "7", row[2])
		assert.Equal(t, "-1.5", row[4])
	})

	t.Run("all is identity", func(t *testing.T) {
		input := []*domain.TableSection{section}
		out, err := ApplyTpSlMode(input, domain.TpSlAll)
		require.NoError(t, err)
		assert.Equal(t, input, out)
		assert.Same(t, section, out[0])
	})

	t.Run("input is not mutated", func(t *testing.T) {
		_, err := ApplyTpSlMode([]*domain.TableSection{section}, domain.TpSlDynamic)
		require.NoError(t, err)
		assert.Equal(t, "5", section.Rows[0][3])
		assert.Len(t, section.Rows, 2)
	})
}

func TestApplyTpSlMode_DependentParts(t *testing.T) {
	input := []*domain.TableSection{
		tpSlSource("Policy Branch Mega [PART 1/3]", rowA, rowB),
		megaPart("Policy Branch Mega [PART 2/3]",
			[]string{"P1", "BASE", "55", "3"},
			[]string{"P2", "ANTI", "40", "9"},
			[]string{"P1", "ANTI", "51", "4"},
		),
		megaPart("Policy Branch Mega [PART 3/3]", []string{"P2", "ANTI", "40", "9"}),
	}

	out, err := ApplyTpSlMode(input, domain.TpSlDynamic)

	require.NoError(t, err)
	require.Len(t, out, 2, "PART 3 has no surviving rows and is dropped")
	assert.Equal(t, "Policy Branch Mega [PART 1/3]", out[0].Title)
	assert.Equal(t, "Policy Branch Mega [PART 2/3]", out[1].Title)
	assert.Equal(t, [][]string{{"P1", "BASE", "55", "3"}}, out[1].Rows)
}

func TestApplyTpSlMode_IndependentGroups(t *testing.T) {
	rowC := []string{"P2", "ANTI", "7", "2", "-1.5", "3", "1", "0.4", "7", "2", "-1.5"}
	input := []*domain.TableSection{
		tpSlSource("Mega A [PART 1/2]", rowA, rowB),
		tpSlSource("Mega B [PART 1/2]", rowC),
		megaPart("Mega A [PART 2/2]", []string{"P1", "BASE", "1", "1"}, []string{"P2", "ANTI", "1", "1"}),
		megaPart("Mega B [PART 2/2]", []string{"P1", "BASE", "1", "1"}, []string{"P2", "ANTI", "1", "1"}),
	}

	out, err := ApplyTpSlMode(input, domain.TpSlDynamic)

	require.NoError(t, err)
	require.Equal(t, []string{"Mega A [PART 1/2]", "Mega B [PART 1/2]", "Mega A [PART 2/2]", "Mega B [PART 2/2]"}, titles(out))
	assert.Equal(t, [][]string{{"P1", "BASE", "1", "1"}}, out[2].Rows)
	assert.Equal(t, [][]string{{"P2", "ANTI", "1", "1"}}, out[3].Rows)
}

func TestApplyTpSlMode_PassesOtherTablesThrough(t *testing.T) {
	ratings := table("Policy Ratings")
	topTrades := megaPart("Top Trades", []string{"P9", "BASE", "1", "1"})
	input := []*domain.TableSection{
		ratings,
		tpSlSource("Policy Branch Mega [PART 1/3]", rowA, rowB),
		topTrades,
	}

	out, err := ApplyTpSlMode(input, domain.TpSlDynamic)

	require.NoError(t, err)
	require.Equal(t, []string{"Policy Ratings", "Policy Branch Mega [PART 1/3]", "Top Trades"}, titles(out))
	assert.Same(t, ratings, out[0])
	assert.Same(t, topTrades, out[2])
	assert.Len(t, out[1].Rows, 1)
}

func TestApplyTpSlMode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		sections []*domain.TableSection
		mode     domain.TpSlMode
		contract bool
	}{
		{
			name: "missing branch column",
			sections: []*domain.TableSection{{
				Title:   "Policy Branch Mega",
				Columns: []string{ColumnPolicy, ColumnDays, ColumnTrades, ColumnTotalPnl},
				Rows:    [][]string{{"P1", "1", "1", "1"}},
			}},
			mode:     domain.TpSlDynamic,
			contract: true,
		},
		{
			name:     "empty policy cell",
			sections: []*domain.TableSection{tpSlSource("Mega", []string{"", "BASE", "1", "1", "1", "1", "1", "1", "1", "1", "1"})},
			mode:     domain.TpSlDynamic,
			contract: true,
		},
		{
			name:     "empty branch cell in a dropped row",
			sections: []*domain.TableSection{tpSlSource("Mega", rowA, []string{"P3", " ", "1", "1", "1", "0", "0", "0", "0", "0", "0"})},
			mode:     domain.TpSlDynamic,
			contract: true,
		},
		{
			name:     "short row",
			sections: []*domain.TableSection{tpSlSource("Mega", []string{"P1", "BASE"})},
			mode:     domain.TpSlDynamic,
			contract: true,
		},
		{
			name:     "non numeric trade count",
			sections: []*domain.TableSection{tpSlSource("Mega", []string{"P1", "BASE", "1", "1", "1", "1", "n/a", "1", "1", "1", "1"})},
			mode:     domain.TpSlDynamic,
			contract: true,
		},
		{
			name: "dependent part without policy column",
			sections: []*domain.TableSection{
				tpSlSource("Mega [PART 1/2]", rowA),
				{Title: "Mega [PART 2/2]", Columns: []string{ColumnBranch}, Rows: [][]string{{"BASE"}}},
			},
			mode:     domain.TpSlDynamic,
			contract: true,
		},
		{
			name:     "no trades in slice",
			sections: []*domain.TableSection{tpSlSource("Mega", rowB)},
			mode:     domain.TpSlDynamic,
			contract: true,
		},
		{
			name:     "one group without trades in slice",
			sections: []*domain.TableSection{tpSlSource("Mega A", rowA), tpSlSource("Mega B", rowB)},
			mode:     domain.TpSlStatic,
			contract: true,
		},
		{
			name:     "no source table anywhere",
			sections: []*domain.TableSection{table("Day Stats"), megaPart("Top Trades", []string{"P1", "BASE", "1", "1"})},
			mode:     domain.TpSlDynamic,
			contract: true,
		},
		{
			name:     "unknown mode",
			sections: []*domain.TableSection{tpSlSource("Mega", rowA)},
			mode:     "hybrid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ApplyTpSlMode(tt.sections, tt.mode)

			require.Error(t, err)
			assert.Nil(t, out)
			if tt.contract {
				assert.True(t, errors.Is(err, ErrContractViolation), "got %v", err)
				var ce *ContractError
				assert.True(t, errors.As(err, &ce))
			} else {
				assert.True(t, errors.Is(err, ErrUnknownMode), "got %v", err)
			}
		})
	}
}

func TestContractError_Message(t *testing.T) {
	err := &ContractError{Section: "Mega", Row: 2, Column: "Branch", Reason: "empty cell"}
	assert.Equal(t, `report contract violation: empty cell (section "Mega", row 2, column "Branch")`, err.Error())

	bare := &ContractError{Reason: "nothing left"}
	assert.Equal(t, "report contract violation: nothing left", bare.Error())
}

func TestTpSlGroupKey(t *testing.T) {
	assert.Equal(t, TpSlGroupKey("=== Mega [PART 1/3] ==="), TpSlGroupKey("Mega [PART 3/3]"))
	assert.NotEqual(t, TpSlGroupKey("Mega A [PART 1/3]"), TpSlGroupKey("Mega B [PART 1/3]"))
}
