package sections

import (
	"fmt"
	"strings"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

const (
	ColumnPolicy   = "Policy"
	ColumnBranch   = "Branch"
	ColumnDays     = "Days"
	ColumnTrades   = "Tr"
	ColumnTotalPnl = "TotalPnl%"

	ColumnDynDays   = "DynTP/SL Days"
	ColumnDynTrades = "DynTP/SL Tr"
	ColumnDynPnl    = "DynTP/SL PnL%"

	ColumnStatDays   = "StatTP/SL Days"
	ColumnStatTrades = "StatTP/SL Tr"
	ColumnStatPnl    = "StatTP/SL PnL%"
)

var tpSlSourceColumns = []string{
	ColumnPolicy, ColumnBranch, ColumnDays, ColumnTrades, ColumnTotalPnl,
	ColumnDynDays, ColumnDynTrades, ColumnDynPnl,
	ColumnStatDays, ColumnStatTrades, ColumnStatPnl,
}

type tpSlSlice struct {
	days   string
	trades string
	pnl    string
}

var tpSlSlices = map[domain.TpSlMode]tpSlSlice{
	domain.TpSlDynamic: {days: ColumnDynDays, trades: ColumnDynTrades, pnl: ColumnDynPnl},
	domain.TpSlStatic:  {days: ColumnStatDays, trades: ColumnStatTrades, pnl: ColumnStatPnl},
}

// IsTpSlSource reports whether a table carries the generic columns together
// with both Dyn/Stat column triples ("PART 1" shape).
func IsTpSlSource(s *domain.TableSection) bool {
	return s.HasColumns(tpSlSourceColumns...)
}

// TpSlGroupKey identifies sections that are parts of one policy/branch table.
func TpSlGroupKey(title string) string {
	return StripPartMarker(NormalizeTitle(title))
}

// ApplyTpSlMode restricts policy/branch tables to trades that used dynamic or
// static TP/SL. Source tables get their Days/Tr/TotalPnl% replaced with the
// slice values and lose rows without trades in the slice; the other parts of
// the same group keep only surviving Policy::Branch rows. Sections left with
// no rows are dropped. Groups without a source table are not policy/branch
// tables and pass through unchanged. Any shape the filter cannot handle
// inside a source group is an error.
func ApplyTpSlMode(sections []*domain.TableSection, mode domain.TpSlMode) ([]*domain.TableSection, error) {
	if mode == domain.TpSlAll {
		return sections, nil
	}
	slice, ok := tpSlSlices[mode]
	if !ok {
		return nil, fmt.Errorf("%w: tp/sl mode %q", ErrUnknownMode, mode)
	}

	var order []string
	groups := make(map[string][]int)
	for i, s := range sections {
		key := TpSlGroupKey(s.Title)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	kept := make([]*domain.TableSection, len(sections))
	filtered := 0
	for _, key := range order {
		members := groups[key]
		if !hasTpSlSource(sections, members) {
			for _, i := range members {
				kept[i] = sections[i]
			}
			continue
		}
		filtered++

		allowed := make(map[string]struct{})
		for _, i := range members {
			if !IsTpSlSource(sections[i]) {
				continue
			}
			out, err := filterTpSlSource(sections[i], slice, allowed)
			if err != nil {
				return nil, err
			}
			if len(out.Rows) > 0 {
				kept[i] = out
			}
		}
		if len(allowed) == 0 {
			return nil, &ContractError{
				Section: sections[members[0]].Title,
				Reason:  fmt.Sprintf("tp/sl group %q has no policy/branch rows with trades in the %s slice", key, mode),
			}
		}

		for _, i := range members {
			if IsTpSlSource(sections[i]) {
				continue
			}
			out, err := filterTpSlDependent(sections[i], allowed)
			if err != nil {
				return nil, err
			}
			if len(out.Rows) > 0 {
				kept[i] = out
			}
		}
	}

	if filtered == 0 {
		return nil, &ContractError{Reason: fmt.Sprintf("no table has %s and %s columns", slice.trades, ColumnTotalPnl)}
	}

	out := make([]*domain.TableSection, 0, len(sections))
	for _, s := range kept {
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

func hasTpSlSource(sections []*domain.TableSection, members []int) bool {
	for _, i := range members {
		if IsTpSlSource(sections[i]) {
			return true
		}
	}
	return false
}

func filterTpSlSource(s *domain.TableSection, slice tpSlSlice, allowed map[string]struct{}) (*domain.TableSection, error) {
	policyIdx, branchIdx := s.ColumnIndex(ColumnPolicy), s.ColumnIndex(ColumnBranch)
	daysIdx, tradesIdx, pnlIdx := s.ColumnIndex(ColumnDays), s.ColumnIndex(ColumnTrades), s.ColumnIndex(ColumnTotalPnl)
	sliceDaysIdx, sliceTradesIdx, slicePnlIdx := s.ColumnIndex(slice.days), s.ColumnIndex(slice.trades), s.ColumnIndex(slice.pnl)

	rows := make([][]string, 0, len(s.Rows))
	for n, row := range s.Rows {
		if err := checkRowWidth(s, row, n); err != nil {
			return nil, err
		}
		key, err := policyBranchKey(s, row, n, policyIdx, branchIdx)
		if err != nil {
			return nil, err
		}

		trades, err := parseCount(row[sliceTradesIdx])
		if err != nil {
			return nil, &ContractError{Section: s.Title, Row: n + 1, Column: slice.trades, Reason: err.Error()}
		}
		if trades <= 0 {
			continue
		}

		rewritten := append([]string(nil), row...)
		rewritten[daysIdx] = row[sliceDaysIdx]
		rewritten[tradesIdx] = row[sliceTradesIdx]
		rewritten[pnlIdx] = row[slicePnlIdx]
		rows = append(rows, rewritten)
		allowed[key] = struct{}{}
	}
	return s.WithRows(rows), nil
}

func filterTpSlDependent(s *domain.TableSection, allowed map[string]struct{}) (*domain.TableSection, error) {
	policyIdx, branchIdx := s.ColumnIndex(ColumnPolicy), s.ColumnIndex(ColumnBranch)
	if policyIdx < 0 || branchIdx < 0 {
		missing := ColumnPolicy
		if policyIdx >= 0 {
			missing = ColumnBranch
		}
		return nil, &ContractError{Section: s.Title, Column: missing, Reason: "tp/sl dependent table lacks a required column"}
	}

	rows := make([][]string, 0, len(s.Rows))
	for n, row := range s.Rows {
		if err := checkRowWidth(s, row, n); err != nil {
			return nil, err
		}
		key, err := policyBranchKey(s, row, n, policyIdx, branchIdx)
		if err != nil {
			return nil, err
		}
		if _, ok := allowed[key]; ok {
			rows = append(rows, row)
		}
	}
	return s.WithRows(rows), nil
}

func policyBranchKey(s *domain.TableSection, row []string, n, policyIdx, branchIdx int) (string, error) {
	policy := strings.TrimSpace(row[policyIdx])
	if policy == "" {
		return "", &ContractError{Section: s.Title, Row: n + 1, Column: ColumnPolicy, Reason: "empty cell"}
	}
	branch := strings.TrimSpace(row[branchIdx])
	if branch == "" {
		return "", &ContractError{Section: s.Title, Row: n + 1, Column: ColumnBranch, Reason: "empty cell"}
	}
	return policy + "::" + branch, nil
}

func checkRowWidth(s *domain.TableSection, row []string, n int) error {
	if len(row) != len(s.Columns) {
		return &ContractError{
			Section: s.Title,
			Row:     n + 1,
			Reason:  fmt.Sprintf("row has %d cells, expected %d", len(row), len(s.Columns)),
		}
	}
	return nil
}

func parseCount(cell string) (float64, error) {
	v, ok := parseNumber(cell)
	if !ok {
		return 0, fmt.Errorf("trade count %q is not a number", cell)
	}
	return v, nil
}
