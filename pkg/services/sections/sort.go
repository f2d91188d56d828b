package sections

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

var numberCleaner = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "%", "", "+", "")

// SortRows returns a copy of the table with rows stably sorted by a column.
// Numeric cells compare as numbers and come before text cells in both
// directions; the direction only orders cells within each class.
func SortRows(table *domain.TableSection, column string, direction SortDirection) (*domain.TableSection, error) {
	idx := table.ColumnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q in section %q", ErrUnknownColumn, column, table.Title)
	}
	if direction != SortAsc && direction != SortDesc {
		return nil, fmt.Errorf("%w: sort direction %q", ErrUnknownMode, direction)
	}

	rows := append([][]string(nil), table.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := cellAt(rows[i], idx), cellAt(rows[j], idx)
		if direction == SortDesc && isNumber(a) == isNumber(b) {
			a, b = b, a
		}
		return compareCells(a, b) < 0
	})
	return table.WithRows(rows), nil
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func isNumber(cell string) bool {
	_, ok := parseNumber(cell)
	return ok
}

func compareCells(a, b string) int {
	na, aNum := parseNumber(a)
	nb, bNum := parseNumber(b)
	switch {
	case aNum && bNum:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// parseNumber accepts cells like "12", "-3.5", "4,2", "1 234", "1,234" and
// "7.5%". A comma is a decimal separator unless it groups the integer part
// in threes.
func parseNumber(cell string) (float64, bool) {
	s := numberCleaner.Replace(strings.TrimSpace(cell))
	if s == "" {
		return 0, false
	}
	switch {
	case thousandsGrouped(s):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1 && !strings.Contains(s, "."):
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func thousandsGrouped(s string) bool {
	intPart, _, _ := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	groups := strings.Split(intPart, ",")
	if len(groups) < 2 {
		return false
	}
	if lead := groups[0]; lead == "" || lead == "0" || len(lead) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}
