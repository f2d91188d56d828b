package sections

import (
	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

type Bucket struct {
	Category Category
	Sections []*domain.TableSection
}

// Buckets is the ordered result of Split. Every category of the rule table
// is present, possibly empty.
type Buckets []Bucket

// Get returns the sections of a category, or nil when the category is absent.
func (b Buckets) Get(category Category) []*domain.TableSection {
	for _, bucket := range b {
		if bucket.Category == category {
			return bucket.Sections
		}
	}
	return nil
}

// Has reports whether the category is one of the buckets.
func (b Buckets) Has(category Category) bool {
	for _, bucket := range b {
		if bucket.Category == category {
			return true
		}
	}
	return false
}

// Len returns the number of sections across all buckets.
func (b Buckets) Len() int {
	n := 0
	for _, bucket := range b {
		n += len(bucket.Sections)
	}
	return n
}

// Split partitions sections by category in a single pass. Order inside a
// bucket follows the input; sections are never copied or modified.
func Split(sections []*domain.TableSection, table *RuleTable) Buckets {
	order := table.Categories
	if !containsCategory(order, table.Default) {
		order = append(append([]Category{}, order...), table.Default)
	}

	buckets := make(Buckets, len(order))
	index := make(map[Category]int, len(order))
	for i, c := range order {
		buckets[i] = Bucket{Category: c}
		index[c] = i
	}

	for _, s := range sections {
		i, ok := index[Classify(s.Title, table)]
		if !ok {
			i = index[table.Default]
		}
		buckets[i].Sections = append(buckets[i].Sections, s)
	}
	return buckets
}

// SplitBacktest is the page-level split of a backtest summary report.
func SplitBacktest(sections []*domain.TableSection) Buckets {
	return Split(sections, BacktestRules)
}

// DiagnosticsGroups re-splits the diagnostics and unknown buckets of a
// page-level split into in-page tabs (risk, guardrail, decisions, hotspots,
// other).
func DiagnosticsGroups(pages Buckets) Buckets {
	diagnostics := pages.Get(CategoryDiagnostics)
	unknown := pages.Get(CategoryUnknown)

	merged := make([]*domain.TableSection, 0, len(diagnostics)+len(unknown))
	merged = append(merged, diagnostics...)
	merged = append(merged, unknown...)
	return Split(merged, DiagnosticsGroupRules)
}

func containsCategory(categories []Category, c Category) bool {
	for _, x := range categories {
		if x == c {
			return true
		}
	}
	return false
}
