package sections

import (
	"regexp"
)

type Category string

const (
	CategoryRatings     Category = "ratings"
	CategoryDiagnostics Category = "diagnostics"
	CategoryDayStats    Category = "dayStats"
	CategoryUnknown     Category = "unknown"

	CategoryRisk      Category = "risk"
	CategoryGuardrail Category = "guardrail"
	CategoryDecisions Category = "decisions"
	CategoryHotspots  Category = "hotspots"
	CategoryOther     Category = "other"
)

type Rule struct {
	Pattern  *regexp.Regexp
	Category Category
}

// RuleTable is an ordered list of rules. The first matching rule wins, so
// reordering rules changes results.
type RuleTable struct {
	Name  string
	Rules []Rule
	// Categories fixes the bucket order used by Split. Default goes last.
	Categories []Category
	Default    Category
}

// Classify returns the category of the first rule matching the normalized
// title, or the table default.
func Classify(title string, table *RuleTable) Category {
	normalized := NormalizeTitle(title)
	for _, rule := range table.Rules {
		if rule.Pattern.MatchString(normalized) {
			return rule.Category
		}
	}
	return table.Default
}

// prefixed builds a case-insensitive rule anchored at the start of the title,
// after any leading segment tags like "[DAILY]".
func prefixed(pattern string, category Category) Rule {
	return Rule{
		Pattern:  regexp.MustCompile(`(?i)^(?:\[[^\]]*\]\s*)*` + pattern),
		Category: category,
	}
}
