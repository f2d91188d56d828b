package sections

var ratingsRules = []Rule{
	prefixed(`(Policy|Model|Strategy)\s+Ratings?\b`, CategoryRatings),
	prefixed(`Ratings?\b`, CategoryRatings),
	prefixed(`Leaderboard\b`, CategoryRatings),
	prefixed(`Top[- ]?\d+\b`, CategoryRatings),
}

var dayStatsRules = []Rule{
	prefixed(`(Day|Daily)\s+Stats\b`, CategoryDayStats),
	prefixed(`Stats\s+by\s+Day\b`, CategoryDayStats),
	prefixed(`Per[- ]Day\b`, CategoryDayStats),
}

// BacktestRules splits a backtest summary report by page.
// Tables nobody recognizes land in "unknown".
var BacktestRules = &RuleTable{
	Name: "backtest",
	Rules: concatRules(
		ratingsRules,
		dayStatsRules,
		[]Rule{
			prefixed(`Policy\s+NoTrade\b`, CategoryDiagnostics),
			prefixed(`(Risk|Guardrails?|Decisions?|Hotspots?|Drawdown|Liquidations?|Diagnostics?)\b`, CategoryDiagnostics),
		},
	),
	Categories: []Category{CategoryRatings, CategoryDiagnostics, CategoryDayStats, CategoryUnknown},
	Default:    CategoryUnknown,
}

// DiagnosticsRules splits the diagnostics report. Everything is a diagnostic
// table unless it is a rating, a day stat or explicitly experimental.
var DiagnosticsRules = &RuleTable{
	Name: "diagnostics",
	Rules: concatRules(
		ratingsRules,
		dayStatsRules,
		[]Rule{
			prefixed(`\[EXP(ERIMENTAL)?\]`, CategoryUnknown),
			prefixed(`(Experimental|Debug|Sandbox|Draft)\b`, CategoryUnknown),
		},
	),
	Categories: []Category{CategoryRatings, CategoryDiagnostics, CategoryDayStats, CategoryUnknown},
	Default:    CategoryDiagnostics,
}

// DiagnosticsGroupRules assigns diagnostics tables to in-page tabs.
// "Policy NoTrade ..." titles share a prefix; the specific forms must stay
// ahead of the generic one.
var DiagnosticsGroupRules = &RuleTable{
	Name: "diagnostics-groups",
	Rules: []Rule{
		prefixed(`Policy\s+NoTrade\s+Reasons\b`, CategoryDecisions),
		prefixed(`Policy\s+NoTrade\s+by\s+(Weekday|Hour|Month)\b`, CategoryHotspots),
		prefixed(`Policy\s+NoTrade\b`, CategoryDecisions),
		prefixed(`(Risk|Drawdown|Max\s*DD|Liquidations?|Exposure|Tail)\b`, CategoryRisk),
		prefixed(`(Guardrails?|Kill[- ]?Switch|Circuit\s+Breaker|Cooldown|Caps?)\b`, CategoryGuardrail),
		prefixed(`(Decisions?|Direction|Signal\s+Mix|Confidence)\b`, CategoryDecisions),
		prefixed(`(Hotspots?|Worst\s+(Days|Weeks|Hours)|Loss\s+Clusters?)\b`, CategoryHotspots),
	},
	Categories: []Category{CategoryRisk, CategoryGuardrail, CategoryDecisions, CategoryHotspots, CategoryOther},
	Default:    CategoryOther,
}

func concatRules(groups ...[]Rule) []Rule {
	var out []Rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
