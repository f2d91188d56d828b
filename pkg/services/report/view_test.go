package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
	"github.com/rtao-god/solsignal-reports/pkg/services/sections"
)

func tableOf(title string) *domain.TableSection {
	return &domain.TableSection{Title: title, Columns: []string{"Policy", "PnL%"}, Rows: [][]string{{"P1", "1"}}}
}

func tableTitles(tables []*domain.TableSection) []string {
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.Title)
	}
	return out
}

func backtestDocument() *domain.ReportDocument {
	return &domain.ReportDocument{
		ID:    "r-1",
		Kind:  KindBacktestSummary,
		Title: "Backtest",
		Sections: []domain.ReportSection{
			&domain.KeyValueSection{Title: "Run", Items: []domain.KeyValueItem{{Key: "Seed", Value: "7"}}},
			tableOf("[DAILY] Policy Ratings"),
			tableOf("[INTRADAY] Policy Ratings"),
			tableOf("Day Stats"),
			tableOf("Risk Drawdown"),
			tableOf("Policy NoTrade Reasons"),
			tableOf("Mystery"),
		},
	}
}

var megaColumns = []string{
	sections.ColumnPolicy, sections.ColumnBranch, sections.ColumnDays, sections.ColumnTrades, sections.ColumnTotalPnl,
	sections.ColumnDynDays, sections.ColumnDynTrades, sections.ColumnDynPnl,
	sections.ColumnStatDays, sections.ColumnStatTrades, sections.ColumnStatPnl,
}

func megaDocument(rows ...[]string) *domain.ReportDocument {
	return &domain.ReportDocument{
		ID:   "m-1",
		Kind: KindPolicyBranchMega,
		Sections: []domain.ReportSection{
			&domain.TableSection{Title: "Policy Branch Mega [PART 1/2]", Columns: megaColumns, Rows: rows},
			&domain.TableSection{
				Title:   "Policy Branch Mega [PART 2/2]",
				Columns: []string{sections.ColumnPolicy, sections.ColumnBranch, "WinRate%"},
				Rows:    [][]string{{"P1", "BASE", "55"}, {"P2", "ANTI", "40"}},
			},
		},
	}
}

func profileOf(t *testing.T, kind string) KindProfile {
	p, err := NewDefaultRegistry().Get(kind)
	require.NoError(t, err)
	return p
}

func TestProject_AllGroups(t *testing.T) {
	view, err := Project(profileOf(t, KindBacktestSummary), backtestDocument(), domain.ViewQuery{})

	require.NoError(t, err)
	assert.Len(t, view.Tables, 6)
	assert.Len(t, view.Tabs, 6)
	assert.Len(t, view.KeyValues, 1)
	assert.Equal(t, "backtest-section-1", view.Tabs[0].Anchor)
	assert.Equal(t, domain.ViewQuery{Group: "all", Bucket: "all", Metric: "all", Zonal: "all", TpSl: domain.TpSlAll}, view.Applied)
	assert.True(t, view.Capabilities.SupportsBucketFiltering)
	assert.False(t, view.Capabilities.SupportsMetricFiltering)

	assert.Equal(t, []domain.GroupSummary{
		{Category: "ratings", Sections: 2},
		{Category: "diagnostics", Sections: 2},
		{Category: "dayStats", Sections: 1},
		{Category: "unknown", Sections: 1},
		{Category: "risk", Sections: 1},
		{Category: "guardrail", Sections: 0},
		{Category: "decisions", Sections: 1},
		{Category: "hotspots", Sections: 0},
		{Category: "other", Sections: 1},
	}, view.Groups)
}

func TestProject_GroupSelection(t *testing.T) {
	view, err := Project(profileOf(t, KindBacktestSummary), backtestDocument(), domain.ViewQuery{Group: "risk"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Risk Drawdown"}, tableTitles(view.Tables))
	require.Len(t, view.Tabs, 1)
	assert.Equal(t, "backtest-risk-section-1", view.Tabs[0].Anchor)

	view, err = Project(profileOf(t, KindBacktestSummary), backtestDocument(), domain.ViewQuery{Group: "guardrail"})
	require.NoError(t, err)
	assert.Empty(t, view.Tables)
	assert.Empty(t, view.Tabs)
}

func TestProject_BucketFilter(t *testing.T) {
	view, err := Project(profileOf(t, KindBacktestSummary), backtestDocument(), domain.ViewQuery{Bucket: "daily"})

	require.NoError(t, err)
	assert.Equal(t, []string{"[DAILY] Policy Ratings", "Day Stats", "Risk Drawdown", "Policy NoTrade Reasons", "Mystery"}, tableTitles(view.Tables))
	assert.Equal(t, "daily", view.Applied.Bucket)
}

func TestProject_Errors(t *testing.T) {
	tests := []struct {
		name  string
		kind  string
		doc   *domain.ReportDocument
		query domain.ViewQuery
		want  error
	}{
		{name: "unknown group", kind: KindBacktestSummary, doc: backtestDocument(), query: domain.ViewQuery{Group: "nope"}, want: ErrUnknownGroup},
		{name: "group on a flat kind", kind: KindPolicyBranchMega, doc: megaDocument(), query: domain.ViewQuery{Group: "risk"}, want: ErrUnknownGroup},
		{name: "metric not offered", kind: KindBacktestSummary, doc: backtestDocument(), query: domain.ViewQuery{Metric: "real"}, want: ErrModeNotSupported},
		{name: "tpsl not offered", kind: KindBacktestSummary, doc: backtestDocument(), query: domain.ViewQuery{TpSl: domain.TpSlStatic}, want: ErrModeNotSupported},
		{name: "zonal not offered", kind: KindBacktestSummary, doc: backtestDocument(), query: domain.ViewQuery{Zonal: "flat"}, want: ErrModeNotSupported},
		{name: "bad bucket value", kind: KindBacktestSummary, doc: backtestDocument(), query: domain.ViewQuery{Bucket: "weekly"}, want: sections.ErrUnknownMode},
		{
			name:  "no trades for the slice",
			kind:  KindPolicyBranchMega,
			doc:   megaDocument([]string{"P1", "BASE", "1", "1", "1", "0", "0", "0", "1", "1", "1"}),
			query: domain.ViewQuery{TpSl: domain.TpSlDynamic},
			want:  sections.ErrContractViolation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := Project(profileOf(t, tt.kind), tt.doc, tt.query)
			assert.Nil(t, view)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestProject_TpSl(t *testing.T) {
	doc := megaDocument(
		[]string{"P1", "BASE", "10", "5", "12.5", "6", "3", "8.1", "4", "0", "0"},
		[]string{"P2", "ANTI", "7", "2", "-1.5", "0", "0", "0", "7", "2", "-1.5"},
	)

	view, err := Project(profileOf(t, KindPolicyBranchMega), doc, domain.ViewQuery{TpSl: domain.TpSlDynamic})

	require.NoError(t, err)
	require.Len(t, view.Tables, 2)
	assert.Equal(t, [][]string{{"P1", "BASE", "6", "3", "8.1", "6", "3", "8.1", "4", "0", "0"}}, view.Tables[0].Rows)
	assert.Equal(t, [][]string{{"P1", "BASE", "55"}}, view.Tables[1].Rows)
	assert.Equal(t, []domain.GroupSummary{{Category: "all", Sections: 2}}, view.Groups)
	assert.Equal(t, "mega-section-2", view.Tabs[1].Anchor)
	assert.Len(t, doc.TableSections()[0].Rows, 2, "document untouched")
}

func TestProject_TpSlMixedDocument(t *testing.T) {
	source := &domain.TableSection{
		Title:   "Policy Branch [PART 1/3]",
		Columns: megaColumns,
		Rows: [][]string{
			{"P1", "BASE", "10", "5", "12.5", "6", "3", "8.1", "4", "0", "0"},
			{"P2", "ANTI", "7", "2", "-1.5", "0", "0", "0", "7", "2", "-1.5"},
		},
	}

	t.Run("backtest summary", func(t *testing.T) {
		ratings := tableOf("Policy Ratings")
		doc := &domain.ReportDocument{Kind: KindBacktestSummary, Sections: []domain.ReportSection{ratings, source}}

		view, err := Project(profileOf(t, KindBacktestSummary), doc, domain.ViewQuery{TpSl: domain.TpSlStatic})

		require.NoError(t, err)
		assert.True(t, view.Capabilities.SupportsTpSlFiltering)
		assert.ElementsMatch(t, []string{"Policy Ratings", "Policy Branch [PART 1/3]"}, tableTitles(view.Tables))
		for _, table := range view.Tables {
			if table.Title == "Policy Ratings" {
				assert.Equal(t, ratings.Rows, table.Rows)
				continue
			}
			assert.Equal(t, [][]string{{"P2", "ANTI", "7", "2", "-1.5", "0", "0", "0", "7", "2", "-1.5"}}, table.Rows)
		}
	})

	t.Run("mega with a plain policy table", func(t *testing.T) {
		doc := megaDocument(source.Rows...)
		doc.Sections = append(doc.Sections, &domain.TableSection{
			Title:   "Top Trades",
			Columns: []string{sections.ColumnPolicy, sections.ColumnBranch},
			Rows:    [][]string{{"P2", "ANTI"}},
		})

		view, err := Project(profileOf(t, KindPolicyBranchMega), doc, domain.ViewQuery{TpSl: domain.TpSlDynamic})

		require.NoError(t, err)
		assert.Equal(t, []string{"Policy Branch Mega [PART 1/2]", "Policy Branch Mega [PART 2/2]", "Top Trades"}, tableTitles(view.Tables))
		assert.Equal(t, [][]string{{"P2", "ANTI"}}, view.Tables[2].Rows)
	})
}

func TestProject_PfiTabs(t *testing.T) {
	doc := &domain.ReportDocument{
		Kind: KindPfiPerModel,
		Sections: []domain.ReportSection{
			tableOf("PFI по фичам: LightGBM thr=0.55 (AUC=0.61)"),
			tableOf(""),
		},
	}

	view, err := Project(profileOf(t, KindPfiPerModel), doc, domain.ViewQuery{})

	require.NoError(t, err)
	assert.Equal(t, []domain.TabDescriptor{
		{ID: "pfi-model-1", Label: "LightGBM", Anchor: "pfi-model-1"},
		{ID: "pfi-model-2", Label: "Модель 2", Anchor: "pfi-model-2"},
	}, view.Tabs)
}
