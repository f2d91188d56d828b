package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

func sampleView() *domain.ReportView {
	return &domain.ReportView{
		ID:             "r1",
		Kind:           "backtest-summary",
		Title:          "Backtest Summary",
		GeneratedAtUTC: "2026-10-01T00:00:00Z",
		KeyValues: []*domain.KeyValueSection{
			{Title: "Run", Items: []domain.KeyValueItem{{Key: "Days", Value: "30"}}},
		},
		Tables: []*domain.TableSection{{
			Title:   "Policy Ratings",
			Columns: []string{"Policy", "PnL%"},
			Rows:    [][]string{{"P1", "12.5"}, {"very-long-policy-name", "-3"}},
		}},
		Tabs:         []domain.TabDescriptor{{ID: "backtest-section-1", Label: "Policy Ratings", Anchor: "backtest-section-1"}},
		Capabilities: domain.ViewCapabilities{SupportsBucketFiltering: true},
		Groups:       []domain.GroupSummary{{Category: "ratings", Sections: 1}},
		Applied:      domain.ViewQuery{}.Normalized(),
	}
}

func TestReporter_Handle(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporterWithConfig(&buf, TableConfig{MaxCellWidth: 10, MinCellWidth: 4})

	require.NoError(t, reporter.Handle(sampleView()))

	out := buf.String()
	assert.Contains(t, out, "Backtest Summary [backtest-summary]")
	assert.Contains(t, out, "Modes: bucket=all metric=all zonal=all tpsl=all\n")
	assert.Contains(t, out, "=== Run ===\nDays: 30\n")
	assert.Contains(t, out, "=== Policy Ratings === #backtest-section-1\n")
	assert.Contains(t, out, "+------------+------+\n")
	assert.Contains(t, out, "| Policy     | PnL% |\n")
	assert.Contains(t, out, "| very-long… | -3   |\n")
}

func TestReporter_ShortRowsArePadded(t *testing.T) {
	var buf bytes.Buffer
	view := &domain.ReportView{
		Title:  "T",
		Tables: []*domain.TableSection{{Title: "X", Columns: []string{"A", "B"}, Rows: [][]string{{"1"}}}},
	}

	require.NoError(t, NewReporter(&buf).Handle(view))

	assert.Contains(t, buf.String(), "| 1    |      |\n")
	assert.Contains(t, buf.String(), "Generated: n/a")
}

func TestSummaryReporter(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewSummaryReporter(&buf)
	view := sampleView()

	require.NoError(t, reporter.Tabs(view))
	require.NoError(t, reporter.Capabilities(view))
	require.NoError(t, reporter.Groups(view))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"backtest-section-1\tPolicy Ratings",
		"bucket\tyes",
		"metric\tno",
		"tpsl\tno",
		"zonal\tno",
		"ratings\t1",
	}, lines)
}
