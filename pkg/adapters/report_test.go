package adapters

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtao-god/solsignal-reports/pkg/models/api"
	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

const sampleDocument = `{
  "id": "r-42",
  "kind": "backtest-summary",
  "title": "Backtest",
  "generatedAtUtc": "2026-10-01T00:00:00Z",
  "sections": [
    {"title": "Run", "items": [{"key": "Seed", "value": "7"}]},
    {"title": "=== Policy Ratings ===", "columns": ["Policy", "PnL%"], "rows": [["P1", "1.5"]], "metadata": {"zonalMode": "flat", "source": "engine"}},
    {"title": "Empty table", "columns": ["Policy"], "rows": []}
  ]
}`

func TestMapAPIReportToDomain(t *testing.T) {
	var doc api.ReportDocument
	require.NoError(t, json.Unmarshal([]byte(sampleDocument), &doc))

	out, err := MapAPIReportToDomain(&doc)

	require.NoError(t, err)
	require.Len(t, out.Sections, 3)
	assert.Equal(t, "r-42", out.ID)
	assert.Equal(t, "backtest-summary", out.Kind)

	kv, ok := out.Sections[0].(*domain.KeyValueSection)
	require.True(t, ok)
	v, found := kv.Lookup("Seed")
	assert.True(t, found)
	assert.Equal(t, "7", v)

	tbl, ok := out.Sections[1].(*domain.TableSection)
	require.True(t, ok)
	assert.Equal(t, "flat", tbl.ZonalMode())
	assert.Equal(t, map[string]string{"source": "engine"}, tbl.Metadata.Labels)

	empty, ok := out.Sections[2].(*domain.TableSection)
	require.True(t, ok)
	assert.Empty(t, empty.Rows)
	assert.Nil(t, empty.Metadata)
}

func TestMapAPIMetadata(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want *domain.SectionMetadata
	}{
		{name: "empty", in: nil, want: nil},
		{name: "null zonal mode", in: map[string]any{"zonalMode": nil}, want: nil},
		{name: "non string zonal mode", in: map[string]any{"zonalMode": 3.0, "source": "engine"}, want: &domain.SectionMetadata{Labels: map[string]string{"source": "engine"}}},
		{name: "null label", in: map[string]any{"zonalMode": "flat", "note": nil}, want: &domain.SectionMetadata{ZonalMode: "flat", Labels: map[string]string{}}},
		{name: "numeric label", in: map[string]any{"seed": 7.0}, want: &domain.SectionMetadata{Labels: map[string]string{"seed": "7"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapAPIMetadata(tt.in))
		})
	}
}

func TestMapDomainMetadata(t *testing.T) {
	out := mapDomainMetadata(&domain.SectionMetadata{ZonalMode: "zonal", Labels: map[string]string{"source": "engine"}})
	assert.Equal(t, map[string]any{"zonalMode": "zonal", "source": "engine"}, out)
	assert.Nil(t, mapDomainMetadata(nil))
}

func TestMapAPIReportToDomain_Unrecognized(t *testing.T) {
	tests := []struct {
		name    string
		section api.ReportSection
	}{
		{name: "no shape", section: api.ReportSection{Title: "Orphan"}},
		{name: "columns without rows", section: api.ReportSection{Title: "Half", Columns: []string{"A"}}},
		{name: "rows without columns", section: api.ReportSection{Title: "Half", Rows: [][]string{{"1"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &api.ReportDocument{ID: "r", Sections: []api.ReportSection{tt.section}}
			_, err := MapAPIReportToDomain(doc)
			assert.True(t, errors.Is(err, ErrUnrecognizedSection), "got %v", err)
		})
	}

	_, err := MapAPIReportToDomain(nil)
	assert.Error(t, err)
}

func TestMapDomainViewToAPI(t *testing.T) {
	view := &domain.ReportView{
		ID:        "r-1",
		Kind:      "backtest-summary",
		Title:     "Backtest",
		KeyValues: []*domain.KeyValueSection{{Title: "Run", Items: []domain.KeyValueItem{{Key: "k", Value: "v"}}}},
		Tables: []*domain.TableSection{{
			Title:    "Ratings",
			Columns:  []string{"Policy"},
			Metadata: &domain.SectionMetadata{ZonalMode: "zonal"},
		}},
		Tabs:         []domain.TabDescriptor{{ID: "section-1", Label: "Ratings", Anchor: "section-1"}},
		Capabilities: domain.ViewCapabilities{SupportsTpSlFiltering: true},
		Groups:       []domain.GroupSummary{{Category: "ratings", Sections: 1}},
		Applied:      domain.ViewQuery{Bucket: "all", Metric: "all", Zonal: "all", TpSl: domain.TpSlDynamic},
	}

	out := MapDomainViewToAPI(view)

	require.Len(t, out.Sections, 2)
	assert.Equal(t, "Run", out.Sections[0].Title)
	assert.Equal(t, "Ratings", out.Sections[1].Title)
	assert.NotNil(t, out.Sections[1].Rows, "tables always carry a rows array")
	assert.Equal(t, "zonal", out.Sections[1].Metadata["zonalMode"])
	assert.Equal(t, "dynamic", out.Applied.TpSl)
	assert.True(t, out.Capabilities.SupportsTpSlFiltering)
	assert.Equal(t, []api.GroupSummary{{Category: "ratings", Sections: 1}}, out.Groups)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	var back api.ReportDocument
	require.NoError(t, json.Unmarshal(raw, &back))
	doc, err := MapAPIReportToDomain(&back)
	require.NoError(t, err)
	assert.Len(t, doc.TableSections(), 1, "a served view is itself a valid document")
}

func TestSnapshotMapping(t *testing.T) {
	var doc api.ReportDocument
	require.NoError(t, json.Unmarshal([]byte(sampleDocument), &doc))
	dom, err := MapAPIReportToDomain(&doc)
	require.NoError(t, err)

	fetched := time.Date(2026, 10, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	snap, err := MapDomainReportToSnapshot(dom, fetched)
	require.NoError(t, err)
	assert.Equal(t, "r-42", snap.ReportID)
	assert.Equal(t, time.UTC, snap.FetchedAt.Location())

	restored, err := MapSnapshotToDomainReport(snap)
	require.NoError(t, err)
	assert.Equal(t, dom, restored)
}
