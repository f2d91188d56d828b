package adapters

import (
	"errors"
	"fmt"

	"github.com/rtao-god/solsignal-reports/pkg/models/api"
	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

const metadataZonalMode = "zonalMode"

var ErrUnrecognizedSection = errors.New("section is neither a table nor a key-value list")

// MapAPIReportToDomain turns the duck-typed wire document into the tagged
// section union. A section is a table when it has columns and a rows array,
// otherwise a key-value section when it has items.
func MapAPIReportToDomain(doc *api.ReportDocument) (*domain.ReportDocument, error) {
	if doc == nil {
		return nil, fmt.Errorf("report document is nil")
	}

	sections := make([]domain.ReportSection, 0, len(doc.Sections))
	for i, s := range doc.Sections {
		switch {
		case len(s.Columns) > 0 && s.Rows != nil:
			sections = append(sections, &domain.TableSection{
				Title:    s.Title,
				Columns:  s.Columns,
				Rows:     s.Rows,
				Metadata: mapAPIMetadata(s.Metadata),
			})
		case s.Items != nil:
			items := make([]domain.KeyValueItem, 0, len(s.Items))
			for _, item := range s.Items {
				items = append(items, domain.KeyValueItem{Key: item.Key, Value: item.Value})
			}
			sections = append(sections, &domain.KeyValueSection{Title: s.Title, Items: items})
		default:
			return nil, fmt.Errorf("report %q section %d (%q): %w", doc.ID, i+1, s.Title, ErrUnrecognizedSection)
		}
	}

	return &domain.ReportDocument{
		ID:             doc.ID,
		Kind:           doc.Kind,
		Title:          doc.Title,
		GeneratedAtUTC: doc.GeneratedAtUTC,
		Sections:       sections,
	}, nil
}

func MapDomainReportToAPI(doc *domain.ReportDocument) *api.ReportDocument {
	sections := make([]api.ReportSection, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		switch v := s.(type) {
		case *domain.TableSection:
			sections = append(sections, mapDomainTableToAPI(v))
		case *domain.KeyValueSection:
			sections = append(sections, mapDomainKeyValueToAPI(v))
		}
	}

	return &api.ReportDocument{
		ID:             doc.ID,
		Kind:           doc.Kind,
		Title:          doc.Title,
		GeneratedAtUTC: doc.GeneratedAtUTC,
		Sections:       sections,
	}
}

func MapDomainViewToAPI(view *domain.ReportView) *api.ReportView {
	tabs := make([]api.TabDescriptor, 0, len(view.Tabs))
	for _, t := range view.Tabs {
		tabs = append(tabs, api.TabDescriptor{ID: t.ID, Label: t.Label, Anchor: t.Anchor})
	}

	groups := make([]api.GroupSummary, 0, len(view.Groups))
	for _, g := range view.Groups {
		groups = append(groups, api.GroupSummary{Category: g.Category, Sections: g.Sections})
	}

	return &api.ReportView{
		ReportDocument: *MapDomainReportToAPI(view.Document()),
		Tabs:           tabs,
		Capabilities: api.ViewCapabilities{
			SupportsBucketFiltering: view.Capabilities.SupportsBucketFiltering,
			SupportsMetricFiltering: view.Capabilities.SupportsMetricFiltering,
			SupportsTpSlFiltering:   view.Capabilities.SupportsTpSlFiltering,
			SupportsZonalFiltering:  view.Capabilities.SupportsZonalFiltering,
		},
		Groups: groups,
		Applied: api.ViewQuery{
			Group:  view.Applied.Group,
			Bucket: view.Applied.Bucket,
			Metric: view.Applied.Metric,
			Zonal:  view.Applied.Zonal,
			TpSl:   string(view.Applied.TpSl),
		},
	}
}

func mapDomainTableToAPI(t *domain.TableSection) api.ReportSection {
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return api.ReportSection{
		Title:    t.Title,
		Columns:  t.Columns,
		Rows:     rows,
		Metadata: mapDomainMetadata(t.Metadata),
	}
}

func mapDomainKeyValueToAPI(kv *domain.KeyValueSection) api.ReportSection {
	items := make([]api.KeyValueItem, 0, len(kv.Items))
	for _, item := range kv.Items {
		items = append(items, api.KeyValueItem{Key: item.Key, Value: item.Value})
	}
	return api.ReportSection{Title: kv.Title, Items: items}
}

func mapAPIMetadata(md map[string]any) *domain.SectionMetadata {
	out := &domain.SectionMetadata{Labels: make(map[string]string, len(md))}
	for k, v := range md {
		if v == nil {
			continue
		}
		if k == metadataZonalMode {
			if mode, ok := v.(string); ok {
				out.ZonalMode = mode
			}
			continue
		}
		out.Labels[k] = fmt.Sprint(v)
	}
	if out.ZonalMode == "" && len(out.Labels) == 0 {
		return nil
	}
	return out
}

func mapDomainMetadata(md *domain.SectionMetadata) map[string]any {
	if md == nil {
		return nil
	}

	out := make(map[string]any, len(md.Labels)+1)
	for k, v := range md.Labels {
		out[k] = v
	}
	if md.ZonalMode != "" {
		out[metadataZonalMode] = md.ZonalMode
	}
	return out
}
