package report

import (
	"fmt"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
	"github.com/rtao-god/solsignal-reports/pkg/services/sections"
)

// Project derives the view of a document for the given query. It is pure:
// the document is never modified.
//
// Modes apply in a fixed order (bucket, metric, zonal, TP/SL) on the table
// sections. The result is then split with the kind's rule table and the
// requested group is selected. Tab anchors are local to the selected group.
func Project(profile KindProfile, doc *domain.ReportDocument, query domain.ViewQuery) (*domain.ReportView, error) {
	q := query.Normalized()
	if q.Group == "" {
		q.Group = domain.ModeAll
	}

	tables := doc.TableSections()
	caps := sections.ResolveCapabilities(tables)
	if err := checkSupported(caps, q); err != nil {
		return nil, err
	}

	filtered, err := applyModes(tables, q)
	if err != nil {
		return nil, err
	}

	groups, selected, err := selectGroup(profile, filtered, q.Group)
	if err != nil {
		return nil, err
	}

	prefix := profile.TabPrefix
	if q.Group != domain.ModeAll {
		prefix = joinPrefix(prefix, q.Group)
	}

	var tabs []domain.TabDescriptor
	if profile.PFI {
		tabs = sections.BuildPfiTabs(prefix, selected)
	} else {
		tabs = sections.BuildTabs(prefix, selected)
	}

	return &domain.ReportView{
		ID:             doc.ID,
		Kind:           doc.Kind,
		Title:          doc.Title,
		GeneratedAtUTC: doc.GeneratedAtUTC,
		KeyValues:      doc.KeyValueSections(),
		Tables:         selected,
		Tabs:           tabs,
		Capabilities:   caps,
		Groups:         groups,
		Applied:        q,
	}, nil
}

func checkSupported(caps domain.ViewCapabilities, q domain.ViewQuery) error {
	switch {
	case q.Bucket != domain.ModeAll && !caps.SupportsBucketFiltering:
		return fmt.Errorf("bucket %q: %w", q.Bucket, ErrModeNotSupported)
	case q.Metric != domain.ModeAll && !caps.SupportsMetricFiltering:
		return fmt.Errorf("metric %q: %w", q.Metric, ErrModeNotSupported)
	case q.Zonal != domain.ModeAll && !caps.SupportsZonalFiltering:
		return fmt.Errorf("zonal %q: %w", q.Zonal, ErrModeNotSupported)
	case q.TpSl != domain.TpSlAll && !caps.SupportsTpSlFiltering:
		return fmt.Errorf("tpsl %q: %w", q.TpSl, ErrModeNotSupported)
	}
	return nil
}

func applyModes(tables []*domain.TableSection, q domain.ViewQuery) ([]*domain.TableSection, error) {
	out, err := sections.ApplyBucketMode(tables, q.Bucket)
	if err != nil {
		return nil, err
	}
	if out, err = sections.ApplyMetricMode(out, q.Metric); err != nil {
		return nil, err
	}
	if out, err = sections.ApplyZonalMode(out, q.Zonal); err != nil {
		return nil, err
	}
	return sections.ApplyTpSlMode(out, q.TpSl)
}

func selectGroup(profile KindProfile, tables []*domain.TableSection, group string) ([]domain.GroupSummary, []*domain.TableSection, error) {
	if profile.Rules == nil {
		summary := []domain.GroupSummary{{Category: domain.ModeAll, Sections: len(tables)}}
		if group != domain.ModeAll {
			return nil, nil, fmt.Errorf("group %q: %w", group, ErrUnknownGroup)
		}
		return summary, tables, nil
	}

	pages := sections.Split(tables, profile.Rules)
	all := pages
	if profile.FineGroups {
		all = append(append(sections.Buckets{}, pages...), sections.DiagnosticsGroups(pages)...)
	}

	summary := make([]domain.GroupSummary, 0, len(all))
	for _, b := range all {
		summary = append(summary, domain.GroupSummary{Category: string(b.Category), Sections: len(b.Sections)})
	}

	if group == domain.ModeAll {
		return summary, tables, nil
	}
	category := sections.Category(group)
	if !all.Has(category) {
		return nil, nil, fmt.Errorf("group %q: %w", group, ErrUnknownGroup)
	}
	return summary, all.Get(category), nil
}

func joinPrefix(prefix, group string) string {
	if prefix == "" {
		return group
	}
	return prefix + "-" + group
}
