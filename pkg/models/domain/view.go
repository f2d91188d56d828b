package domain

// ModeAll disables a view-mode filter.
const ModeAll = "all"

type TpSlMode string

const (
	TpSlAll     TpSlMode = "all"
	TpSlDynamic TpSlMode = "dynamic"
	TpSlStatic  TpSlMode = "static"
)

const (
	MetricReal             = "real"
	MetricNoBiggestLiqLoss = "no-biggest-liq-loss"
)

type TabDescriptor struct {
	ID     string
	Label  string
	Anchor string
}

type ViewCapabilities struct {
	SupportsBucketFiltering bool
	SupportsMetricFiltering bool
	SupportsTpSlFiltering   bool
	SupportsZonalFiltering  bool
}

// ViewQuery selects the view modes and the section group to render.
// Empty fields are treated as ModeAll.
type ViewQuery struct {
	Group  string
	Bucket string
	Metric string
	Zonal  string
	TpSl   TpSlMode
}

// Normalized returns a copy with empty modes replaced by ModeAll.
func (q ViewQuery) Normalized() ViewQuery {
	if q.Bucket == "" {
		q.Bucket = ModeAll
	}
	if q.Metric == "" {
		q.Metric = ModeAll
	}
	if q.Zonal == "" {
		q.Zonal = ModeAll
	}
	if q.TpSl == "" {
		q.TpSl = TpSlAll
	}
	return q
}

type GroupSummary struct {
	Category string
	Sections int
}

// ReportView is the derived projection of a ReportDocument handed to renderers.
// Tabs line up one-to-one with Tables.
type ReportView struct {
	ID             string
	Kind           string
	Title          string
	GeneratedAtUTC string
	KeyValues      []*KeyValueSection
	Tables         []*TableSection
	Tabs           []TabDescriptor
	Capabilities   ViewCapabilities
	Groups         []GroupSummary
	Applied        ViewQuery
}

// Document folds the view back into the ReportDocument shape:
// key-value sections first, then the selected tables.
func (v *ReportView) Document() *ReportDocument {
	sections := make([]ReportSection, 0, len(v.KeyValues)+len(v.Tables))
	for _, kv := range v.KeyValues {
		sections = append(sections, kv)
	}
	for _, t := range v.Tables {
		sections = append(sections, t)
	}
	return &ReportDocument{
		ID:             v.ID,
		Kind:           v.Kind,
		Title:          v.Title,
		GeneratedAtUTC: v.GeneratedAtUTC,
		Sections:       sections,
	}
}
