package api

import (
	"encoding/json"
	"time"
)

// ReportDocument is the JSON document served by the report backend.
type ReportDocument struct {
	ID             string          `json:"id"`
	Kind           string          `json:"kind"`
	Title          string          `json:"title"`
	GeneratedAtUTC string          `json:"generatedAtUtc"`
	Sections       []ReportSection `json:"sections"`
}

// ReportSection is duck-typed on the wire: tables carry columns and rows,
// key-value sections carry items.
type ReportSection struct {
	Title    string         `json:"title"`
	Items    []KeyValueItem `json:"items,omitempty"`
	Columns  []string       `json:"columns,omitempty"`
	Rows     [][]string     `json:"rows,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MarshalJSON keeps the rows array on tables even when it is empty, since
// the rows array is what marks a section as a table.
func (s ReportSection) MarshalJSON() ([]byte, error) {
	if len(s.Columns) == 0 {
		type keyValue struct {
			Title string         `json:"title"`
			Items []KeyValueItem `json:"items"`
		}
		items := s.Items
		if items == nil {
			items = []KeyValueItem{}
		}
		return json.Marshal(keyValue{Title: s.Title, Items: items})
	}

	type table struct {
		Title    string         `json:"title"`
		Columns  []string       `json:"columns"`
		Rows     [][]string     `json:"rows"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}
	rows := s.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return json.Marshal(table{Title: s.Title, Columns: s.Columns, Rows: rows, Metadata: s.Metadata})
}

type KeyValueItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type TabDescriptor struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Anchor string `json:"anchor"`
}

type ViewCapabilities struct {
	SupportsBucketFiltering bool `json:"supportsBucketFiltering"`
	SupportsMetricFiltering bool `json:"supportsMetricFiltering"`
	SupportsTpSlFiltering   bool `json:"supportsTpSlFiltering"`
	SupportsZonalFiltering  bool `json:"supportsZonalFiltering"`
}

type GroupSummary struct {
	Category string `json:"category"`
	Sections int    `json:"sections"`
}

type ViewQuery struct {
	Group  string `json:"group,omitempty"`
	Bucket string `json:"bucket"`
	Metric string `json:"metric"`
	Zonal  string `json:"zonal"`
	TpSl   string `json:"tpsl"`
}

type ReportView struct {
	ReportDocument
	Tabs         []TabDescriptor  `json:"tabs"`
	Capabilities ViewCapabilities `json:"capabilities"`
	Groups       []GroupSummary   `json:"groups"`
	Applied      ViewQuery        `json:"applied"`
}

type ReportKind struct {
	Kind     string `json:"kind"`
	Endpoint string `json:"endpoint"`
}

type RefreshResult struct {
	Refreshed []string          `json:"refreshed"`
	Failed    map[string]string `json:"failed"`
}

type RefreshState struct {
	Kind          string     `json:"kind"`
	LastAttemptAt time.Time  `json:"lastAttemptAt"`
	LastSuccessAt *time.Time `json:"lastSuccessAt,omitempty"`
	LastError     *string    `json:"lastError,omitempty"`
}

type ExportUpload struct {
	URI string `json:"uri"`
}
