package domain

// ReportDocument is a report as emitted by the report backend.
// Sections keep the order they were received in.
type ReportDocument struct {
	ID             string
	Kind           string
	Title          string
	GeneratedAtUTC string
	Sections       []ReportSection
}

type SectionKind string

const (
	SectionKindKeyValue SectionKind = "key-value"
	SectionKindTable    SectionKind = "table"
)

// ReportSection is implemented by *KeyValueSection and *TableSection only.
type ReportSection interface {
	SectionTitle() string
	Kind() SectionKind
}

type KeyValueItem struct {
	Key   string
	Value string
}

type KeyValueSection struct {
	Title string
	Items []KeyValueItem
}

func (s *KeyValueSection) SectionTitle() string { return s.Title }
func (s *KeyValueSection) Kind() SectionKind    { return SectionKindKeyValue }

// Lookup returns the value of the first item with the given key.
func (s *KeyValueSection) Lookup(key string) (string, bool) {
	for _, item := range s.Items {
		if item.Key == key {
			return item.Value, true
		}
	}
	return "", false
}

// SectionMetadata is opaque classification data attached by the backend.
type SectionMetadata struct {
	ZonalMode string
	Labels    map[string]string
}

type TableSection struct {
	Title    string
	Columns  []string
	Rows     [][]string
	Metadata *SectionMetadata
}

func (s *TableSection) SectionTitle() string { return s.Title }
func (s *TableSection) Kind() SectionKind    { return SectionKindTable }

// ColumnIndex returns the position of the first column with the given name, or -1.
func (s *TableSection) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumns reports whether every name is present among the columns.
func (s *TableSection) HasColumns(names ...string) bool {
	for _, n := range names {
		if s.ColumnIndex(n) < 0 {
			return false
		}
	}
	return true
}

// ZonalMode returns the metadata zonal mode or an empty string.
func (s *TableSection) ZonalMode() string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata.ZonalMode
}

// WithRows returns a shallow copy of the section carrying the given rows.
func (s *TableSection) WithRows(rows [][]string) *TableSection {
	return &TableSection{
		Title:    s.Title,
		Columns:  s.Columns,
		Rows:     rows,
		Metadata: s.Metadata,
	}
}

// TableSections returns the table sections of the document in order.
func (d *ReportDocument) TableSections() []*TableSection {
	var tables []*TableSection
	for _, s := range d.Sections {
		if t, ok := s.(*TableSection); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// KeyValueSections returns the key-value sections of the document in order.
func (d *ReportDocument) KeyValueSections() []*KeyValueSection {
	var kvs []*KeyValueSection
	for _, s := range d.Sections {
		if kv, ok := s.(*KeyValueSection); ok {
			kvs = append(kvs, kv)
		}
	}
	return kvs
}
