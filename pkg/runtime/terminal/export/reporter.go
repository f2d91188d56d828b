package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

type TableConfig struct {
	// MaxCellWidth caps a column; longer cells are cut with an ellipsis.
	MaxCellWidth int
	MinCellWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		MaxCellWidth: 40,
		MinCellWidth: 4,
	}
}

// Reporter prints a ReportView as framed text tables.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	return NewReporterWithConfig(writer, DefaultTableConfig())
}

func NewReporterWithConfig(writer io.Writer, config TableConfig) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: config,
	}
}

type tableData struct {
	Title  string
	Anchor string
	Header []string
	Rows   [][]string
	Widths []int
}

type viewData struct {
	*domain.ReportView
	TableData []tableData
}

const viewTemplate = `
{{.Title}} [{{.Kind}}]
Generated: {{if .GeneratedAtUTC}}{{.GeneratedAtUTC}}{{else}}n/a{{end}}
Modes: bucket={{.Applied.Bucket}} metric={{.Applied.Metric}} zonal={{.Applied.Zonal}} tpsl={{.Applied.TpSl}}{{if .Applied.Group}} group={{.Applied.Group}}{{end}}
{{range .KeyValues}}
=== {{.Title}} ===
{{range .Items}}{{.Key}}: {{.Value}}
{{end}}{{end}}{{range .TableData}}{{$w := .Widths}}
=== {{.Title}} ==={{if .Anchor}} #{{.Anchor}}{{end}}
{{separator $w}}
{{formatRow .Header $w}}
{{separator $w}}
{{range .Rows}}{{formatRow . $w}}
{{end}}{{separator $w}}
{{end}}`

func (c *Reporter) Handle(view *domain.ReportView) error {
	data := viewData{ReportView: view, TableData: make([]tableData, 0, len(view.Tables))}
	for i, t := range view.Tables {
		td := tableData{
			Title:  t.Title,
			Header: t.Columns,
			Rows:   t.Rows,
			Widths: c.columnWidths(t),
		}
		if i < len(view.Tabs) {
			td.Anchor = view.Tabs[i].Anchor
		}
		data.TableData = append(data.TableData, td)
	}

	t, err := template.New("view").Funcs(c.funcMap()).Parse(viewTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, data)
}

func (c *Reporter) columnWidths(t *domain.TableSection) []int {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = max(c.config.MinCellWidth, utf8.RuneCountInString(col))
	}
	for _, row := range t.Rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], utf8.RuneCountInString(row[i]))
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], c.config.MaxCellWidth)
	}
	return widths
}

func (c *Reporter) funcMap() template.FuncMap {
	return template.FuncMap{
		"formatRow": func(cells []string, widths []int) string {
			var b strings.Builder
			b.WriteString("|")
			for i, w := range widths {
				cell := ""
				if i < len(cells) {
					cell = truncate(cells[i], w)
				}
				fmt.Fprintf(&b, " %s%s |", cell, strings.Repeat(" ", w-utf8.RuneCountInString(cell)))
			}
			return b.String()
		},
		"separator": func(widths []int) string {
			var b strings.Builder
			b.WriteString("+")
			for _, w := range widths {
				b.WriteString(strings.Repeat("-", w+2))
				b.WriteString("+")
			}
			return b.String()
		},
	}
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	if width <= 1 {
		return string([]rune(s)[:width])
	}
	return string([]rune(s)[:width-1]) + "…"
}
