package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

// SummaryReporter prints the navigation side of a view: groups, tabs and
// the view modes the report supports.
type SummaryReporter struct {
	writer io.Writer
}

func NewSummaryReporter(writer io.Writer) *SummaryReporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &SummaryReporter{writer: writer}
}

const tabsTemplate = `{{range .Tabs}}{{.Anchor}}	{{.Label}}
{{end}}`

const capabilitiesTemplate = `bucket	{{yesNo .SupportsBucketFiltering}}
metric	{{yesNo .SupportsMetricFiltering}}
tpsl	{{yesNo .SupportsTpSlFiltering}}
zonal	{{yesNo .SupportsZonalFiltering}}
`

const groupsTemplate = `{{range .Groups}}{{.Category}}	{{.Sections}}
{{end}}`

func (c *SummaryReporter) Tabs(view *domain.ReportView) error {
	return c.execute("tabs", tabsTemplate, view)
}

func (c *SummaryReporter) Capabilities(view *domain.ReportView) error {
	return c.execute("capabilities", capabilitiesTemplate, view.Capabilities)
}

func (c *SummaryReporter) Groups(view *domain.ReportView) error {
	return c.execute("groups", groupsTemplate, view)
}

func (c *SummaryReporter) execute(name, text string, data any) error {
	t, err := template.New(name).Funcs(template.FuncMap{
		"yesNo": func(b bool) string {
			if b {
				return "yes"
			}
			return "no"
		},
	}).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, data)
}
