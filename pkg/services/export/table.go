package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const maxSheetName = 31

var (
	utf8BOM          = []byte{0xEF, 0xBB, 0xBF}
	sheetNameIllegal = regexp.MustCompile(`[\[\]:*?/\\]`)
	fileNameIllegal  = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

type Options struct {
	// BOM prefixes CSV output with a UTF-8 byte order mark for Excel.
	BOM bool
}

// Encode renders one table section in the given format.
func Encode(table *domain.TableSection, format Format, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatCSV:
		err = WriteCSV(&buf, table, opts.BOM)
	case FormatXLSX:
		err = WriteXLSX(&buf, table)
	default:
		err = fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteCSV(w io.Writer, table *domain.TableSection, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, row := range table.Rows {
		if err := writer.Write(padRow(row, len(table.Columns))); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func WriteXLSX(w io.Writer, table *domain.TableSection) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(table.Title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setRow(f, sheet, 1, table.Columns); err != nil {
		return err
	}
	for i, row := range table.Rows {
		if err := setRow(f, sheet, i+2, padRow(row, len(table.Columns))); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, n int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", n, err)
	}

	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", n, err)
	}
	return nil
}

// SheetName turns a section title into a valid worksheet name.
func SheetName(title string) string {
	name := strings.TrimSpace(sheetNameIllegal.ReplaceAllString(title, " "))
	name = strings.Trim(name, "'")
	if name == "" {
		return "Report"
	}
	if utf8.RuneCountInString(name) > maxSheetName {
		name = strings.TrimSpace(string([]rune(name)[:maxSheetName]))
	}
	return name
}

// FileName builds a download name such as "backtest-summary-table-2.csv".
func FileName(kind string, index int, format Format) string {
	base := strings.Trim(fileNameIllegal.ReplaceAllString(kind, "-"), "-")
	if base == "" {
		base = "report"
	}
	return fmt.Sprintf("%s-table-%d.%s", base, index+1, format)
}

func padRow(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
