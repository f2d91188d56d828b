package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

func sampleTable() *domain.TableSection {
	return &domain.TableSection{
		Title:   "=== Policy Ratings [DAILY] ===",
		Columns: []string{"Policy", "Branch", "PnL%"},
		Rows: [][]string{
			{"P1", "BASE", "12,5"},
			{"P2, \"alt\"", "ANTI"},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable(), true))

	out := buf.Bytes()
	assert.Equal(t, utf8BOM, out[:3])
	assert.Equal(t, "Policy,Branch,PnL%\nP1,BASE,\"12,5\"\n\"P2, \"\"alt\"\"\",ANTI,\n", string(out[3:]))

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, sampleTable(), false))
	assert.Equal(t, "Policy", buf.String()[:6])
}

func TestWriteXLSX(t *testing.T) {
	data, err := Encode(sampleTable(), FormatXLSX, Options{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	assert.Equal(t, "=== Policy Ratings  DAILY  ===", sheet)

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Policy", "Branch", "PnL%"}, rows[0])
	assert.Equal(t, []string{"P1", "BASE", "12,5"}, rows[1])
	assert.Equal(t, "P2, \"alt\"", rows[2][0])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)

	_, err = Encode(sampleTable(), "pdf", Options{})
	assert.Error(t, err)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Report", SheetName("  "))
	assert.Equal(t, "a b", SheetName("a/b"))
	assert.Equal(t, 31, len([]rune(SheetName(strings.Repeat("Я", 40)))))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "backtest-summary-table-2.csv", FileName("backtest-summary", 1, FormatCSV))
	assert.Equal(t, "report-table-1.xlsx", FileName("//", 0, FormatXLSX))
}
