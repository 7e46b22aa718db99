package benchmark

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
)

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmarks.xlsx")
	asOf := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	rows := []model.RentBenchmark{
		{Country: "UK", City: "London", SubmarketID: i64Ptr(3), Bedrooms: intPtr(2),
			PropertyType: strPtr("Flat"), RentPSQMMin: 20, RentPSQMMax: 35,
			SampleSize: 12, Currency: "GBP", Source: sourceTag, AsOfDate: asOf},
		{Country: "UK", City: "Unknown", RentPSQMMin: 10, RentPSQMMax: 15,
			SampleSize: 5, Currency: "GBP", Source: sourceTag, AsOfDate: asOf},
	}
	require.NoError(t, ExportXLSX(path, rows))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 3, "header plus two data rows")
	assert.Equal(t, "Country", sheet.Rows[0].Cells[0].String())

	first := sheet.Rows[1]
	assert.Equal(t, "London", first.Cells[1].String())
	assert.Equal(t, "Flat", first.Cells[4].String())
	min, err := first.Cells[5].Float()
	require.NoError(t, err)
	assert.InDelta(t, 20, min, 0.001)
	assert.Equal(t, "2026-08-30", first.Cells[10].String())

	second := sheet.Rows[2]
	assert.Equal(t, "Unknown", second.Cells[1].String())
	assert.Equal(t, "", second.Cells[2].String(), "missing submarket stays blank")
}
