package benchmark

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
)

// ExportXLSX writes benchmarks to an xlsx workbook with one header row, for
// handoff to the analysts' spreadsheets.
func ExportXLSX(path string, rows []model.RentBenchmark) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Rent Benchmarks")
	if err != nil {
		return eris.Wrap(err, "benchmark: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range []string{
		"Country", "City", "Submarket ID", "Bedrooms", "Property Type",
		"Rent/sqm min", "Rent/sqm max", "Sample Size", "Currency", "Source", "As Of",
	} {
		header.AddCell().Value = col
	}

	for _, b := range rows {
		row := sheet.AddRow()
		row.AddCell().Value = b.Country
		row.AddCell().Value = b.City

		if b.SubmarketID != nil {
			row.AddCell().SetInt64(*b.SubmarketID)
		} else {
			row.AddCell()
		}
		if b.Bedrooms != nil {
			row.AddCell().SetInt(*b.Bedrooms)
		} else {
			row.AddCell()
		}
		if b.PropertyType != nil {
			row.AddCell().Value = *b.PropertyType
		} else {
			row.AddCell()
		}

		row.AddCell().SetFloat(b.RentPSQMMin)
		row.AddCell().SetFloat(b.RentPSQMMax)
		row.AddCell().SetInt(b.SampleSize)
		row.AddCell().Value = b.Currency
		row.AddCell().Value = b.Source
		row.AddCell().Value = b.AsOfDate.Format("2006-01-02")
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "benchmark: save %s", path)
	}
	return nil
}
