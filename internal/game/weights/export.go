package weights

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// csvRow is one exported table line. Numbers are pre-rounded strings so the
// output does not carry float noise.
type csvRow struct {
	Monster     string `csv:"monster"`
	Stat        string `csv:"stat"`
	Increment   string `csv:"increment"`
	DPS         string `csv:"dps"`
	GainPct     string `csv:"gain_pct"`
	GainPerUnit string `csv:"gain_per_unit"`
}

func round(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).String()
}

func csvRows(tables []*Table) []*csvRow {
	var out []*csvRow
	for _, t := range tables {
		for _, r := range t.Rows {
			out = append(out, &csvRow{
				Monster:     t.Monster.String(),
				Stat:        r.Stat.String(),
				Increment:   round(r.Increment, 4),
				DPS:         round(r.DPS, 2),
				GainPct:     round(r.GainPct, 4),
				GainPerUnit: round(r.GainPerUnit, 6),
			})
		}
	}
	return out
}

// WriteCSV writes the rows of every table to w with a header line.
func WriteCSV(w io.Writer, tables ...*Table) error {
	rows := csvRows(tables)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("writing weight csv: %w", err)
	}
	return nil
}

// WriteXLSX writes one sheet per table to w.
func WriteXLSX(w io.Writer, tables ...*Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header := []string{"Stat", "Increment", "DPS", "Gain %", "Gain per unit"}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, t := range tables {
		sheet := t.Monster.String()
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet, err)
		}

		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("writing %s header: %w", sheet, err)
		}
		if err := f.SetCellStyle(sheet, "A1", "E1", bold); err != nil {
			return fmt.Errorf("styling %s header: %w", sheet, err)
		}

		for n, r := range t.Ranked() {
			row := []any{
				r.Stat.String(),
				r.Increment,
				rounded(r.DPS, 2),
				rounded(r.GainPct, 4),
				rounded(r.GainPerUnit, 6),
			}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", n+2), &row); err != nil {
				return fmt.Errorf("writing %s row %d: %w", sheet, n+2, err)
			}
		}

		summaryRow := len(t.Rows) + 3
		summary := [][]any{
			{"Base DPS", rounded(t.BaseDPS, 2)},
			{"Mean gain %", rounded(t.Summary.MeanGainPct, 4)},
			{"Median gain %", rounded(t.Summary.MedianGainPct, 4)},
		}
		for i, row := range summary {
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", summaryRow+i), &row); err != nil {
				return fmt.Errorf("writing %s summary: %w", sheet, err)
			}
		}

		if err := f.SetColWidth(sheet, "A", "A", 22); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing weight xlsx: %w", err)
	}
	return nil
}

func rounded(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
