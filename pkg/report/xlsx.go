package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/cost"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/layout"
)

// Workbook sheet names.
const (
	SummarySheet = "Summary"
	RoomsSheet   = "Rooms"
)

// ComposeFinancialWorkbook writes the financial figures as an XLSX
// workbook with a Summary sheet and a per-room Rooms sheet.
func ComposeFinancialWorkbook(l layout.Layout, s cost.Summary, w io.Writer) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(RoomsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F0F0F0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	summary := [][]any{
		{"Item", "Value", "Unit"},
		{"Total area", s.TotalAreaM2, "m²"},
		{"Total sprinklers", s.TotalSprinklers, "count"},
		{"Sprinkler unit cost", s.SprinklerUnitCost, s.Currency},
		{"Area unit cost", s.AreaUnitCost, s.Currency + "/m²"},
		{"Estimated cost", s.EstimatedCost, s.Currency},
	}
	if err := writeRows(f, SummarySheet, summary); err != nil {
		return err
	}

	rooms := [][]any{{"Room", "X (mm)", "Y (mm)", "Width (mm)", "Height (mm)", "Area (m²)"}}
	for _, r := range l.Rooms {
		rooms = append(rooms, []any{r.Name, r.X, r.Y, r.Width, r.Height, cost.Round(r.AreaM2())})
	}
	if err := writeRows(f, RoomsSheet, rooms); err != nil {
		return err
	}

	for sheet, last := range map[string]string{SummarySheet: "C1", RoomsSheet: "F1"} {
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
