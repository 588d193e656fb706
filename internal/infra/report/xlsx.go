package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/usecase"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	SalesSheet   = "By Sales"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WriteXLSX renders the pipeline report as a two-sheet workbook.
func WriteXLSX(w io.Writer, r *usecase.ReportOutput, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SalesSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Generated At", generatedAt.UTC().Format(time.RFC3339)},
		{"Total Leads", r.Total},
	}
	for _, s := range entity.LeadStatuses {
		summary = append(summary, []interface{}{string(s), r.ByStatus[s]})
	}
	summary = append(summary,
		[]interface{}{"Revenue (Won)", r.Revenue.InexactFloat64()},
		[]interface{}{"Auto-Lost", r.AutoLost},
	)
	if err := writeRows(f, SummarySheet, summary, headerStyle); err != nil {
		return err
	}

	sales := [][]interface{}{{"Profile", "Role", "Leads"}}
	for _, s := range r.BySales {
		sales = append(sales, []interface{}{s.ID, string(s.Role), s.Count})
	}
	if err := writeRows(f, SalesSheet, sales, headerStyle); err != nil {
		return err
	}

	f.SetColWidth(SummarySheet, "A", "B", 20)
	f.SetColWidth(SalesSheet, "A", "A", 40)
	f.SetColWidth(SalesSheet, "B", "C", 12)
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeRows writes rows starting at A1. The first row gets the header style.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}
