// Package report renders appointment lists as XLSX workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"clinic-schedule-api/internal/model"
)

const (
	ScheduleSheet = "Schedule"
	SummarySheet  = "Summary"
)

var scheduleHeader = []string{
	"ID", "Appointment Time (UTC)", "Patient", "Provider", "Reason", "Location",
	"Channel", "Status", "Risk", "Notes", "Updated At (UTC)",
}

var scheduleWidths = []float64{38, 24, 22, 22, 32, 28, 12, 14, 10, 48, 24}

const timeLayout = "2006-01-02 15:04"

// WriteSchedule writes a workbook with one row per appointment on the
// Schedule sheet and the counts from s on the Summary sheet.
func WriteSchedule(w io.Writer, appts []model.Appointment, s model.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ScheduleSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := writeRow(f, ScheduleSheet, 1, toRow(scheduleHeader)); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(scheduleHeader), 1)
	if err := f.SetCellStyle(ScheduleSheet, "A1", last, header); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	for i, width := range scheduleWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(ScheduleSheet, col, col, width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	for i := range appts {
		a := &appts[i]
		notes := ""
		if a.Notes != nil {
			notes = *a.Notes
		}
		row := []any{
			a.ID,
			a.AppointmentTime.UTC().Format(timeLayout),
			a.PatientName,
			a.ProviderName,
			a.Reason,
			a.Location,
			string(a.Channel),
			string(a.Status),
			string(a.RiskLevel),
			notes,
			a.UpdatedAt.UTC().Format(timeLayout),
		}
		if err := writeRow(f, ScheduleSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(ScheduleSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := writeSummary(f, s, header); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, s model.Summary, header int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	rows := [][]any{
		{"Metric", "Count"},
		{"Total", s.Total},
		{"Active", s.Active},
		{"Cancelled", s.Cancelled},
		{"Completed", s.Completed},
	}
	for _, lvl := range model.RiskLevels {
		rows = append(rows, []any{"Risk: " + string(lvl), s.RiskBreakdown[lvl]})
	}
	for i, r := range rows {
		if err := writeRow(f, SummarySheet, i+1, r); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", header); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "A", 20)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}

func toRow(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
