package exportsvc

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/trezcool/mahudhurio/core/attendance"
)

const sheetName = "Attendance"

var excelHeader = []string{"ID", "Name", "Email", "Group", "Attendance"}

// WriteExcel renders merged attendance rows as an .xlsx workbook. The layout
// matches what administrations expect to file: one row per student plus a
// summary row when stats are available.
func WriteExcel(w io.Writer, rows []attendance.ResolvedRow, stats *attendance.Stats, title string) error {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), sheetName)

	if err := writeRow(f, 1, excelHeader...); err != nil {
		return err
	}
	for i, row := range rows {
		values := []string{
			fmt.Sprintf("%d", row.StudentID),
			row.FullName,
			row.Email,
			row.GroupName,
			row.Status,
		}
		if err := writeRow(f, i+2, values...); err != nil {
			return err
		}
	}

	if stats != nil {
		summary := fmt.Sprintf("SUMMARY: %d students, %d sessions, %d%% attendance",
			stats.TotalStudents, stats.TotalSessions, stats.ActualRate)
		if err := writeRow(f, len(rows)+3, summary); err != nil {
			return err
		}
	}

	// widths tuned for names, emails and the summary strings
	for col, width := range map[string]float64{"A": 8, "B": 28, "C": 32, "D": 14, "E": 24} {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}
	if title != "" {
		f.SetDocProps(&excelize.DocProperties{Title: title, Created: time.Now().Format(time.RFC3339)})
	}

	_, err := f.WriteTo(w)
	return err
}

func writeRow(f *excelize.File, rowNum int, values ...string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheetName, cell, &values)
}
