package exportsvc

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/trezcool/mahudhurio/core/attendance"
)

// WriteCSV renders merged attendance rows as CSV with the same columns as
// the Excel export.
func WriteCSV(w io.Writer, rows []attendance.ResolvedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(excelHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.StudentID),
			row.FullName,
			row.Email,
			row.GroupName,
			row.Status,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
