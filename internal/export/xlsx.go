// Package export renders a resolved session and roster into an xlsx
// workbook. Callers own the HTTP concerns; this package only builds the file.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"rollmark/attendance/internal/db"
)

const sheet = "Attendance"

func Workbook(session *db.AttendanceSession, roster []db.User) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := f.SetCellValue(sheet, "A1", "Attendance Report"); err != nil {
		return nil, err
	}
	if err := f.MergeCell(sheet, "A1", "C1"); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", bold); err != nil {
		return nil, err
	}

	meta := [][2]string{
		{"Subject", session.Subject},
		{"Classroom", session.ClassRoom},
		{"Date", session.CreatedAt.UTC().Format("2006-01-02 15:04")},
		{"Status", string(session.Status)},
	}
	row := 3
	for _, pair := range meta {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), pair[0]); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), pair[1]); err != nil {
			return nil, err
		}
		row++
	}

	row++
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Student List"); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), bold); err != nil {
		return nil, err
	}
	row++

	headers := []string{"Name", "Email", "Status"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), bold); err != nil {
		return nil, err
	}
	row++

	for _, student := range roster {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), student.Name); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), student.Email); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Present"); err != nil {
			return nil, err
		}
		row++
	}

	if err := f.SetColWidth(sheet, "A", "C", 28); err != nil {
		return nil, err
	}
	return f, nil
}
