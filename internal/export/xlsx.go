package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/example/batch-scheduler/internal/application"
)

// SheetName is the worksheet holding the session table.
const SheetName = "Sessions"

var xlsxHeader = []string{"#", "Date", "Weekday", "Start", "End", "Status", "Notes"}

// WriteXLSX writes the session table of batch as a single sheet workbook.
func WriteXLSX(w io.Writer, batch application.Batch, sessions []application.Session) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	if err := f.SetCellValue(SheetName, "A1", batch.Name); err != nil {
		return fmt.Errorf("export: title: %w", err)
	}
	if err := f.SetCellValue(SheetName, "C1", fmt.Sprintf("%s %s to %s",
		batch.Pattern, batch.StartDate.Format("2006-01-02"), batch.EndDate.Format("2006-01-02"))); err != nil {
		return fmt.Errorf("export: summary: %w", err)
	}

	for i, title := range xlsxHeader {
		if err := f.SetCellValue(SheetName, cellName(i+1, 2), title); err != nil {
			return fmt.Errorf("export: header: %w", err)
		}
	}
	if err := f.SetCellStyle(SheetName, cellName(1, 2), cellName(len(xlsxHeader), 2), headerStyle); err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	for i, session := range sessions {
		row := i + 3
		notes := ""
		if session.Notes != nil {
			notes = *session.Notes
		}
		values := []any{
			session.Number,
			session.Date.Format("2006-01-02"),
			session.Date.Weekday().String(),
			session.StartTime.String(),
			session.EndTime.String(),
			string(session.Status),
			notes,
		}
		for col, value := range values {
			if err := f.SetCellValue(SheetName, cellName(col+1, row), value); err != nil {
				return fmt.Errorf("export: session %s: %w", session.ID, err)
			}
		}
	}

	if err := f.SetColWidth(SheetName, "B", "C", 12); err != nil {
		return fmt.Errorf("export: column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "G", "G", 40); err != nil {
		return fmt.Errorf("export: column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
