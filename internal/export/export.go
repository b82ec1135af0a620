// Package export writes task lists to spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nibzard/taskremind/internal/app"
	"github.com/nibzard/taskremind/internal/due"
)

// Sheet names.
const (
	TasksSheet  = "Tasks"
	ErrorsSheet = "Errors"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"Employee", "Index", "Task", "Priority", "Due date", "Status", "Due soon"}

// WriteXLSX writes one row per task to w, evaluating due-soon at now.
// Employees whose task file failed to load are listed on an Errors sheet.
func WriteXLSX(w io.Writer, entries []app.EmployeeTasks, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TasksSheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	if err := writeHeader(f, TasksSheet, headers); err != nil {
		return err
	}

	row := 2
	var failed []app.EmployeeTasks
	for _, entry := range entries {
		if entry.Err != nil {
			failed = append(failed, entry)
			continue
		}
		for i, task := range entry.Tasks {
			soon, err := due.IsDueSoon(task, now)
			dueSoon := "no"
			switch {
			case err != nil:
				dueSoon = "invalid date"
			case soon:
				dueSoon = "yes"
			}
			values := []any{
				entry.Employee.ID,
				i + 1,
				task.Description,
				task.Priority.String(),
				task.DueDate,
				string(task.Status),
				dueSoon,
			}
			if err := setRow(f, TasksSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}

	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := 15.0
		if headers[i] == "Task" {
			width = 40
		}
		if err := f.SetColWidth(TasksSheet, col, col, width); err != nil {
			return fmt.Errorf("error sizing column %s: %w", col, err)
		}
	}

	if len(failed) > 0 {
		if _, err := f.NewSheet(ErrorsSheet); err != nil {
			return fmt.Errorf("error creating sheet: %w", err)
		}
		if err := writeHeader(f, ErrorsSheet, []string{"Employee", "Error"}); err != nil {
			return err
		}
		for i, entry := range failed {
			if err := setRow(f, ErrorsSheet, i+2, []any{entry.Employee.ID, entry.Err.Error()}); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, names []string) error {
	values := make([]any, len(names))
	for i, n := range names {
		values[i] = n
	}
	if err := setRow(f, sheet, 1, values); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	return f.SetRowStyle(sheet, 1, 1, style)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("error writing row %d: %w", row, err)
	}
	return nil
}
