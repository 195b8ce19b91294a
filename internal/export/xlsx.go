package export

import (
	"context"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet every new excelize workbook starts with.
const defaultSheet = "Sheet1"

// XLSXWriter implements SheetWriter by saving an .xlsx workbook to a file.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates a writer that saves to path, replacing any existing file.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Write builds the workbook and saves it.
func (w *XLSXWriter) Write(_ context.Context, tables []Sheet) error {
	f, err := BuildWorkbook(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving %s: %w", w.path, err)
	}
	return nil
}

// WriteWorkbook streams the workbook for tables to out.
func WriteWorkbook(out io.Writer, tables []Sheet) error {
	f, err := BuildWorkbook(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// BuildWorkbook creates an in-memory workbook with one sheet per table.
// Header rows are bold and frozen. The caller must Close the file.
func BuildWorkbook(tables []Sheet) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for _, t := range tables {
		if err := writeSheet(f, t, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	replacesDefault := lo.ContainsBy(tables, func(t Sheet) bool { return t.Name == defaultSheet })
	if len(tables) > 0 && !replacesDefault {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("removing default sheet: %w", err)
		}
	}
	if len(tables) > 0 {
		if idx, err := f.GetSheetIndex(tables[0].Name); err == nil && idx >= 0 {
			f.SetActiveSheet(idx)
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, t Sheet, headerStyle int) error {
	if t.Name != defaultSheet {
		if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", t.Name, err)
		}
	}

	for i, row := range t.Values {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("sheet %s row %d: %w", t.Name, i+1, err)
		}
		if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
			return fmt.Errorf("writing sheet %s row %d: %w", t.Name, i+1, err)
		}
	}

	if len(t.Values) == 0 {
		return nil
	}
	if err := f.SetRowStyle(t.Name, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("styling sheet %s: %w", t.Name, err)
	}
	if err := f.SetPanes(t.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header of %s: %w", t.Name, err)
	}
	return nil
}
