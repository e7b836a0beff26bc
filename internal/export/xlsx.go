package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter implements ReportWriter by writing a workbook to disk.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates a writer targeting the given file path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Write renders the report into one sheet per calculator and saves the
// workbook, replacing any existing file.
func (w *XLSXWriter) Write(_ context.Context, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, "Forge", forgeHeader, report.Forge, forgeRow); err != nil {
		return err
	}
	if err := writeSheet(f, "Corpses", corpseHeader, report.Corpses, corpseRow); err != nil {
		return err
	}
	if err := writeSheet(f, "Crystals", crystalHeader, report.Crystals, crystalRow); err != nil {
		return err
	}

	// Drop the default sheet excelize opens with.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook to %s: %w", w.path, err)
	}
	return nil
}

func writeSheet[T any](f *excelize.File, name string, header []any, rows []T, toRow func(T) []any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet %s: %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", name, err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := toRow(r)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", name, i+2, err)
		}
	}
	return nil
}
