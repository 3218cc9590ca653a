// =============================================================================
// Upload Reconciler - Summary Workbook
// =============================================================================
//
// This module writes the per-student summary as an XLSX workbook, next to
// the tab-separated table.csv. One sheet, one row per enrolled identifier,
// a blank row between sections:
//
//   | Term code  | Date code  | Folder      | Identifier | First name | Surname | Extra | In roster | Upload    |
//   |------------|------------|-------------|------------|------------|---------|-------|-----------|-----------|
//   | AAAAA12345 | 19-09term1 | 12345_19-09 | 0036123456 | John       | Smith   | X     | yes       | extracted |
//
// The run identifier is stored in the workbook's document properties.
//
// =============================================================================

package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/upload-reconciler/internal/roster"
)

// SheetName is the name of the summary sheet.
const SheetName = "Summary"

// Header is the first row of the summary sheet.
var Header = []string{
	"Term code", "Date code", "Folder", "Identifier",
	"First name", "Surname", "Extra", "In roster", "Upload",
}

// Row is one summary line.
type Row struct {
	TermCode string
	DateCode string
	Folder   string
	ID       string

	// Student is the roster record; zero when Known is false.
	Student roster.Student
	Known   bool

	// Upload is the reconciliation status of the identifier.
	Upload string
}

func (r Row) values() []interface{} {
	known := "no"
	if r.Known {
		known = "yes"
	}
	return []interface{}{
		r.TermCode, r.DateCode, r.Folder, r.ID,
		r.Student.FirstName, r.Student.Surname, r.Student.Extra,
		known, r.Upload,
	}
}

// Workbook collects summary rows and saves them as XLSX.
type Workbook struct {
	path  string
	runID string
	rows  [][]interface{}
	count int
}

// NewWorkbook returns a Workbook that will be saved to path.
func NewWorkbook(path, runID string) *Workbook {
	return &Workbook{path: path, runID: runID}
}

// Add appends a student row.
func (w *Workbook) Add(row Row) {
	w.rows = append(w.rows, row.values())
	w.count++
}

// Separate appends a blank row between sections.
func (w *Workbook) Separate() {
	w.rows = append(w.rows, nil)
}

// Len returns the number of student rows.
func (w *Workbook) Len() int {
	return w.count
}

// Save writes the workbook to its path, replacing any existing file.
//
// RETURNS:
//   - An error if the workbook cannot be built or written.
func (w *Workbook) Save() error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:      "Upload reconciliation summary",
		Identifier: w.runID,
		Created:    time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, values := range w.rows {
		if values == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := values
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "I", 14); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
