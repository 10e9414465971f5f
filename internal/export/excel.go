// Package export renders preference lists as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JARAWA/JOSAA-preference/internal/models"
)

const sheetName = "Preferences"

// Worksheet column headers, in the stable output order shared with the JSON
// API and the histogram.
var headers = []string{
	"Preference",
	"Institute",
	"College Type",
	"Location",
	"Branch",
	"Opening Rank",
	"Closing Rank",
	"Admission Probability (%)",
	"Admission Chances",
}

// WritePreferences writes the scored preference rows as an .xlsx workbook.
func WritePreferences(w io.Writer, rows []models.ScoredRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create worksheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default worksheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.Preference,
			row.Institute,
			string(row.CollegeType),
			row.Location,
			row.Branch,
			row.OpeningRank,
			row.ClosingRank,
			row.AdmissionProbability,
			string(row.AdmissionChance),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
