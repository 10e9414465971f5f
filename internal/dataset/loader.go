// Package dataset loads and caches JOSAA cutoff data for the predictor.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/JARAWA/JOSAA-preference/internal/models"
)

// Column headers of the JOSAA cutoff CSV.
const (
	colInstitute   = "Institute"
	colCollegeType = "College Type"
	colLocation    = "Location"
	colProgram     = "Academic Program Name"
	colCategory    = "Category"
	colRound       = "Round"
	colOpeningRank = "Opening Rank"
	colClosingRank = "Closing Rank"
)

var requiredColumns = []string{
	colInstitute, colCollegeType, colLocation, colProgram,
	colCategory, colRound, colOpeningRank, colClosingRank,
}

// LoadCSV parses a JOSAA cutoff CSV into historical records. Columns are
// located by header name, so column order does not matter. Opening and
// closing ranks that fail numeric coercion (e.g. preparatory-rank suffixes)
// are filled with models.MissingRankSentinel; rounds are kept as strings.
func LoadCSV(r io.Reader) ([]models.HistoricalRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read cutoff header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("cutoff file is missing column %q", name)
		}
	}

	field := func(row []string, name string) string {
		i := index[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []models.HistoricalRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read cutoff row: %w", err)
		}
		records = append(records, models.HistoricalRecord{
			Institute:   field(row, colInstitute),
			CollegeType: models.CollegeType(strings.ToUpper(field(row, colCollegeType))),
			Location:    field(row, colLocation),
			Program:     field(row, colProgram),
			Category:    field(row, colCategory),
			Round:       field(row, colRound),
			OpeningRank: parseRank(field(row, colOpeningRank)),
			ClosingRank: parseRank(field(row, colClosingRank)),
		})
	}
	return records, nil
}

// LoadFile reads a cutoff CSV from disk.
func LoadFile(path string) ([]models.HistoricalRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cutoff file %s: %w", path, err)
	}
	defer f.Close()
	return LoadCSV(f)
}

func parseRank(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.MissingRankSentinel
	}
	return v
}
