// Package main provides a CLI for generating a preference list from a local
// cutoff CSV.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/JARAWA/JOSAA-preference/internal/dataset"
	"github.com/JARAWA/JOSAA-preference/internal/export"
	"github.com/JARAWA/JOSAA-preference/internal/models"
	"github.com/JARAWA/JOSAA-preference/internal/predictor"
)

func main() {
	var (
		dataPath    = flag.String("data", "data/josaa2024_cutoff.csv", "Path to cutoff CSV")
		rank        = flag.Int("rank", 0, "Candidate JEE rank")
		category    = flag.String("category", "all", "Admission category (e.g. OPEN, OBC-NCL) or 'all'")
		collegeType = flag.String("college-type", "all", "College type (IIT, NIT, IIIT, GFTI) or 'all'")
		branch      = flag.String("branch", "all", "Preferred branch or 'all'")
		round       = flag.String("round", "1", "Counselling round")
		minProb     = flag.Float64("min-prob", 0, "Minimum admission probability (0-100)")
		selection   = flag.String("selection", "full_scan", "Selection policy: full_scan or windowed")
		output      = flag.String("output", "", "Optional .xlsx output path")
	)
	flag.Parse()

	logger := newLogger()

	records, err := dataset.LoadFile(*dataPath)
	if err != nil {
		logger.Fatalf("Failed to load cutoff data: %v", err)
	}

	pipeline := predictor.NewPipeline(predictor.SelectionPolicy(*selection), logger)
	list, err := pipeline.BuildPreferenceList(records, models.Query{
		CandidateRank:    *rank,
		Category:         *category,
		CollegeType:      *collegeType,
		PreferredProgram: *branch,
		Round:            *round,
		MinProbability:   *minProb,
	})
	if err != nil {
		logger.Fatalf("Failed to build preference list: %v", err)
	}

	printTable(list.Preferences)
	fmt.Printf("\n%d preferences (%d records evaluated)\n", len(list.Preferences), list.Evaluated)

	if *output != "" {
		if err := writeExcel(*output, list.Preferences); err != nil {
			logger.Fatalf("Failed to write %s: %v", *output, err)
		}
		fmt.Printf("Wrote %s\n", *output)
	}
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

func printTable(rows []models.ScoredRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Pref\tInstitute\tType\tBranch\tOpen\tClose\tProb%\tChances")
	for _, row := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.0f\t%.0f\t%.2f\t%s\n",
			row.Preference, row.Institute, row.CollegeType, row.Branch,
			row.OpeningRank, row.ClosingRank, row.AdmissionProbability, row.AdmissionChance)
	}
	w.Flush()
}

func writeExcel(path string, rows []models.ScoredRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WritePreferences(f, rows)
}
