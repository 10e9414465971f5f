package predictor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JARAWA/JOSAA-preference/internal/models"
)

func testRecords() []models.HistoricalRecord {
	return []models.HistoricalRecord{
		{Institute: "IIT Bombay", Program: "computer science and engineering", CollegeType: "IIT", Location: "Mumbai", Category: "OPEN", Round: "1", OpeningRank: 1, ClosingRank: 60},
		{Institute: "IIT Delhi", Program: "computer science and engineering", CollegeType: "IIT", Location: "New Delhi", Category: "OPEN", Round: "1", OpeningRank: 60, ClosingRank: 110},
		{Institute: "IIT Madras", Program: "electrical engineering", CollegeType: "IIT", Location: "Chennai", Category: "OPEN", Round: "1", OpeningRank: 90, ClosingRank: 250},
		{Institute: "NIT Trichy", Program: "computer science and engineering", CollegeType: "NIT", Location: "Tiruchirappalli", Category: "OPEN", Round: "1", OpeningRank: 150, ClosingRank: 700},
		{Institute: "IIIT Hyderabad", Program: "computer science and engineering", CollegeType: "IIIT", Location: "Hyderabad", Category: "obc-ncl", Round: "1", OpeningRank: 80, ClosingRank: 300},
		{Institute: "IIT Bombay", Program: "computer science and engineering", CollegeType: "IIT", Location: "Mumbai", Category: "OPEN", Round: "2", OpeningRank: 1, ClosingRank: 66},
	}
}

func TestBuildPreferenceListInvalidRank(t *testing.T) {
	p := NewPipeline(SelectionFullScan, nil)
	_, err := p.BuildPreferenceList(testRecords(), models.Query{CandidateRank: 0, Round: "1"})
	assert.ErrorIs(t, err, models.ErrInvalidRank)

	_, err = p.BuildPreferenceList(testRecords(), models.Query{CandidateRank: -5, Round: "1"})
	assert.ErrorIs(t, err, models.ErrInvalidRank)
}

func TestBuildPreferenceListRoundRequired(t *testing.T) {
	p := NewPipeline(SelectionFullScan, nil)
	_, err := p.BuildPreferenceList(testRecords(), models.Query{CandidateRank: 100})
	assert.ErrorIs(t, err, models.ErrRoundRequired)
}

func TestBuildPreferenceListNilDataset(t *testing.T) {
	p := NewPipeline(SelectionFullScan, nil)
	_, err := p.BuildPreferenceList(nil, models.Query{CandidateRank: 100, Round: "1"})
	assert.ErrorIs(t, err, models.ErrNoData)
}

func TestBuildPreferenceListNoMatches(t *testing.T) {
	p := NewPipeline(SelectionFullScan, nil)
	_, err := p.BuildPreferenceList(testRecords(), models.Query{
		CandidateRank: 100,
		Round:         "9",
	})
	assert.ErrorIs(t, err, models.ErrNoMatches)
}

func TestBuildPreferenceListFilters(t *testing.T) {
	p := NewPipeline(SelectionFullScan, nil)

	// Case-insensitive category and branch matching, exact round.
	list, err := p.BuildPreferenceList(testRecords(), models.Query{
		CandidateRank:    100,
		Category:         "OBC-NCL",
		CollegeType:      "iiit",
		PreferredProgram: "Computer Science And Engineering",
		Round:            "1",
	})
	require.NoError(t, err)
	require.Len(t, list.Preferences, 1)
	assert.Equal(t, "IIIT Hyderabad", list.Preferences[0].Institute)
}

func TestBuildPreferenceListAllWildcards(t *testing.T) {
	p := NewPipeline(SelectionFullScan, nil)
	list, err := p.BuildPreferenceList(testRecords(), models.Query{
		CandidateRank:    100,
		Category:         "all",
		CollegeType:      "all",
		PreferredProgram: "all",
		Round:            "1",
	})
	require.NoError(t, err)
	// Category filter is disabled, so the obc-ncl row is in play too.
	assert.Equal(t, 5, list.Evaluated)
}

func TestBuildPreferenceListOrderingAndNumbering(t *testing.T) {
	p := NewPipeline(SelectionFullScan, nil)
	list, err := p.BuildPreferenceList(testRecords(), models.Query{
		CandidateRank: 100,
		Category:      "all",
		CollegeType:   "all",
		Round:         "1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, list.Preferences)

	for i, rec := range list.Preferences {
		assert.Equal(t, i+1, rec.Preference)
		if i > 0 {
			assert.GreaterOrEqual(t,
				list.Preferences[i-1].AdmissionProbability,
				rec.AdmissionProbability)
		}
		assert.Equal(t, Interpret(rec.AdmissionProbability), rec.AdmissionChance)
	}
}

func TestBuildPreferenceListIdempotent(t *testing.T) {
	p := NewPipeline(SelectionFullScan, nil)
	query := models.Query{CandidateRank: 100, Category: "all", CollegeType: "all", Round: "1"}

	first, err := p.BuildPreferenceList(testRecords(), query)
	require.NoError(t, err)
	second, err := p.BuildPreferenceList(testRecords(), query)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildPreferenceListMinProbability(t *testing.T) {
	p := NewPipeline(SelectionFullScan, nil)
	list, err := p.BuildPreferenceList(testRecords(), models.Query{
		CandidateRank:  100,
		Category:       "all",
		CollegeType:    "all",
		Round:          "1",
		MinProbability: 60,
	})
	require.NoError(t, err)
	for _, rec := range list.Preferences {
		assert.GreaterOrEqual(t, rec.AdmissionProbability, 60.0)
	}
}

func TestBuildPreferenceListThresholdEliminatesAll(t *testing.T) {
	p := NewPipeline(SelectionFullScan, nil)
	_, err := p.BuildPreferenceList(testRecords(), models.Query{
		CandidateRank:  100,
		Category:       "all",
		CollegeType:    "all",
		Round:          "1",
		MinProbability: 100,
	})
	assert.ErrorIs(t, err, models.ErrNoMatches)
}

func TestBuildPreferenceListHistogram(t *testing.T) {
	p := NewPipeline(SelectionFullScan, nil)
	list, err := p.BuildPreferenceList(testRecords(), models.Query{
		CandidateRank: 100,
		Category:      "all",
		CollegeType:   "all",
		Round:         "1",
	})
	require.NoError(t, err)
	require.Len(t, list.Histogram, 20)

	total := 0
	for i, bucket := range list.Histogram {
		assert.Equal(t, float64(i*5), bucket.Lower)
		assert.Equal(t, float64((i+1)*5), bucket.Upper)
		total += bucket.Count
	}
	assert.Equal(t, len(list.Preferences), total)
}

func TestWindowedSelectionBounds(t *testing.T) {
	// A large uniform dataset: full scan evaluates everything, windowed
	// evaluates at most the union of the three capped bands.
	var records []models.HistoricalRecord
	for i := 0; i < 500; i++ {
		open := float64(i * 10)
		records = append(records, models.HistoricalRecord{
			Institute:   fmt.Sprintf("Institute %d", i),
			Program:     "computer science and engineering",
			CollegeType: "NIT",
			Category:    "OPEN",
			Round:       "1",
			OpeningRank: open,
			ClosingRank: open + 50,
		})
	}
	query := models.Query{CandidateRank: 2500, Category: "all", CollegeType: "all", Round: "1"}

	full, err := NewPipeline(SelectionFullScan, nil).BuildPreferenceList(records, query)
	require.NoError(t, err)
	assert.Equal(t, 500, full.Evaluated)

	windowed, err := NewPipeline(SelectionWindowed, nil).BuildPreferenceList(records, query)
	require.NoError(t, err)
	assert.LessOrEqual(t, windowed.Evaluated, 50)
	assert.Greater(t, windowed.Evaluated, 0)
}

func TestWindowedSelectionKeepsStraddlingRecords(t *testing.T) {
	records := []models.HistoricalRecord{
		{Institute: "Far Reach", Program: "cse", CollegeType: "IIT", Category: "OPEN", Round: "1", OpeningRank: 10, ClosingRank: 20},
		{Institute: "Straddle", Program: "cse", CollegeType: "IIT", Category: "OPEN", Round: "1", OpeningRank: 900, ClosingRank: 1100},
		{Institute: "Safety", Program: "cse", CollegeType: "IIT", Category: "OPEN", Round: "1", OpeningRank: 1000, ClosingRank: 1150},
	}
	list, err := NewPipeline(SelectionWindowed, nil).BuildPreferenceList(records, models.Query{
		CandidateRank: 1000, Category: "all", CollegeType: "all", Round: "1",
	})
	require.NoError(t, err)

	names := make([]string, 0, len(list.Preferences))
	for _, rec := range list.Preferences {
		names = append(names, rec.Institute)
	}
	assert.Contains(t, names, "Straddle")
	assert.Contains(t, names, "Safety")
	// The far-out record sits outside every band and is not scored.
	assert.NotContains(t, names, "Far Reach")
}

func TestScoreRecordSuppressesFaults(t *testing.T) {
	p := NewPipeline(SelectionFullScan, nil)
	// Sentinel-filled rows score without error.
	prob := p.scoreRecord(100, models.HistoricalRecord{
		OpeningRank: models.MissingRankSentinel,
		ClosingRank: models.MissingRankSentinel,
	})
	assert.GreaterOrEqual(t, prob, 0.0)
	assert.LessOrEqual(t, prob, 100.0)
}
