package predictor

import (
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/JARAWA/JOSAA-preference/internal/models"
)

// SelectionPolicy controls how many filtered records are scored.
type SelectionPolicy string

const (
	// SelectionFullScan scores every record that passes the query filters.
	// This is the default: it never omits an option.
	SelectionFullScan SelectionPolicy = "full_scan"

	// SelectionWindowed restricts scoring to three overlapping bands around
	// the candidate rank before scoring. It bounds cost on large datasets at
	// the expense of potentially dropping far-out long-shot or safety
	// options.
	SelectionWindowed SelectionPolicy = "windowed"
)

// Windowed-selection parameters: band half-width in rank units and per-band
// record caps.
const (
	selectionBand = 200
	topTierCap    = 10
	straddleCap   = 20
	safetyNetCap  = 20
)

const (
	histogramWidth = 5
	filterAll      = "all"
)

// HistogramBucket is one bar of the probability distribution summary.
type HistogramBucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// PreferenceList is the ordered output of the pipeline: scored records
// best-first plus a histogram-ready summary for visualization. Evaluated is
// the number of records actually scored, which under the windowed policy can
// be smaller than the filtered set.
type PreferenceList struct {
	Preferences []models.ScoredRecord `json:"preferences"`
	Histogram   []HistogramBucket     `json:"histogram"`
	Evaluated   int                   `json:"evaluated"`
}

// Pipeline filters a cutoff dataset against a query, scores the surviving
// records with Estimate, and produces a ranked preference list. A Pipeline is
// stateless between calls and safe for concurrent use with a shared read-only
// dataset.
type Pipeline struct {
	policy SelectionPolicy
	logger *logrus.Logger
}

// NewPipeline creates a pipeline with the given selection policy. An empty
// policy defaults to full-scan.
func NewPipeline(policy SelectionPolicy, logger *logrus.Logger) *Pipeline {
	if policy == "" {
		policy = SelectionFullScan
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Pipeline{policy: policy, logger: logger}
}

// Policy returns the configured selection policy.
func (p *Pipeline) Policy() SelectionPolicy {
	return p.policy
}

// BuildPreferenceList produces the ordered preference list for one query.
//
// It returns models.ErrInvalidRank or models.ErrRoundRequired for invalid
// queries, models.ErrNoData for a nil dataset, and models.ErrNoMatches when
// filtering (or the probability threshold) leaves nothing to recommend. A
// scoring failure on one record downgrades that record to probability zero
// and never aborts the batch.
func (p *Pipeline) BuildPreferenceList(records []models.HistoricalRecord, query models.Query) (*PreferenceList, error) {
	if query.CandidateRank <= 0 {
		return nil, models.ErrInvalidRank
	}
	if strings.TrimSpace(query.Round) == "" {
		return nil, models.ErrRoundRequired
	}
	if records == nil {
		return nil, models.ErrNoData
	}

	filtered := filterRecords(records, query)
	if len(filtered) == 0 {
		return nil, models.ErrNoMatches
	}

	rank := float64(query.CandidateRank)
	selected := filtered
	if p.policy == SelectionWindowed {
		selected = windowAround(filtered, rank)
		p.logger.WithFields(logrus.Fields{
			"filtered": len(filtered),
			"selected": len(selected),
		}).Debug("Windowed selection applied")
	}

	scored := make([]models.ScoredRecord, 0, len(selected))
	for _, rec := range selected {
		prob := p.scoreRecord(rank, rec)
		if prob < query.MinProbability {
			continue
		}
		scored = append(scored, models.ScoredRecord{
			Institute:            rec.Institute,
			CollegeType:          rec.CollegeType,
			Location:             rec.Location,
			Branch:               rec.Program,
			OpeningRank:          rec.OpeningRank,
			ClosingRank:          rec.ClosingRank,
			AdmissionProbability: prob,
			AdmissionChance:      Interpret(prob),
		})
	}
	if len(scored) == 0 {
		return nil, models.ErrNoMatches
	}

	// Stable sort keeps the original filtered order for equal probabilities,
	// so identical inputs always produce identical output.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].AdmissionProbability > scored[j].AdmissionProbability
	})
	for i := range scored {
		scored[i].Preference = i + 1
	}

	return &PreferenceList{
		Preferences: scored,
		Histogram:   buildHistogram(scored),
		Evaluated:   len(selected),
	}, nil
}

// scoreRecord wraps Estimate with per-record fault suppression: an
// unexpected panic while scoring one cutoff row yields probability zero
// instead of aborting the whole batch.
func (p *Pipeline) scoreRecord(rank float64, rec models.HistoricalRecord) (prob float64) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithFields(logrus.Fields{
				"institute": rec.Institute,
				"program":   rec.Program,
				"panic":     r,
			}).Warn("Scoring fault, defaulting probability to 0")
			prob = 0
		}
	}()
	return Estimate(rank, rec.OpeningRank, rec.ClosingRank)
}

// filterRecords applies the query filters case-insensitively. Category and
// program match lowercased, college type uppercased; "all" (or empty)
// disables a filter. Round always matches exactly.
func filterRecords(records []models.HistoricalRecord, query models.Query) []models.HistoricalRecord {
	category := strings.ToLower(strings.TrimSpace(query.Category))
	program := strings.ToLower(strings.TrimSpace(query.PreferredProgram))
	collegeType := strings.ToUpper(strings.TrimSpace(query.CollegeType))
	round := strings.TrimSpace(query.Round)

	matchCategory := category != "" && category != filterAll
	matchCollegeType := collegeType != "" && collegeType != "ALL"
	matchProgram := program != "" && program != filterAll

	out := make([]models.HistoricalRecord, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.Round) != round {
			continue
		}
		if matchCategory && strings.ToLower(rec.Category) != category {
			continue
		}
		if matchCollegeType && strings.ToUpper(string(rec.CollegeType)) != collegeType {
			continue
		}
		if matchProgram && strings.ToLower(rec.Program) != program {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// windowAround selects up to three overlapping bands of records around the
// candidate rank: reach options whose opening rank sits within selectionBand
// above the candidate, records whose window straddles the rank, and safety
// options whose closing rank sits within selectionBand below it. Bands are
// capped, unioned, and de-duplicated; the original record order is preserved.
func windowAround(records []models.HistoricalRecord, rank float64) []models.HistoricalRecord {
	bands := []struct {
		limit int
		match func(models.HistoricalRecord) bool
	}{
		{topTierCap, func(r models.HistoricalRecord) bool {
			return r.OpeningRank >= rank-selectionBand && r.OpeningRank <= rank
		}},
		{straddleCap, func(r models.HistoricalRecord) bool {
			return r.OpeningRank <= rank && rank <= r.ClosingRank
		}},
		{safetyNetCap, func(r models.HistoricalRecord) bool {
			return r.ClosingRank >= rank && r.ClosingRank <= rank+selectionBand
		}},
	}

	picked := make(map[int]struct{})
	for _, band := range bands {
		taken := 0
		for i, rec := range records {
			if taken >= band.limit {
				break
			}
			if band.match(rec) {
				picked[i] = struct{}{}
				taken++
			}
		}
	}

	out := make([]models.HistoricalRecord, 0, len(picked))
	for i, rec := range records {
		if _, ok := picked[i]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// buildHistogram buckets the scored probabilities into fixed-width bands over
// [0, 100] for the distribution chart.
func buildHistogram(scored []models.ScoredRecord) []HistogramBucket {
	n := 100 / histogramWidth
	buckets := make([]HistogramBucket, n)
	for i := range buckets {
		buckets[i].Lower = float64(i * histogramWidth)
		buckets[i].Upper = float64((i + 1) * histogramWidth)
	}
	for _, rec := range scored {
		idx := int(rec.AdmissionProbability) / histogramWidth
		if idx >= n {
			idx = n - 1
		}
		buckets[idx].Count++
	}
	return buckets
}
