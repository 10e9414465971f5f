// Package models defines the core data types for the JOSAA preference service.
package models

// MissingRankSentinel is the fill value the ingestion layer assigns to
// unparsable or missing opening/closing ranks. A cutoff at this value is
// effectively out of reach for any real candidate rank.
const MissingRankSentinel = 9999999

// CollegeType identifies the institute family a cutoff row belongs to.
type CollegeType string

// Supported college types.
const (
	CollegeTypeIIT  CollegeType = "IIT"
	CollegeTypeNIT  CollegeType = "NIT"
	CollegeTypeIIIT CollegeType = "IIIT"
	CollegeTypeGFTI CollegeType = "GFTI"
)

// ChanceLabel is the human-readable interpretation of an admission probability.
type ChanceLabel string

// Interpretation bands, best to worst.
const (
	ChanceVeryHigh ChanceLabel = "Very High Chance"
	ChanceHigh     ChanceLabel = "High Chance"
	ChanceModerate ChanceLabel = "Moderate Chance"
	ChanceLow      ChanceLabel = "Low Chance"
	ChanceVeryLow  ChanceLabel = "Very Low Chance"
	ChanceNone     ChanceLabel = "No Chance"
)

// HistoricalRecord is one (institute, program, category, round) cutoff entry
// from the JOSAA counselling data. Records are read-only once loaded; the
// pipeline never mutates them in place.
type HistoricalRecord struct {
	Institute   string      `json:"institute"`
	Program     string      `json:"program"`
	CollegeType CollegeType `json:"collegeType"`
	Location    string      `json:"location"`
	Category    string      `json:"category"`
	Round       string      `json:"round"`
	OpeningRank float64     `json:"openingRank"`
	ClosingRank float64     `json:"closingRank"`
}

// ScoredRecord is a cutoff entry annotated with the candidate's estimated
// admission probability and its position in the recommended preference order.
// Field names are stable across every presentation surface (JSON API, Excel
// export, histogram).
type ScoredRecord struct {
	Preference           int         `json:"preference"`
	Institute            string      `json:"institute"`
	CollegeType          CollegeType `json:"collegeType"`
	Location             string      `json:"location"`
	Branch               string      `json:"branch"`
	OpeningRank          float64     `json:"openingRank"`
	ClosingRank          float64     `json:"closingRank"`
	AdmissionProbability float64     `json:"admissionProbabilityPercent"`
	AdmissionChance      ChanceLabel `json:"admissionChanceLabel"`
}

// Query bundles the inputs for one preference-list request. Textual filters
// accept "all" (case-insensitive) to disable that filter; Round is always an
// exact match and is required.
type Query struct {
	CandidateRank    int     `json:"jeeRank"`
	Category         string  `json:"category"`
	CollegeType      string  `json:"collegeType"`
	PreferredProgram string  `json:"preferredBranch"`
	Round            string  `json:"round"`
	MinProbability   float64 `json:"minProbability"`
}
