// Package predictor implements the admission-probability estimator and the
// preference-list pipeline built on top of it.
package predictor

import (
	"math"

	"github.com/JARAWA/JOSAA-preference/internal/models"
)

// Estimate converts a candidate rank and a historical (opening, closing)
// cutoff pair into an admission probability in [0, 100], rounded to two
// decimals. Lower ranks are better; openingRank is the best rank admitted in
// the round and closingRank the worst.
//
// The estimate blends a logistic curve centered on the cutoff midpoint with a
// piecewise rank-region score; the blend weights depend on where the rank
// falls relative to the cutoff window. The function is total: degenerate
// windows (closingRank <= openingRank) and extreme inputs return a value in
// range instead of failing.
func Estimate(rank, openingRank, closingRank float64) float64 {
	logistic := logisticScore(rank, openingRank, closingRank)
	piecewise := piecewiseScore(rank, openingRank, closingRank)

	var final float64
	switch {
	case rank < openingRank:
		improvement := (openingRank - rank) / openingRank
		if improvement > 0.5 {
			final = math.Max(logistic, 95)
		} else {
			final = logistic*0.4 + piecewise*0.6
		}
	case rank <= closingRank:
		final = logistic*0.7 + piecewise*0.3
	default:
		if rank > closingRank+100 {
			final = 0
		} else {
			final = math.Min(logistic, 5)
		}
	}

	if math.IsNaN(final) || math.IsInf(final, 0) {
		return 0
	}
	return math.Round(math.Min(math.Max(final, 0), 100)*100) / 100
}

// logisticScore is a sigmoid in rank, centered at the window midpoint with
// steepness inversely proportional to the window width. The spread is clamped
// to a minimum of 1 so a zero-width window never divides by zero.
func logisticScore(rank, openingRank, closingRank float64) float64 {
	mid := (openingRank + closingRank) / 2
	spread := (closingRank - openingRank) / 10
	if spread < 1 {
		spread = 1
	}
	return 100 / (1 + math.Exp((rank-mid)/spread))
}

// piecewiseScore classifies the rank into a region relative to the cutoff
// window and maps it onto [0, 99]. The steepest segment sits just past the
// opening rank: any slippage inside the window is penalized hard before the
// curve flattens out toward the closing rank.
func piecewiseScore(rank, openingRank, closingRank float64) float64 {
	switch {
	case rank < openingRank:
		improvement := (openingRank - rank) / openingRank
		if improvement >= 0.5 {
			return 99
		}
		return 96 + improvement*6
	case rank == openingRank:
		return 95
	case rank < closingRank:
		position := (rank - openingRank) / (closingRank - openingRank)
		switch {
		case position <= 0.2:
			return 94 - position*70
		case position <= 0.5:
			return 80 - (position-0.2)/0.3*20
		case position <= 0.8:
			return 60 - (position-0.5)/0.3*20
		default:
			return 40 - (position-0.8)/0.2*20
		}
	case rank == closingRank:
		return 15
	case rank <= closingRank+10:
		return 5
	default:
		return 0
	}
}

// Interpret maps a probability to its human-readable chance label. Band
// boundaries are inclusive on the lower bound, so exactly 95.00 is still
// "Very High Chance".
func Interpret(probability float64) models.ChanceLabel {
	switch {
	case probability >= 95:
		return models.ChanceVeryHigh
	case probability >= 80:
		return models.ChanceHigh
	case probability >= 60:
		return models.ChanceModerate
	case probability >= 40:
		return models.ChanceLow
	case probability > 0:
		return models.ChanceVeryLow
	default:
		return models.ChanceNone
	}
}
