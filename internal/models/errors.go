package models

import "errors"

// Custom errors
var (
	ErrInvalidRank   = errors.New("candidate rank must be greater than zero")
	ErrRoundRequired = errors.New("counselling round is required")
	ErrNoData        = errors.New("cutoff dataset is not available")
	ErrNoMatches     = errors.New("no colleges match the given criteria")
)
