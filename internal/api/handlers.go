package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JARAWA/JOSAA-preference/internal/dataset"
	"github.com/JARAWA/JOSAA-preference/internal/export"
	"github.com/JARAWA/JOSAA-preference/internal/metrics"
	"github.com/JARAWA/JOSAA-preference/internal/models"
	"github.com/JARAWA/JOSAA-preference/internal/predictor"
)

const noMatchesMessage = "No colleges found matching your criteria"

type snapshotMeta struct {
	ID       uuid.UUID `json:"id"`
	LoadedAt time.Time `json:"loadedAt"`
	Records  int       `json:"records"`
}

type preferenceResponse struct {
	Preferences []models.ScoredRecord       `json:"preferences"`
	Histogram   []predictor.HistogramBucket `json:"histogram"`
	Evaluated   int                         `json:"evaluated"`
	Snapshot    snapshotMeta                `json:"snapshot"`
	Message     string                      `json:"message,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleGeneratePreferences(w http.ResponseWriter, r *http.Request) {
	var query models.Query
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.generatePreferences(w, r, query, false)
}

// handleExport runs the same pipeline as handleGeneratePreferences but
// streams the result as an .xlsx attachment. Filters arrive as query
// parameters.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rank, err := strconv.Atoi(q.Get("jeeRank"))
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrInvalidRank.Error())
		return
	}
	minProb := s.cfg.Pipeline.DefaultMinProbability
	if raw := q.Get("minProbability"); raw != "" {
		if minProb, err = strconv.ParseFloat(raw, 64); err != nil {
			respondError(w, http.StatusBadRequest, "invalid minProbability")
			return
		}
	}
	query := models.Query{
		CandidateRank:    rank,
		Category:         q.Get("category"),
		CollegeType:      q.Get("collegeType"),
		PreferredProgram: q.Get("preferredBranch"),
		Round:            q.Get("round"),
		MinProbability:   minProb,
	}
	s.generatePreferences(w, r, query, true)
}

func (s *Server) generatePreferences(w http.ResponseWriter, r *http.Request, query models.Query, asExcel bool) {
	start := time.Now()

	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Dataset unavailable")
		respondError(w, http.StatusInternalServerError, models.ErrNoData.Error())
		return
	}

	list, err := s.pipeline.BuildPreferenceList(snap.Records, query)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrInvalidRank), errors.Is(err, models.ErrRoundRequired):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, models.ErrNoMatches):
		// An empty match set is a normal outcome, not a failure.
		respondJSON(w, http.StatusOK, preferenceResponse{
			Preferences: []models.ScoredRecord{},
			Histogram:   []predictor.HistogramBucket{},
			Snapshot:    meta(snap),
			Message:     noMatchesMessage,
		})
		return
	default:
		s.logger.WithError(err).Error("Preference generation failed")
		respondError(w, http.StatusInternalServerError, "failed to generate preferences")
		return
	}

	metrics.PreferenceGenerationDuration.Observe(time.Since(start).Seconds())
	metrics.RecordsScoredTotal.Add(float64(list.Evaluated))
	metrics.PreferencesReturned.Observe(float64(len(list.Preferences)))

	if asExcel {
		s.writeExcel(w, list.Preferences)
		return
	}

	respondJSON(w, http.StatusOK, preferenceResponse{
		Preferences: list.Preferences,
		Histogram:   list.Histogram,
		Evaluated:   list.Evaluated,
		Snapshot:    meta(snap),
	})
}

func (s *Server) writeExcel(w http.ResponseWriter, rows []models.ScoredRecord) {
	filename := fmt.Sprintf("college_preferences_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.WritePreferences(w, rows); err != nil {
		s.logger.WithError(err).Error("Excel export failed")
		return
	}
	metrics.ExportsTotal.Inc()
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := s.store.Branches(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Dataset unavailable")
		respondError(w, http.StatusInternalServerError, models.ErrNoData.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"branches": branches})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.cfg.App.Name,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.IsReady() {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "dataset not loaded",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func meta(snap *dataset.Snapshot) snapshotMeta {
	return snapshotMeta{ID: snap.ID, LoadedAt: snap.LoadedAt, Records: len(snap.Records)}
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}
