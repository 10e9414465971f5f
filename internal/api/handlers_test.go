package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JARAWA/JOSAA-preference/internal/config"
	"github.com/JARAWA/JOSAA-preference/internal/dataset"
	"github.com/JARAWA/JOSAA-preference/internal/models"
	"github.com/JARAWA/JOSAA-preference/internal/predictor"
)

type stubSource struct {
	records []models.HistoricalRecord
	err     error
}

func (s *stubSource) Fetch(ctx context.Context) ([]models.HistoricalRecord, error) {
	return s.records, s.err
}

func (s *stubSource) Name() string { return "stub" }

func testConfig() *config.Config {
	cfg, err := config.Load("nonexistent.yaml")
	if err != nil {
		panic(err)
	}
	return cfg
}

func newTestServer(t *testing.T, src dataset.Source) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := testConfig()
	store := dataset.NewStore(src, 0, logger)
	pipeline := predictor.NewPipeline(predictor.SelectionFullScan, logger)
	return NewServer(cfg, logger, store, pipeline)
}

func defaultRecords() []models.HistoricalRecord {
	return []models.HistoricalRecord{
		{Institute: "IIT Bombay", Program: "computer science and engineering", CollegeType: "IIT", Location: "Mumbai", Category: "OPEN", Round: "1", OpeningRank: 1, ClosingRank: 66},
		{Institute: "IIT Delhi", Program: "computer science and engineering", CollegeType: "IIT", Location: "New Delhi", Category: "OPEN", Round: "1", OpeningRank: 31, ClosingRank: 102},
		{Institute: "NIT Trichy", Program: "electrical engineering", CollegeType: "NIT", Location: "Tiruchirappalli", Category: "OPEN", Round: "1", OpeningRank: 80, ClosingRank: 700},
	}
}

func postPreferences(t *testing.T, handler http.Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/preferences", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGeneratePreferencesOK(t *testing.T) {
	server := newTestServer(t, &stubSource{records: defaultRecords()})
	rec := postPreferences(t, server.Router(), models.Query{
		CandidateRank: 90,
		Category:      "all",
		CollegeType:   "all",
		Round:         "1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp preferenceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Preferences)
	assert.Len(t, resp.Histogram, 20)
	assert.Equal(t, 3, resp.Snapshot.Records)

	for i, row := range resp.Preferences {
		assert.Equal(t, i+1, row.Preference)
		if i > 0 {
			assert.GreaterOrEqual(t,
				resp.Preferences[i-1].AdmissionProbability,
				row.AdmissionProbability)
		}
	}
}

func TestGeneratePreferencesInvalidRank(t *testing.T) {
	server := newTestServer(t, &stubSource{records: defaultRecords()})
	rec := postPreferences(t, server.Router(), models.Query{CandidateRank: 0, Round: "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePreferencesBadBody(t *testing.T) {
	server := newTestServer(t, &stubSource{records: defaultRecords()})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/preferences", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePreferencesNoMatches(t *testing.T) {
	server := newTestServer(t, &stubSource{records: defaultRecords()})
	rec := postPreferences(t, server.Router(), models.Query{
		CandidateRank: 90,
		Category:      "all",
		CollegeType:   "all",
		Round:         "6",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp preferenceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.Preferences)
	assert.Equal(t, noMatchesMessage, resp.Message)
}

func TestGeneratePreferencesDatasetDown(t *testing.T) {
	server := newTestServer(t, &stubSource{err: errors.New("host down")})
	rec := postPreferences(t, server.Router(), models.Query{CandidateRank: 90, Round: "1"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBranchesEndpoint(t *testing.T) {
	server := newTestServer(t, &stubSource{records: defaultRecords()})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/branches", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"computer science and engineering", "electrical engineering"}, resp["branches"])
}

func TestExportEndpoint(t *testing.T) {
	server := newTestServer(t, &stubSource{records: defaultRecords()})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/preferences/export?jeeRank=90&category=all&collegeType=all&round=1", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "college_preferences_")
	assert.NotZero(t, rec.Body.Len())
}

func TestExportEndpointInvalidRank(t *testing.T) {
	server := newTestServer(t, &stubSource{records: defaultRecords()})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/preferences/export?jeeRank=abc&round=1", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndReady(t *testing.T) {
	server := newTestServer(t, &stubSource{records: defaultRecords()})
	router := server.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	server.SetReady(true)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
