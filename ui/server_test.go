package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cbctsurvey/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *stats.AnalysisReport {
	r := stats.NewAnalysisReport("responses.csv", 51)
	r.Frequencies = []stats.FrequencyTable{{
		Column: "cbct_abundance",
		N:      51,
		Rows: []stats.FrequencyRow{
			{Label: "Yes", Count: 36, Percent: 70.6},
			{Label: "No", Count: 15, Percent: 29.4},
		},
	}}
	r.Warnings = []stats.Warning{
		stats.NewWarning(stats.WarningStatValidity, "practice_size", "low expected counts"),
	}
	return r
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	r := testReport()
	rec := get(t, NewServer(r), "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, r.RunID.String(), body["run_id"])
}

func TestAPIReport_RoundTripsTheFullReport(t *testing.T) {
	r := testReport()
	rec := get(t, NewServer(r), "/api/report")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got stats.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, r.RunID, got.RunID)
	assert.Equal(t, 51, got.SampleSize)
	require.Len(t, got.Frequencies, 1)
	assert.Equal(t, 36, got.Frequencies[0].Rows[0].Count)
}

func TestAPISubresources(t *testing.T) {
	s := NewServer(testReport())

	rec := get(t, s, "/api/report/frequencies")
	require.Equal(t, http.StatusOK, rec.Code)
	var freqs []stats.FrequencyTable
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &freqs))
	require.Len(t, freqs, 1)

	rec = get(t, s, "/api/report/warnings")
	require.Equal(t, http.StatusOK, rec.Code)
	var warns []stats.Warning
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &warns))
	require.Len(t, warns, 1)
	assert.Equal(t, stats.WarningStatValidity, warns[0].Code)
}

func TestIndex_RendersHTML(t *testing.T) {
	rec := get(t, NewServer(testReport()), "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, "<h1")
	assert.Contains(t, body, "CBCT Survey Analysis")
}

func TestUnknownRouteIs404(t *testing.T) {
	rec := get(t, NewServer(testReport()), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
