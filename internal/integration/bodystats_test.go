//go:build integration_test || all_tests

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/coachstats/internal/bodystats/adaptation"
	"github.com/2beens/coachstats/internal/bodystats/analysis"
	"github.com/2beens/coachstats/internal/bodystats/evolution"
	"github.com/2beens/coachstats/internal/bodystats/handlers"
	"github.com/2beens/coachstats/internal/bodystats/measurements"
	"github.com/2beens/coachstats/internal/bodystats/performance"
	"github.com/2beens/coachstats/internal/bodystats/photos"
)

func ptr(v float64) *float64 {
	return &v
}

func (s *IntegrationTestSuite) doRequest(ctx context.Context, method, path string, body any, token string) (int, []byte) {
	var reqBody io.Reader
	if body != nil {
		bodyJson, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reqBody = bytes.NewReader(bodyJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) mustRequest(ctx context.Context, method, path string, body any, expectedStatus int, target any) {
	status, respBytes := s.doRequest(ctx, method, path, body, testAuthToken)
	require.Equal(s.T(), expectedStatus, status, string(respBytes))
	if target != nil {
		require.NoError(s.T(), json.Unmarshal(respBytes, target))
	}
}

func (s *IntegrationTestSuite) TestHealthAndVersion() {
	ctx := context.Background()

	status, body := s.doRequest(ctx, http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, status)
	s.JSONEq(`{"db":"ok","redis":"ok"}`, string(body))

	status, body = s.doRequest(ctx, http.MethodGet, "/version", nil, "")
	s.Equal(http.StatusOK, status)
	s.Equal("test-version-info", string(body))
}

func (s *IntegrationTestSuite) TestAuthRequired() {
	ctx := context.Background()
	subjectID := gofakeit.UUID()

	status, _ := s.doRequest(ctx, http.MethodGet, "/subjects/"+subjectID, nil, "")
	s.Equal(http.StatusUnauthorized, status)

	status, _ = s.doRequest(ctx, http.MethodGet, "/subjects/"+subjectID, nil, "wrong-token")
	s.Equal(http.StatusUnauthorized, status)

	status, _ = s.doRequest(ctx, http.MethodGet, "/subjects/"+subjectID, nil, testAuthToken)
	s.Equal(http.StatusNotFound, status)

	status, _ = s.doRequest(ctx, http.MethodPost, "/mcp", map[string]string{}, "")
	s.Equal(http.StatusUnauthorized, status)
}

func (s *IntegrationTestSuite) TestSubjectLifecycle() {
	ctx := context.Background()
	t := s.T()
	subjectID := gofakeit.UUID()
	now := time.Now().UTC()

	// measurements of an unknown subject are rejected
	status, _ := s.doRequest(ctx, http.MethodPost, fmt.Sprintf("/subjects/%s/measurements", subjectID), measurements.Record{
		MeasuredAt: now,
		WeightKg:   ptr(70),
	}, testAuthToken)
	require.Equal(t, http.StatusNotFound, status)

	s.mustRequest(ctx, http.MethodPut, "/subjects/"+subjectID, map[string]string{"sex": "female"}, http.StatusOK, nil)

	first := measurements.Record{
		MeasuredAt: now.AddDate(0, 0, -30),
		WeightKg:   ptr(70),
		HeightCm:   ptr(165),
		NeckCm:     ptr(33),
		WaistCm:    ptr(80),
		HipCm:      ptr(100),
	}
	var added handlers.MeasurementWithMetrics
	s.mustRequest(ctx, http.MethodPost, fmt.Sprintf("/subjects/%s/measurements", subjectID), first, http.StatusCreated, &added)
	assert.Positive(t, added.ID)
	require.NotNil(t, added.Metrics.BMI)
	assert.InDelta(t, 25.7, *added.Metrics.BMI, 0.05)
	assert.NotNil(t, added.Metrics.EstimatedBodyFatPercent)

	// one measurement per calendar day
	status, _ = s.doRequest(ctx, http.MethodPost, fmt.Sprintf("/subjects/%s/measurements", subjectID), first, testAuthToken)
	require.Equal(t, http.StatusConflict, status)

	latest := first
	latest.MeasuredAt = now
	latest.WeightKg = ptr(68)
	latest.WaistCm = ptr(77)
	s.mustRequest(ctx, http.MethodPost, fmt.Sprintf("/subjects/%s/measurements", subjectID), latest, http.StatusCreated, &added)

	var list handlers.MeasurementsResponse
	s.mustRequest(ctx, http.MethodGet, fmt.Sprintf("/subjects/%s/measurements", subjectID), nil, http.StatusOK, &list)
	require.Len(t, list.Series.Ordered, 2)
	assert.Equal(t, added.ID, list.Series.Ordered[0].ID)

	var evo handlers.EvolutionResponse
	s.mustRequest(ctx, http.MethodGet, fmt.Sprintf("/subjects/%s/evolution", subjectID), nil, http.StatusOK, &evo)
	require.NotNil(t, evo.Evolution)
	assert.Equal(t, 30, evo.Evolution.PeriodDays)
	waist := evo.Evolution.Get(evolution.MetricWaist)
	require.NotNil(t, waist)
	assert.InDelta(t, -3, waist.Delta, 0.001)
	weight := evo.Evolution.Get(evolution.MetricWeight)
	require.NotNil(t, weight)
	assert.InDelta(t, -2, weight.Delta, 0.001)

	for _, pose := range []string{"front", "side"} {
		s.mustRequest(ctx, http.MethodPost, fmt.Sprintf("/subjects/%s/photos", subjectID), photos.Photo{
			PoseID:     pose,
			CapturedAt: now,
			URL:        "https://cdn.coachstats.io/" + pose + ".jpg",
		}, http.StatusCreated, nil)
	}
	var photoTimeline handlers.PhotoTimelineResponse
	s.mustRequest(ctx, http.MethodGet, fmt.Sprintf("/subjects/%s/photos/timeline", subjectID), nil, http.StatusOK, &photoTimeline)
	assert.Equal(t, 2, photoTimeline.Total)
	assert.Len(t, photoTimeline.Poses, 2)

	s.mustRequest(ctx, http.MethodPut, "/exercises/squat/muscle-group", map[string]string{"muscleGroup": "legs"}, http.StatusNoContent, nil)
	for i := 0; i < 3; i++ {
		s.mustRequest(ctx, http.MethodPost, fmt.Sprintf("/subjects/%s/sessions", subjectID), performance.SessionLog{
			ExerciseName: "squat",
			PerformedAt:  now.AddDate(0, 0, -7*(3-i)),
			MaxWeightKg:  float64(60 + 5*i),
			TotalVolume:  float64(1800 + 150*i),
			TotalReps:    30,
		}, http.StatusCreated, nil)
	}

	var summary handlers.PerformanceSummaryResponse
	s.mustRequest(ctx, http.MethodGet, fmt.Sprintf("/subjects/%s/performance", subjectID), nil, http.StatusOK, &summary)
	require.Len(t, summary.Summaries, 1)
	assert.Equal(t, "squat", summary.Summaries[0].Exercise)
	assert.Equal(t, 3, summary.Summaries[0].Count)
	assert.Equal(t, 70.0, summary.Summaries[0].MaxWeightKg)
	assert.Equal(t, "legs", summary.MuscleGroups["squat"])

	s.verifyAnalysis(ctx, subjectID)
}

func (s *IntegrationTestSuite) verifyAnalysis(ctx context.Context, subjectID string) {
	t := s.T()
	path := fmt.Sprintf("/subjects/%s/analysis", subjectID)

	status, _ := s.doRequest(ctx, http.MethodGet, path+"/latest", nil, testAuthToken)
	require.Equal(t, http.StatusNotFound, status)

	var dryRun adaptation.Recommendation
	s.mustRequest(ctx, http.MethodPost, path+"?dry_run=true", nil, http.StatusOK, &dryRun)
	assert.Equal(t, subjectID, dryRun.SubjectID)

	var stored adaptation.Recommendation
	s.mustRequest(ctx, http.MethodPost, path, nil, http.StatusCreated, &stored)
	assert.NotEmpty(t, stored.ID)
	assert.NotEmpty(t, stored.AdaptationPriority)

	var latest adaptation.Recommendation
	s.mustRequest(ctx, http.MethodGet, path+"/latest", nil, http.StatusOK, &latest)
	assert.Equal(t, stored.ID, latest.ID)
	assert.Equal(t, stored.AdaptationPriority, latest.AdaptationPriority)

	var history analysis.HistoryResponse
	s.mustRequest(ctx, http.MethodGet, path+"/history", nil, http.StatusOK, &history)
	require.Len(t, history.Recommendations, 1)
	assert.Equal(t, stored.ID, history.Recommendations[0].ID)
}

func (s *IntegrationTestSuite) TestAnalysisRateLimited() {
	ctx := context.Background()
	path := fmt.Sprintf("/subjects/%s/analysis?dry_run=true", gofakeit.UUID())

	for i := 0; i < 3; i++ {
		status, _ := s.doRequest(ctx, http.MethodPost, path, nil, testAuthToken)
		s.NotEqual(http.StatusTooManyRequests, status)
	}

	status, _ := s.doRequest(ctx, http.MethodPost, path, nil, testAuthToken)
	s.Equal(http.StatusTooManyRequests, status)
}
