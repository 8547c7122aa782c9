package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/measurements"
)

var f = bodystats.Float

var student = &bodystats.Subject{
	ID:  "student-1",
	Sex: bodystats.SexMale,
}

func janRecord() measurements.Record {
	return measurements.Record{
		ID:         1,
		SubjectID:  "student-1",
		MeasuredAt: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
		WeightKg:   f(80),
		WaistCm:    f(90),
		NeckCm:     f(38),
		HeightCm:   f(175),
	}
}

func marRecord() measurements.Record {
	return measurements.Record{
		ID:         2,
		SubjectID:  "student-1",
		MeasuredAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		WeightKg:   f(76),
		WaistCm:    f(84),
		NeckCm:     f(38),
		HeightCm:   f(175),
	}
}

func serve(t *testing.T, router *mux.Router, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
