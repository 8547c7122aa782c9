// Package handlers exposes the body stats engine over HTTP.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/composition"
	"github.com/2beens/coachstats/internal/bodystats/measurements"
	"github.com/2beens/coachstats/internal/bodystats/performance"
	"github.com/2beens/coachstats/internal/bodystats/photos"
	"github.com/2beens/coachstats/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handlers_mocks_test.go -package=handlers_test

type subjectsRepo interface {
	UpsertSubject(ctx context.Context, subject bodystats.Subject) error
	GetSubject(ctx context.Context, id string) (*bodystats.Subject, error)
}

type measurementsRepo interface {
	Add(ctx context.Context, record measurements.Record) (*measurements.Record, error)
	Get(ctx context.Context, subjectID string, id int) (*measurements.Record, error)
	List(ctx context.Context, subjectID string) ([]measurements.Record, error)
	Delete(ctx context.Context, subjectID string, id int) error
}

type photosRepo interface {
	Add(ctx context.Context, photo photos.Photo) (*photos.Photo, error)
	List(ctx context.Context, subjectID string) ([]photos.Photo, error)
}

type sessionsRepo interface {
	Add(ctx context.Context, session performance.SessionLog) (*performance.SessionLog, error)
	List(ctx context.Context, params performance.ListParams) ([]performance.SessionLog, error)
	MuscleGroups(ctx context.Context) (map[string]string, error)
	SetMuscleGroup(ctx context.Context, exerciseName, muscleGroup string) error
}

// compositionCalculator is satisfied by the composition cache.
type compositionCalculator interface {
	Compute(record measurements.Record, sex bodystats.Sex) (composition.Metrics, error)
}

func subjectID(r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	return id, id != ""
}

func measurementID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["mid"])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeJSON marshals v and writes it with the given status; what names the
// payload in the error log.
func writeJSON(w http.ResponseWriter, v any, status int, what string) {
	if err := pkg.WriteJSON(w, v, status); err != nil {
		log.Errorf("failed to write %s: %s", what, err)
	}
}

// writeSubjectErr handles the errors of subject lookups, reporting false when
// err is nil.
func writeSubjectErr(w http.ResponseWriter, subjectID string, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, bodystats.ErrSubjectNotFound) {
		http.Error(w, "error, subject not found", http.StatusNotFound)
		return true
	}
	log.Errorf("failed to get subject [%s]: %s", subjectID, err)
	http.Error(w, "error, failed to get subject", http.StatusInternalServerError)
	return true
}
