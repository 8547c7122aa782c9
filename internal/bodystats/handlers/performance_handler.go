package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/performance"
	"github.com/2beens/coachstats/internal/telemetry/tracing"
)

type PerformanceSummaryResponse struct {
	SubjectID    string                `json:"subjectId"`
	Days         int                   `json:"days"`
	Summaries    []performance.Summary `json:"summaries"`
	MuscleGroups map[string]string     `json:"muscleGroups"`
}

type PerformanceHandler struct {
	repo sessionsRepo
	now  func() time.Time
}

func NewPerformanceHandler(repo sessionsRepo, now func() time.Time) *PerformanceHandler {
	if now == nil {
		now = time.Now
	}
	return &PerformanceHandler{
		repo: repo,
		now:  now,
	}
}

func (handler *PerformanceHandler) HandleAddSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.performance.add")
	defer span.End()

	id, ok := subjectID(r)
	if !ok {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}

	var session performance.SessionLog
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		log.Tracef("new session, unmarshal json: %s", err)
		http.Error(w, "add session failed", http.StatusBadRequest)
		return
	}
	session.SubjectID = id

	if err := session.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.repo.Add(ctx, session)
	if err != nil {
		if errors.Is(err, bodystats.ErrSubjectNotFound) {
			http.Error(w, "error, subject not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to add session [%s] for [%s]: %s", session.ExerciseName, id, err)
		http.Error(w, "error, failed to add session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, added, http.StatusCreated, "session")
}

// HandleSummary aggregates the sessions of the last ?days=N days (default 30) per exercise.
func (handler *PerformanceHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.performance.summary")
	defer span.End()

	id, ok := subjectID(r)
	if !ok {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}

	days := performance.DefaultWindowDays
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		var err error
		days, err = strconv.Atoi(daysStr)
		if err != nil || days <= 0 {
			http.Error(w, "error, days must be a positive number", http.StatusBadRequest)
			return
		}
	}

	from := performance.WindowStart(handler.now(), days)
	sessions, err := handler.repo.List(ctx, performance.ListParams{
		SubjectID: id,
		From:      &from,
	})
	if err != nil {
		log.Errorf("failed to list sessions for [%s]: %s", id, err)
		http.Error(w, "error, failed to get sessions", http.StatusInternalServerError)
		return
	}

	summaries, err := performance.AggregateByExercise(sessions)
	if err != nil {
		if errors.Is(err, bodystats.ErrValidation) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		log.Errorf("failed to aggregate sessions for [%s]: %s", id, err)
		http.Error(w, "error, failed to aggregate sessions", http.StatusInternalServerError)
		return
	}

	muscleGroups, err := handler.repo.MuscleGroups(ctx)
	if err != nil {
		// the summary is still useful without the muscle groups
		log.Errorf("failed to get muscle groups: %s", err)
		muscleGroups = map[string]string{}
	}

	writeJSON(w, PerformanceSummaryResponse{
		SubjectID:    id,
		Days:         days,
		Summaries:    summaries,
		MuscleGroups: muscleGroups,
	}, http.StatusOK, "performance summary")
}

type muscleGroupRequest struct {
	MuscleGroup string `json:"muscleGroup"`
}

// HandleSetMuscleGroup maps an exercise to the muscle group used by the analysis.
func (handler *PerformanceHandler) HandleSetMuscleGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.performance.set_muscle_group")
	defer span.End()

	exercise := strings.TrimSpace(mux.Vars(r)["name"])
	if exercise == "" {
		http.Error(w, "error, exercise name empty", http.StatusBadRequest)
		return
	}

	var req muscleGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("set muscle group, unmarshal json: %s", err)
		http.Error(w, "set muscle group failed", http.StatusBadRequest)
		return
	}
	req.MuscleGroup = strings.ToLower(strings.TrimSpace(req.MuscleGroup))
	if req.MuscleGroup == "" {
		http.Error(w, "error, muscle group empty", http.StatusBadRequest)
		return
	}

	if err := handler.repo.SetMuscleGroup(ctx, exercise, req.MuscleGroup); err != nil {
		log.Errorf("failed to set muscle group of [%s]: %s", exercise, err)
		http.Error(w, "error, failed to set muscle group", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
