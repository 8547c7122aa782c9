package analysis

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/adaptation"
	"github.com/2beens/coachstats/internal/telemetry/tracing"
	"github.com/2beens/coachstats/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=analysis_test

type analyzer interface {
	Analyze(ctx context.Context, subjectID string, dryRun bool) (*adaptation.Recommendation, error)
	Latest(ctx context.Context, subjectID string) (*adaptation.Recommendation, error)
	History(ctx context.Context, subjectID string, limit int) ([]adaptation.Recommendation, error)
}

type HistoryResponse struct {
	SubjectID       string                      `json:"subjectId"`
	Recommendations []adaptation.Recommendation `json:"recommendations"`
}

type Handler struct {
	service analyzer
}

func NewHandler(service analyzer) *Handler {
	return &Handler{
		service: service,
	}
}

// HandleAnalyze runs a new analysis; ?dry_run=true skips storing and publishing.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis.analyze")
	defer span.End()

	subjectID := mux.Vars(r)["id"]
	if subjectID == "" {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}

	dryRun := false
	if dryRunStr := r.URL.Query().Get("dry_run"); dryRunStr != "" {
		var err error
		dryRun, err = strconv.ParseBool(dryRunStr)
		if err != nil {
			http.Error(w, "error, invalid dry_run value", http.StatusBadRequest)
			return
		}
	}

	rec, err := h.service.Analyze(ctx, subjectID, dryRun)
	if err != nil {
		switch {
		case errors.Is(err, bodystats.ErrSubjectNotFound):
			http.Error(w, "error, subject not found", http.StatusNotFound)
		case errors.Is(err, bodystats.ErrValidation):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			log.Errorf("analysis of [%s] failed: %s", subjectID, err)
			http.Error(w, "error, analysis failed", http.StatusInternalServerError)
		}
		return
	}

	status := http.StatusCreated
	if dryRun {
		status = http.StatusOK
	}
	h.respond(w, rec, status)
}

func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis.latest")
	defer span.End()

	subjectID := mux.Vars(r)["id"]
	if subjectID == "" {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}

	rec, err := h.service.Latest(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrNoAnalysis) {
			http.Error(w, "error, no analysis found", http.StatusNotFound)
			return
		}
		log.Errorf("get latest analysis of [%s]: %s", subjectID, err)
		http.Error(w, "error, failed to get analysis", http.StatusInternalServerError)
		return
	}

	h.respond(w, rec, http.StatusOK)
}

// HandleHistory lists the stored recommendations, newest first, ?limit=N.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis.history")
	defer span.End()

	subjectID := mux.Vars(r)["id"]
	if subjectID == "" {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}

	limit := DefaultHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			http.Error(w, "error, limit must be a positive number", http.StatusBadRequest)
			return
		}
	}

	recs, err := h.service.History(ctx, subjectID, limit)
	if err != nil {
		log.Errorf("get analysis history of [%s]: %s", subjectID, err)
		http.Error(w, "error, failed to get analysis history", http.StatusInternalServerError)
		return
	}

	h.respond(w, HistoryResponse{
		SubjectID:       subjectID,
		Recommendations: recs,
	}, http.StatusOK)
}

func (h *Handler) respond(w http.ResponseWriter, v any, status int) {
	if err := pkg.WriteJSON(w, v, status); err != nil {
		log.Errorf("failed to write analysis response: %s", err)
	}
}
