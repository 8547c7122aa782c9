package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/composition"
	"github.com/2beens/coachstats/internal/bodystats/measurements"
	"github.com/2beens/coachstats/internal/bodystats/timeline"
	"github.com/2beens/coachstats/internal/telemetry/metrics"
	"github.com/2beens/coachstats/internal/telemetry/tracing"
)

// MeasurementWithMetrics is a stored record along with its derived metrics.
type MeasurementWithMetrics struct {
	measurements.Record
	Metrics composition.Metrics `json:"metrics"`
}

type MeasurementsResponse struct {
	SubjectID string                                  `json:"subjectId"`
	Sex       bodystats.Sex                           `json:"sex"`
	Series    timeline.Series[MeasurementWithMetrics] `json:"series"`
}

const anonymousSubject = "anonymous"

type CompositionRequest struct {
	Sex    string              `json:"sex"`
	Record measurements.Record `json:"record"`
}

type MeasurementsHandler struct {
	repo           measurementsRepo
	subjects       subjectsRepo
	calculator     compositionCalculator
	metricsManager *metrics.Manager
}

func NewMeasurementsHandler(
	repo measurementsRepo,
	subjects subjectsRepo,
	calculator compositionCalculator,
	metricsManager *metrics.Manager,
) *MeasurementsHandler {
	return &MeasurementsHandler{
		repo:           repo,
		subjects:       subjects,
		calculator:     calculator,
		metricsManager: metricsManager,
	}
}

// HandleComposition computes the derived metrics of a record without storing it.
func (handler *MeasurementsHandler) HandleComposition(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.composition.compute")
	defer span.End()

	var req CompositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("composition, unmarshal json: %s", err)
		http.Error(w, "compute composition failed", http.StatusBadRequest)
		return
	}

	sex, err := bodystats.ParseSex(req.Sex)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// the record is not stored, subject and date only need to be present
	if req.Record.SubjectID == "" {
		req.Record.SubjectID = anonymousSubject
	}
	if req.Record.MeasuredAt.IsZero() {
		req.Record.MeasuredAt = time.Now()
	}
	if err := req.Record.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := handler.calculator.Compute(req.Record, sex)
	if err != nil {
		if errors.Is(err, bodystats.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to compute composition: %s", err)
		http.Error(w, "error, failed to compute composition", http.StatusInternalServerError)
		return
	}

	writeJSON(w, m, http.StatusOK, "composition")
}

func (handler *MeasurementsHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.add")
	defer span.End()

	id, ok := subjectID(r)
	if !ok {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("subject", id))

	var record measurements.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		log.Tracef("new measurement, unmarshal json: %s", err)
		http.Error(w, "add measurement failed", http.StatusBadRequest)
		return
	}
	record.SubjectID = id

	if err := record.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	subject, err := handler.subjects.GetSubject(ctx, id)
	if writeSubjectErr(w, id, err) {
		return
	}

	added, err := handler.repo.Add(ctx, record)
	if err != nil {
		switch {
		case errors.Is(err, measurements.ErrDuplicateMeasurementDate):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, bodystats.ErrSubjectNotFound):
			http.Error(w, "error, subject not found", http.StatusNotFound)
		default:
			log.Errorf("failed to add measurement for [%s]: %s", id, err)
			http.Error(w, "error, failed to add measurement", http.StatusInternalServerError)
		}
		return
	}
	handler.metricsManager.CounterMeasurements.Inc()

	withMetrics, err := handler.withMetrics(*added, subject.Sex)
	if err != nil {
		log.Errorf("failed to compute metrics of measurement [%d]: %s", added.ID, err)
		http.Error(w, "error, failed to compute metrics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, withMetrics, http.StatusCreated, "measurement")
}

func (handler *MeasurementsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.get")
	defer span.End()

	id, ok := subjectID(r)
	if !ok {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}
	mid, ok := measurementID(r)
	if !ok {
		http.Error(w, "error, invalid measurement id", http.StatusBadRequest)
		return
	}

	subject, err := handler.subjects.GetSubject(ctx, id)
	if writeSubjectErr(w, id, err) {
		return
	}

	record, err := handler.repo.Get(ctx, id, mid)
	if err != nil {
		if errors.Is(err, measurements.ErrMeasurementNotFound) {
			http.Error(w, "error, measurement not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get measurement [%d] of [%s]: %s", mid, id, err)
		http.Error(w, "error, failed to get measurement", http.StatusInternalServerError)
		return
	}

	withMetrics, err := handler.withMetrics(*record, subject.Sex)
	if err != nil {
		log.Errorf("failed to compute metrics of measurement [%d]: %s", mid, err)
		http.Error(w, "error, failed to compute metrics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, withMetrics, http.StatusOK, "measurement")
}

// HandleList returns the subject's measurements newest first and by month.
func (handler *MeasurementsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.list")
	defer span.End()

	id, ok := subjectID(r)
	if !ok {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}

	subject, err := handler.subjects.GetSubject(ctx, id)
	if writeSubjectErr(w, id, err) {
		return
	}

	records, err := handler.repo.List(ctx, id)
	if err != nil {
		log.Errorf("failed to list measurements of [%s]: %s", id, err)
		http.Error(w, "error, failed to get measurements", http.StatusInternalServerError)
		return
	}

	items := make([]MeasurementWithMetrics, 0, len(records))
	for _, record := range records {
		withMetrics, err := handler.withMetrics(record, subject.Sex)
		if err != nil {
			log.Errorf("failed to compute metrics of measurement [%d]: %s", record.ID, err)
			http.Error(w, "error, failed to compute metrics", http.StatusInternalServerError)
			return
		}
		items = append(items, withMetrics)
	}

	writeJSON(w, MeasurementsResponse{
		SubjectID: id,
		Sex:       subject.Sex,
		Series:    timeline.Organize(items),
	}, http.StatusOK, "measurements")
}

func (handler *MeasurementsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.delete")
	defer span.End()

	id, ok := subjectID(r)
	if !ok {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}
	mid, ok := measurementID(r)
	if !ok {
		http.Error(w, "error, invalid measurement id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id, mid); err != nil {
		if errors.Is(err, measurements.ErrMeasurementNotFound) {
			http.Error(w, "error, measurement not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete measurement [%d] of [%s]: %s", mid, id, err)
		http.Error(w, "error, failed to delete measurement", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *MeasurementsHandler) withMetrics(record measurements.Record, sex bodystats.Sex) (MeasurementWithMetrics, error) {
	m, err := handler.calculator.Compute(record, sex)
	if err != nil {
		return MeasurementWithMetrics{}, err
	}
	return MeasurementWithMetrics{
		Record:  record,
		Metrics: m,
	}, nil
}
