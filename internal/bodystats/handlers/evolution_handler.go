package handlers

import (
	"errors"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/evolution"
	"github.com/2beens/coachstats/internal/bodystats/measurements"
	"github.com/2beens/coachstats/internal/bodystats/timeline"
	"github.com/2beens/coachstats/internal/telemetry/tracing"
)

const insufficientHistoryMessage = "at least two measurements are needed to compute the evolution"

type EvolutionResponse struct {
	SubjectID string                          `json:"subjectId"`
	Evolution *evolution.MeasurementEvolution `json:"evolution"`
	// Judgements tell, per metric with a delta, whether the change moved in
	// the subject's favor.
	Judgements map[evolution.Metric]evolution.Judgement `json:"judgements,omitempty"`
	Message    string                                   `json:"message,omitempty"`
}

type EvolutionHandler struct {
	repo     measurementsRepo
	subjects subjectsRepo
	polarity evolution.Polarity
}

func NewEvolutionHandler(repo measurementsRepo, subjects subjectsRepo, polarity evolution.Polarity) *EvolutionHandler {
	if polarity == nil {
		polarity = evolution.DefaultPolarity()
	}
	return &EvolutionHandler{
		repo:     repo,
		subjects: subjects,
		polarity: polarity,
	}
}

// HandleEvolution compares two measurements of the subject. The pair is taken
// from ?baseline= and ?comparison= (record ids); a missing side defaults to the
// first (baseline) or latest (comparison) record. Without ids, ?mode=previous
// compares the two most recent records instead of first vs latest.
func (handler *EvolutionHandler) HandleEvolution(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.evolution.get")
	defer span.End()

	id, ok := subjectID(r)
	if !ok {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	baselineID, err := optionalID(query.Get("baseline"))
	if err != nil {
		http.Error(w, "error, invalid baseline id", http.StatusBadRequest)
		return
	}
	comparisonID, err := optionalID(query.Get("comparison"))
	if err != nil {
		http.Error(w, "error, invalid comparison id", http.StatusBadRequest)
		return
	}
	mode := evolution.Mode(query.Get("mode"))

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

	var evo *evolution.MeasurementEvolution
	if baselineID == 0 && comparisonID == 0 {
		evo, err = evolution.CompareHistory(records, subject.Sex, mode)
	} else {
		evo, err = comparePair(records, baselineID, comparisonID, subject.Sex)
	}
	if err != nil {
		switch {
		case errors.Is(err, measurements.ErrMeasurementNotFound):
			http.Error(w, "error, measurement not found", http.StatusNotFound)
		case errors.Is(err, bodystats.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Errorf("failed to compute evolution of [%s]: %s", id, err)
			http.Error(w, "error, failed to compute evolution", http.StatusInternalServerError)
		}
		return
	}

	resp := EvolutionResponse{
		SubjectID: id,
		Evolution: evo,
	}
	if evo == nil {
		resp.Message = insufficientHistoryMessage
	} else {
		resp.Judgements = handler.judge(evo)
	}

	writeJSON(w, resp, http.StatusOK, "evolution")
}

func (handler *EvolutionHandler) judge(evo *evolution.MeasurementEvolution) map[evolution.Metric]evolution.Judgement {
	judgements := make(map[evolution.Metric]evolution.Judgement)
	for _, md := range evo.Deltas {
		if md.Delta == nil {
			continue
		}
		judgements[md.Metric] = handler.polarity.Judge(md.Metric, md.Delta)
	}
	return judgements
}

// comparePair resolves the explicitly selected records; zero ids fall back to
// the first and latest record.
func comparePair(records []measurements.Record, baselineID, comparisonID int, sex bodystats.Sex) (*evolution.MeasurementEvolution, error) {
	series := timeline.Organize(records)

	var baseline, comparison measurements.Record
	var found bool
	if baselineID == 0 {
		baseline, found = series.Baseline()
	} else {
		baseline, found = findRecord(records, baselineID)
	}
	if !found {
		return nil, measurements.ErrMeasurementNotFound
	}
	if comparisonID == 0 {
		comparison, found = series.Current()
	} else {
		comparison, found = findRecord(records, comparisonID)
	}
	if !found {
		return nil, measurements.ErrMeasurementNotFound
	}

	return evolution.Compare(baseline, comparison, sex)
}

func findRecord(records []measurements.Record, id int) (measurements.Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return measurements.Record{}, false
}

func optionalID(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
