package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/telemetry/tracing"
)

type SubjectsHandler struct {
	repo subjectsRepo
}

func NewSubjectsHandler(repo subjectsRepo) *SubjectsHandler {
	return &SubjectsHandler{
		repo: repo,
	}
}

type upsertSubjectRequest struct {
	Sex string `json:"sex"`
}

// HandleUpsert registers a subject or changes its sex.
func (handler *SubjectsHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.subjects.upsert")
	defer span.End()

	id, ok := subjectID(r)
	if !ok {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}

	var req upsertSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("upsert subject, unmarshal json: %s", err)
		http.Error(w, "upsert subject failed", http.StatusBadRequest)
		return
	}

	sex, err := bodystats.ParseSex(req.Sex)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	subject := bodystats.Subject{
		ID:  id,
		Sex: sex,
	}
	if err := handler.repo.UpsertSubject(ctx, subject); err != nil {
		log.Errorf("failed to upsert subject [%s]: %s", id, err)
		http.Error(w, "error, failed to upsert subject", http.StatusInternalServerError)
		return
	}

	writeJSON(w, subject, http.StatusOK, "subject")
}

func (handler *SubjectsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.subjects.get")
	defer span.End()

	id, ok := subjectID(r)
	if !ok {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}

	subject, err := handler.repo.GetSubject(ctx, id)
	if writeSubjectErr(w, id, err) {
		return
	}

	writeJSON(w, subject, http.StatusOK, "subject")
}
