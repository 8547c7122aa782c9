package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/photos"
	"github.com/2beens/coachstats/internal/telemetry/tracing"
)

type PhotoTimelineResponse struct {
	SubjectID string `json:"subjectId"`
	photos.Timeline
}

type PhotosHandler struct {
	repo photosRepo
}

func NewPhotosHandler(repo photosRepo) *PhotosHandler {
	return &PhotosHandler{
		repo: repo,
	}
}

func (handler *PhotosHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.photos.add")
	defer span.End()

	id, ok := subjectID(r)
	if !ok {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}

	var photo photos.Photo
	if err := json.NewDecoder(r.Body).Decode(&photo); err != nil {
		log.Tracef("new photo, unmarshal json: %s", err)
		http.Error(w, "add photo failed", http.StatusBadRequest)
		return
	}
	photo.SubjectID = id

	if err := photo.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.repo.Add(ctx, photo)
	if err != nil {
		if errors.Is(err, bodystats.ErrSubjectNotFound) {
			http.Error(w, "error, subject not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to add photo for [%s]: %s", id, err)
		http.Error(w, "error, failed to add photo", http.StatusInternalServerError)
		return
	}

	writeJSON(w, added, http.StatusCreated, "photo")
}

// HandleTimeline returns the photos per pose, newest first, and per month.
func (handler *PhotosHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.photos.timeline")
	defer span.End()

	id, ok := subjectID(r)
	if !ok {
		http.Error(w, "error, subject id empty", http.StatusBadRequest)
		return
	}

	subjectPhotos, err := handler.repo.List(ctx, id)
	if err != nil {
		log.Errorf("failed to list photos of [%s]: %s", id, err)
		http.Error(w, "error, failed to get photos", http.StatusInternalServerError)
		return
	}

	writeJSON(w, PhotoTimelineResponse{
		SubjectID: id,
		Timeline:  photos.BuildTimeline(subjectPhotos),
	}, http.StatusOK, "photo timeline")
}
