package performance

import (
	"strings"
	"time"

	"github.com/2beens/coachstats/internal/bodystats"
)

// SessionLog is one completed exercise instance of a subject.
type SessionLog struct {
	ID           int       `json:"id"`
	SubjectID    string    `json:"subjectId"`
	ExerciseName string    `json:"exerciseName"`
	PerformedAt  time.Time `json:"performedAt"`
	// MaxWeightKg is the heaviest load lifted in the session, 0 for bodyweight work.
	MaxWeightKg float64 `json:"maxWeightKg"`
	// TotalVolume is sets x reps x load.
	TotalVolume float64   `json:"totalVolume"`
	TotalReps   int       `json:"totalReps"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s SessionLog) Date() time.Time {
	return s.PerformedAt
}

func (s SessionLog) Exercise() string {
	return s.ExerciseName
}

func (s SessionLog) Validate() error {
	if strings.TrimSpace(s.SubjectID) == "" {
		return bodystats.NewValidationError("subjectId", "required")
	}
	if strings.TrimSpace(s.ExerciseName) == "" {
		return bodystats.NewValidationError("exerciseName", "required")
	}
	if s.PerformedAt.IsZero() {
		return bodystats.NewValidationError("performedAt", "required")
	}
	if s.MaxWeightKg < 0 {
		return bodystats.NewValidationError("maxWeightKg", "must not be negative")
	}
	if s.TotalVolume < 0 {
		return bodystats.NewValidationError("totalVolume", "must not be negative")
	}
	if s.TotalReps < 0 {
		return bodystats.NewValidationError("totalReps", "must not be negative")
	}
	return nil
}
