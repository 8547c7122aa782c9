package photos

import (
	"fmt"
	"strings"
	"time"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/timeline"
)

// PoseGeneral is the reserved pose for untagged photos.
const PoseGeneral = "general"

// Photo is a pose-tagged progress picture. Photos of the same pose are never
// replaced, a newer one just becomes the current one.
type Photo struct {
	ID         int       `json:"id"`
	SubjectID  string    `json:"subjectId"`
	PoseID     string    `json:"poseId"`
	CapturedAt time.Time `json:"capturedAt"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (p Photo) Date() time.Time {
	return p.CapturedAt
}

// Pose returns the pose id, falling back to PoseGeneral for untagged photos.
func (p Photo) Pose() string {
	pose := strings.TrimSpace(p.PoseID)
	if pose == "" {
		return PoseGeneral
	}
	return pose
}

func (p Photo) Validate() error {
	if p.SubjectID == "" {
		return bodystats.NewValidationError("subjectId", "empty")
	}
	if p.CapturedAt.IsZero() {
		return bodystats.NewValidationError("capturedAt", "empty")
	}
	if p.URL == "" {
		return bodystats.NewValidationError("url", "empty")
	}
	return nil
}

// OrganizeByPose groups photos by pose id, newest first within each pose.
func OrganizeByPose(photos []Photo) map[string][]Photo {
	return timeline.GroupBy(photos, Photo.Pose)
}

// ElapsedLabel describes the time between two consecutive photos of the same pose.
// The returned text is the canonical english form, translating it is up to the renderer.
func ElapsedLabel(days int) string {
	switch {
	case days <= 0:
		return "same day"
	case days == 1:
		return "1 day later"
	case days < 7:
		return fmt.Sprintf("%d days later", days)
	case days < 30:
		return plural(days/7, "week")
	default:
		return plural(days/30, "month")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s later", unit)
	}
	return fmt.Sprintf("%d %ss later", n, unit)
}
