package photos

import (
	"sort"

	"github.com/2beens/coachstats/internal/bodystats/timeline"
)

type TimelineEntry struct {
	Photo
	IsCurrent bool `json:"isCurrent"`
	IsFirst   bool `json:"isFirst"`
	// DaysSincePrevious and ElapsedLabel are relative to the previous (older)
	// photo of the same pose; both are empty for the first one.
	DaysSincePrevious *int   `json:"daysSincePrevious,omitempty"`
	ElapsedLabel      string `json:"elapsedLabel,omitempty"`
}

type PoseTimeline struct {
	PoseID  string          `json:"poseId"`
	Entries []TimelineEntry `json:"entries"`
}

// Current returns the most recent photo of the pose.
func (pt PoseTimeline) Current() (Photo, bool) {
	if len(pt.Entries) == 0 {
		return Photo{}, false
	}
	return pt.Entries[0].Photo, true
}

// First returns the baseline photo of the pose.
func (pt PoseTimeline) First() (Photo, bool) {
	if len(pt.Entries) == 0 {
		return Photo{}, false
	}
	return pt.Entries[len(pt.Entries)-1].Photo, true
}

type Timeline struct {
	Poses   []PoseTimeline     `json:"poses"`
	ByMonth map[string][]Photo `json:"byMonth"`
	Months  []string           `json:"months"`
	Total   int                `json:"total"`
}

// BuildTimeline organizes a subject's photos per pose (poses sorted by name,
// general last) and per month.
func BuildTimeline(photos []Photo) Timeline {
	byPose := OrganizeByPose(photos)

	poseIDs := make([]string, 0, len(byPose))
	for pose := range byPose {
		poseIDs = append(poseIDs, pose)
	}
	sort.Slice(poseIDs, func(i, j int) bool {
		if poseIDs[i] == PoseGeneral || poseIDs[j] == PoseGeneral {
			return poseIDs[j] == PoseGeneral && poseIDs[i] != PoseGeneral
		}
		return poseIDs[i] < poseIDs[j]
	})

	poses := make([]PoseTimeline, 0, len(poseIDs))
	for _, pose := range poseIDs {
		poses = append(poses, PoseTimeline{
			PoseID:  pose,
			Entries: poseEntries(byPose[pose]),
		})
	}

	series := timeline.Organize(photos)
	return Timeline{
		Poses:   poses,
		ByMonth: series.ByMonth,
		Months:  series.Months,
		Total:   len(photos),
	}
}

// poseEntries expects photos ordered newest first.
func poseEntries(ordered []Photo) []TimelineEntry {
	entries := make([]TimelineEntry, len(ordered))
	for i, p := range ordered {
		entries[i] = TimelineEntry{
			Photo:     p,
			IsCurrent: i == 0,
			IsFirst:   i == len(ordered)-1,
		}
		if i+1 < len(ordered) {
			days := timeline.DaysBetween(ordered[i+1].CapturedAt, p.CapturedAt)
			entries[i].DaysSincePrevious = &days
			entries[i].ElapsedLabel = ElapsedLabel(days)
		}
	}
	return entries
}
