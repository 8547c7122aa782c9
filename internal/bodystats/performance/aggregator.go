// Package performance summarizes windows of workout session logs per exercise.
package performance

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/timeline"
)

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// trendEpsilon keeps float noise from turning equal halves into a trend.
const trendEpsilon = 1e-9

// Summary of one exercise over a window of sessions.
// Weight stats are over the per-session max weight.
type Summary struct {
	Exercise    string  `json:"exercise"`
	Count       int     `json:"count"`
	MaxWeightKg float64 `json:"maxWeightKg"`
	MinWeightKg float64 `json:"minWeightKg"`
	AvgWeightKg float64 `json:"avgWeightKg"`
	TotalVolume float64 `json:"totalVolume"`
	TotalReps   int     `json:"totalReps"`
	Trend       Trend   `json:"trend"`
	// NoData is set for an empty window, every other stat is zero then.
	NoData bool `json:"noData"`
}

// Aggregate summarizes a window of sessions of a single exercise, ordered
// oldest to newest.
func Aggregate(window []SessionLog) (Summary, error) {
	if len(window) == 0 {
		return Summary{
			Trend:  TrendStable,
			NoData: true,
		}, nil
	}

	exercise := window[0].ExerciseName
	for i, s := range window {
		if err := s.Validate(); err != nil {
			return Summary{}, fmt.Errorf("session %d: %w", i, err)
		}
		if s.ExerciseName != exercise {
			return Summary{}, bodystats.NewValidationError(
				"exerciseName",
				fmt.Sprintf("window mixes exercises [%s] and [%s]", exercise, s.ExerciseName),
			)
		}
	}
	if !timeline.IsAscending(window) {
		return Summary{}, bodystats.NewValidationError("performedAt", "sessions are not ordered oldest to newest")
	}

	summary := Summary{
		Exercise:    exercise,
		Count:       len(window),
		MaxWeightKg: window[0].MaxWeightKg,
		MinWeightKg: window[0].MaxWeightKg,
	}
	weights := make([]float64, 0, len(window))
	for _, s := range window {
		summary.MaxWeightKg = math.Max(summary.MaxWeightKg, s.MaxWeightKg)
		summary.MinWeightKg = math.Min(summary.MinWeightKg, s.MaxWeightKg)
		summary.TotalVolume += s.TotalVolume
		summary.TotalReps += s.TotalReps
		weights = append(weights, s.MaxWeightKg)
	}
	summary.AvgWeightKg = math.Round(mean(weights)*100) / 100
	summary.Trend = trend(weights)

	return summary, nil
}

// AggregateByExercise groups sessions by exercise and aggregates each group.
// Input order does not matter. Summaries are sorted by exercise name.
func AggregateByExercise(sessions []SessionLog) ([]Summary, error) {
	groups := timeline.GroupBy(sessions, SessionLog.Exercise)

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]Summary, 0, len(names))
	for _, name := range names {
		summary, err := Aggregate(timeline.Ascending(groups[name]))
		if err != nil {
			return nil, fmt.Errorf("exercise [%s]: %w", name, err)
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// trend compares the mean of the first floor(n/2) values with the mean of the rest.
func trend(values []float64) Trend {
	if len(values) <= 1 {
		return TrendStable
	}
	half := len(values) / 2
	first := mean(values[:half])
	second := mean(values[half:])
	switch {
	case second-first > trendEpsilon:
		return TrendUp
	case first-second > trendEpsilon:
		return TrendDown
	default:
		return TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// DefaultWindowDays is the performance window used when none is requested.
const DefaultWindowDays = 30

// WindowStart returns the UTC midnight `days` days before now.
func WindowStart(now time.Time, days int) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
}
