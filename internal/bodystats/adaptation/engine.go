// Package adaptation decides whether and how urgently a subject's training
// program should be regenerated, from the measurement evolution and the
// per-exercise performance trends.
package adaptation

import (
	"fmt"
	"strings"
	"time"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/evolution"
	"github.com/2beens/coachstats/internal/bodystats/performance"
)

type Input struct {
	SubjectID string
	// Evolution is nil when fewer than two measurements exist.
	Evolution   *evolution.MeasurementEvolution
	Performance []performance.Summary
	// DaysSinceLastAnalysis is measured by the caller against Now.
	DaysSinceLastAnalysis int
	// MuscleGroups maps exercise names to muscle groups.
	MuscleGroups map[string]string
	Now          time.Time
}

// Recommendation is the outcome of one analysis. ID is left empty, it is
// assigned when the recommendation is stored.
type Recommendation struct {
	ID                      string    `json:"id"`
	SubjectID               string    `json:"subjectId"`
	Summary                 string    `json:"summary"`
	Strengths               []string  `json:"strengths"`
	Deficits                []string  `json:"deficits"`
	Recommendations         []string  `json:"recommendations"`
	MuscleGroupsProgressing []string  `json:"muscleGroupsProgressing"`
	MuscleGroupsToFocus     []string  `json:"muscleGroupsToFocus"`
	AdaptationPriority      Priority  `json:"adaptationPriority"`
	AdaptationReason        string    `json:"adaptationReason"`
	ShouldAdaptWorkout      bool      `json:"shouldAdaptWorkout"`
	PeriodDays              *int      `json:"periodDays,omitempty"`
	DaysSinceLastAnalysis   int       `json:"daysSinceLastAnalysis"`
	GeneratedAt             time.Time `json:"generatedAt"`

	// Findings carry the structured strengths and deficits.
	Findings []Finding `json:"findings,omitempty"`
}

type Engine struct {
	thresholds Thresholds
	polarity   evolution.Polarity
}

// NewEngine creates the decision engine. Zero thresholds fall back to the
// defaults and a nil polarity to evolution.DefaultPolarity.
func NewEngine(thresholds Thresholds, polarity evolution.Polarity) *Engine {
	if polarity == nil {
		polarity = evolution.DefaultPolarity()
	}
	return &Engine{
		thresholds: thresholds.WithDefaults(),
		polarity:   polarity,
	}
}

func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Decide applies the rules top-down, the first match wins:
//
//	none   - no evolution, or a recent analysis and nothing unfavorable
//	high   - a material reversal and a stale analysis
//	medium - a stale analysis, or declining performance on enough exercises
//	low    - anything else
//
// Decide is deterministic and reads no clock: Now is the generation time.
func (e *Engine) Decide(in Input) (*Recommendation, error) {
	if in.DaysSinceLastAnalysis < 0 {
		return nil, bodystats.NewValidationError(
			"daysSinceLastAnalysis",
			fmt.Sprintf("must not be negative, got %d", in.DaysSinceLastAnalysis),
		)
	}
	if in.Now.IsZero() {
		return nil, bodystats.NewValidationError("now", "required")
	}
	if in.Evolution != nil {
		if in.Evolution.PeriodDays < 0 {
			return nil, bodystats.NewValidationError(
				"periodDays",
				fmt.Sprintf("must not be negative, got %d", in.Evolution.PeriodDays),
			)
		}
		if in.SubjectID != "" && in.Evolution.SubjectID != in.SubjectID {
			return nil, bodystats.NewValidationError(
				"subjectId",
				fmt.Sprintf("evolution of [%s] given for [%s]", in.Evolution.SubjectID, in.SubjectID),
			)
		}
	}

	subjectID := in.SubjectID
	if subjectID == "" && in.Evolution != nil {
		subjectID = in.Evolution.SubjectID
	}

	found := e.walkPolarity(in.Evolution)
	trends := mapTrends(in.Performance, in.MuscleGroups)
	declining := trends.tracked > 0 &&
		float64(trends.declining) >= e.thresholds.DecliningShare*float64(trends.tracked)
	days := in.DaysSinceLastAnalysis

	var priority Priority
	var reason string
	switch {
	case in.Evolution == nil:
		priority = PriorityNone
		reason = "insufficient measurement history: at least two measurements are needed to evaluate the evolution"
	case days < e.thresholds.RecentAnalysisDays && len(found.deficits) == 0:
		priority = PriorityNone
		reason = fmt.Sprintf("last analysis was %d days ago and no unfavorable changes were found", days)
	case found.hasReversal() && days >= e.thresholds.StaleAnalysisDays:
		priority = PriorityHigh
		reason = fmt.Sprintf(
			"%s moved against the goal by more than %s%% and the last analysis was %d days ago",
			joinLabels(found.reversals()), formatNumber(e.thresholds.MaterialReversalPercent), days,
		)
	case days >= e.thresholds.StaleAnalysisDays:
		priority = PriorityMedium
		reason = fmt.Sprintf("last analysis was %d days ago, the program is due for adaptation", days)
	case declining:
		priority = PriorityMedium
		reason = fmt.Sprintf("performance is trending down on %d of %d tracked exercises", trends.declining, trends.tracked)
	default:
		priority = PriorityLow
		reason = "changes are within the expected range, keep monitoring"
	}

	rec := &Recommendation{
		SubjectID:               subjectID,
		Strengths:               describe(found.strengths),
		Deficits:                describe(found.deficits),
		MuscleGroupsProgressing: nonNil(trends.progressing),
		MuscleGroupsToFocus:     nonNil(trends.toFocus),
		AdaptationPriority:      priority,
		AdaptationReason:        reason,
		ShouldAdaptWorkout:      priority.ShouldAdapt(),
		DaysSinceLastAnalysis:   days,
		GeneratedAt:             in.Now,
		Findings:                append(append([]Finding{}, found.strengths...), found.deficits...),
	}
	if in.Evolution != nil {
		period := in.Evolution.PeriodDays
		rec.PeriodDays = &period
	}
	rec.Summary = summarize(rec, trends)
	rec.Recommendations = e.recommend(rec, found, trends, in.Evolution == nil)

	return rec, nil
}

func summarize(rec *Recommendation, trends performanceTrends) string {
	var sb strings.Builder
	if rec.PeriodDays == nil {
		sb.WriteString("Not enough measurements to evaluate the evolution yet.")
	} else {
		fmt.Fprintf(&sb, "Over %d days: %d favorable and %d unfavorable changes.",
			*rec.PeriodDays, len(rec.Strengths), len(rec.Deficits))
	}
	if trends.tracked > 0 {
		fmt.Fprintf(&sb, " %d of %d tracked exercises trending down.", trends.declining, trends.tracked)
	}
	fmt.Fprintf(&sb, " Adaptation priority: %s.", rec.AdaptationPriority)
	return sb.String()
}

func (e *Engine) recommend(rec *Recommendation, found findings, trends performanceTrends, noEvolution bool) []string {
	recs := make([]string, 0)
	if noEvolution {
		recs = append(recs, "record a new measurement to enable the evolution analysis")
	}

	switch rec.AdaptationPriority {
	case PriorityHigh:
		recs = append(recs, "regenerate the workout program now, the goal metrics are moving the wrong way")
	case PriorityMedium:
		recs = append(recs, "regenerate the workout program to keep the stimulus progressing")
	}

	for _, d := range found.deficits {
		recs = append(recs, fmt.Sprintf("review %s: %s", d.Metric.Label(), d.String()))
	}
	for _, group := range trends.toFocus {
		recs = append(recs, fmt.Sprintf("focus on %s, performance is declining", group))
	}
	for _, group := range trends.progressing {
		recs = append(recs, fmt.Sprintf("keep the current progression for %s", group))
	}

	if rec.DaysSinceLastAnalysis >= e.thresholds.StaleAnalysisDays {
		recs = append(recs, "schedule a new assessment with updated measurements and photos")
	}

	return recs
}

func joinLabels(fs []Finding) string {
	labels := make([]string, 0, len(fs))
	for _, f := range fs {
		labels = append(labels, f.Metric.Label())
	}
	return strings.Join(labels, ", ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
