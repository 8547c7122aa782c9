// Package evolution computes longitudinal deltas between two measurements of
// the same subject and judges them against a configurable polarity table.
package evolution

import (
	"fmt"
	"time"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/composition"
	"github.com/2beens/coachstats/internal/bodystats/measurements"
	"github.com/2beens/coachstats/internal/bodystats/timeline"
)

type RecordRef struct {
	ID         int       `json:"id"`
	MeasuredAt time.Time `json:"measuredAt"`
}

type MetricDelta struct {
	Metric Metric `json:"metric"`
	Unit   string `json:"unit"`
	*Delta
}

// MeasurementEvolution is the snapshot of changes between two measurements.
type MeasurementEvolution struct {
	SubjectID  string    `json:"subjectId"`
	Baseline   RecordRef `json:"baseline"`
	Comparison RecordRef `json:"comparison"`
	PeriodDays int       `json:"periodDays"`
	// Deltas holds one entry per metric; absent metrics have a nil Delta.
	Deltas []MetricDelta `json:"deltas"`
}

// Get returns the delta of the given metric, nil when it could not be computed.
func (e *MeasurementEvolution) Get(m Metric) *Delta {
	for _, md := range e.Deltas {
		if md.Metric == m {
			return md.Delta
		}
	}
	return nil
}

// Compare diffs the baseline against the comparison record. The comparison must
// not be older than the baseline and both must belong to the same subject.
func Compare(baseline, comparison measurements.Record, sex bodystats.Sex) (*MeasurementEvolution, error) {
	if err := baseline.Validate(); err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	if err := comparison.Validate(); err != nil {
		return nil, fmt.Errorf("comparison: %w", err)
	}
	if baseline.SubjectID != comparison.SubjectID {
		return nil, bodystats.NewValidationError(
			"subjectId",
			fmt.Sprintf("cannot compare subjects [%s] and [%s]", baseline.SubjectID, comparison.SubjectID),
		)
	}

	periodDays := timeline.DaysBetween(baseline.MeasuredAt, comparison.MeasuredAt)
	if periodDays < 0 {
		return nil, bodystats.NewValidationError(
			"periodDays",
			fmt.Sprintf("comparison is %d days before the baseline", -periodDays),
		)
	}

	baseMetrics, err := composition.ComputeRaw(baseline, sex)
	if err != nil {
		return nil, fmt.Errorf("baseline metrics: %w", err)
	}
	cmpMetrics, err := composition.ComputeRaw(comparison, sex)
	if err != nil {
		return nil, fmt.Errorf("comparison metrics: %w", err)
	}

	pairs := map[Metric][2]*float64{
		MetricWeight:         {baseline.WeightKg, comparison.WeightKg},
		MetricBodyFatPercent: {baseMetrics.EstimatedBodyFatPercent, cmpMetrics.EstimatedBodyFatPercent},
		MetricWaist:          {baseline.WaistCm, comparison.WaistCm},
		MetricChest:          {baseline.ChestCm, comparison.ChestCm},
		MetricArm:            {baseline.ArmCm, comparison.ArmCm},
		MetricThigh:          {baseline.ThighCm, comparison.ThighCm},
		MetricMuscleMass:     {baseline.MuscleMassKg, comparison.MuscleMassKg},
		MetricHip:            {baseline.HipCm, comparison.HipCm},
		MetricBMI:            {baseMetrics.BMI, cmpMetrics.BMI},
		MetricFatMass:        {baseMetrics.FatMassKg, cmpMetrics.FatMassKg},
		MetricLeanMass:       {baseMetrics.LeanMassKg, cmpMetrics.LeanMassKg},
	}

	deltas := make([]MetricDelta, 0, len(Metrics))
	for _, m := range Metrics {
		p := pairs[m]
		d := Diff(p[0], p[1])
		if d != nil && m.Derived() {
			// derived endpoints are shown as composition reports them
			d.Baseline = round(d.Baseline, 1)
			d.Comparison = round(d.Comparison, 1)
		}
		deltas = append(deltas, MetricDelta{
			Metric: m,
			Unit:   m.Unit(),
			Delta:  d,
		})
	}

	return &MeasurementEvolution{
		SubjectID: baseline.SubjectID,
		Baseline: RecordRef{
			ID:         baseline.ID,
			MeasuredAt: baseline.MeasuredAt,
		},
		Comparison: RecordRef{
			ID:         comparison.ID,
			MeasuredAt: comparison.MeasuredAt,
		},
		PeriodDays: periodDays,
		Deltas:     deltas,
	}, nil
}

// Mode selects the default comparison pair of a measurement history.
type Mode string

const (
	// ModeFirstVsLatest compares the first measurement on file with the latest one.
	ModeFirstVsLatest Mode = "first"
	// ModePreviousVsLatest compares the two most recent measurements.
	ModePreviousVsLatest Mode = "previous"
)

// CompareHistory picks the comparison pair from a subject's history according to
// mode. It returns nil (not an error) when fewer than two measurements exist.
func CompareHistory(records []measurements.Record, sex bodystats.Sex, mode Mode) (*MeasurementEvolution, error) {
	if err := measurements.ValidateHistory(records); err != nil {
		return nil, err
	}

	series := timeline.Organize(records)
	if series.Len() < 2 {
		return nil, nil
	}

	current, _ := series.Current()
	var baseline measurements.Record
	switch mode {
	case ModePreviousVsLatest:
		baseline, _ = series.Previous()
	case ModeFirstVsLatest, "":
		baseline, _ = series.Baseline()
	default:
		return nil, bodystats.NewValidationError("mode", fmt.Sprintf("unknown comparison mode [%s]", mode))
	}

	return Compare(baseline, current, sex)
}
