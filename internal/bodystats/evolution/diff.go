package evolution

import "math"

type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
	DirectionFlat     Direction = "flat"
)

// Delta is the change of one value between a baseline and a comparison point.
type Delta struct {
	Baseline   float64 `json:"baseline"`
	Comparison float64 `json:"comparison"`
	Delta      float64 `json:"delta"`
	// PercentDelta is nil when the baseline is zero.
	PercentDelta *float64  `json:"percentDelta"`
	Direction    Direction `json:"direction"`

	// unrounded values, for thresholds
	RawDelta        float64  `json:"-"`
	RawPercentDelta *float64 `json:"-"`
}

// Differences below flatTolerance are float representation noise.
const flatTolerance = 1e-9

// Diff returns nil if either value is absent. The delta is rounded to two
// decimals and the percentage to one; the direction follows the unrounded delta.
func Diff(baseline, comparison *float64) *Delta {
	if baseline == nil || comparison == nil {
		return nil
	}

	raw := *comparison - *baseline
	if math.Abs(raw) < flatTolerance {
		raw = 0
	}
	d := &Delta{
		Baseline:   *baseline,
		Comparison: *comparison,
		Delta:      positiveZero(round(raw, 2)),
		Direction:  DirectionFlat,
		RawDelta:   raw,
	}

	if *baseline != 0 {
		rawPct := raw / *baseline * 100
		pct := positiveZero(round(rawPct, 1))
		d.RawPercentDelta = &rawPct
		d.PercentDelta = &pct
	}

	switch {
	case raw > 0:
		d.Direction = DirectionIncrease
	case raw < 0:
		d.Direction = DirectionDecrease
	}

	return d
}

// Magnitude returns the absolute change.
func (d *Delta) Magnitude() float64 {
	return math.Abs(d.Delta)
}

func positiveZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
