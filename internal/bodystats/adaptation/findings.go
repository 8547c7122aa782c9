package adaptation

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/2beens/coachstats/internal/bodystats/evolution"
	"github.com/2beens/coachstats/internal/bodystats/performance"
)

// Finding is a metric change that passed the noise floor, or an unfavorable
// change beyond the material threshold.
type Finding struct {
	Metric evolution.Metric `json:"metric"`
	Delta  evolution.Delta  `json:"delta"`
	// Reversal is set on unfavorable changes beyond the material threshold.
	Reversal bool `json:"reversal"`
}

func (f Finding) String() string {
	d := f.Delta
	s := fmt.Sprintf("%s %s by %s%s", f.Metric.Label(), verb(d.Direction), formatNumber(d.Magnitude()), unitSuffix(f.Metric.Unit()))
	if d.PercentDelta != nil {
		s += fmt.Sprintf(" (%+.1f%%)", *d.PercentDelta)
	}
	return s
}

type findings struct {
	strengths []Finding
	deficits  []Finding
}

func (f findings) hasReversal() bool {
	for _, d := range f.deficits {
		if d.Reversal {
			return true
		}
	}
	return false
}

func (f findings) reversals() []Finding {
	var out []Finding
	for _, d := range f.deficits {
		if d.Reversal {
			out = append(out, d)
		}
	}
	return out
}

// walkPolarity judges every delta of the evolution against the polarity table.
func (e *Engine) walkPolarity(evo *evolution.MeasurementEvolution) findings {
	var f findings
	if evo == nil {
		return f
	}

	for _, md := range evo.Deltas {
		if md.Delta == nil {
			continue
		}

		judgement := e.polarity.Judge(md.Metric, md.Delta)
		reversal := judgement == evolution.Unfavorable && e.isMaterial(md.Delta)
		if !reversal && math.Abs(md.RawDelta) <= e.noiseFloor(md.Baseline) {
			continue
		}

		finding := Finding{
			Metric:   md.Metric,
			Delta:    *md.Delta,
			Reversal: reversal,
		}
		switch judgement {
		case evolution.Favorable:
			f.strengths = append(f.strengths, finding)
		case evolution.Unfavorable:
			f.deficits = append(f.deficits, finding)
		}
	}

	return f
}

// isMaterial compares the unrounded percentage, a change shown as 3.0% may
// still exceed a 3% threshold.
func (e *Engine) isMaterial(d *evolution.Delta) bool {
	return d.RawPercentDelta != nil &&
		math.Abs(*d.RawPercentDelta) > e.thresholds.MaterialReversalPercent
}

func (e *Engine) noiseFloor(baseline float64) float64 {
	return math.Max(e.thresholds.NoisePercent/100*math.Abs(baseline), e.thresholds.NoiseAbsolute)
}

type performanceTrends struct {
	tracked     int
	declining   int
	progressing []string
	toFocus     []string
}

// A muscle group needs focus as soon as one of its exercises trends down. It
// is progressing when some exercise trends up and none trends down.
// Exercises missing from the muscle group table are counted but not mapped.
func mapTrends(summaries []performance.Summary, muscleGroups map[string]string) performanceTrends {
	var pt performanceTrends
	up := make(map[string]bool)
	down := make(map[string]bool)

	for _, s := range summaries {
		if s.NoData {
			continue
		}
		pt.tracked++
		if s.Trend == performance.TrendDown {
			pt.declining++
		}

		group, ok := muscleGroups[s.Exercise]
		if !ok || group == "" {
			continue
		}
		switch s.Trend {
		case performance.TrendUp:
			up[group] = true
		case performance.TrendDown:
			down[group] = true
		}
	}

	for group := range down {
		pt.toFocus = append(pt.toFocus, group)
	}
	for group := range up {
		if !down[group] {
			pt.progressing = append(pt.progressing, group)
		}
	}
	sort.Strings(pt.toFocus)
	sort.Strings(pt.progressing)

	return pt
}

func verb(d evolution.Direction) string {
	switch d {
	case evolution.DirectionIncrease:
		return "increased"
	case evolution.DirectionDecrease:
		return "decreased"
	default:
		return "did not change"
	}
}

func unitSuffix(unit string) string {
	switch unit {
	case "":
		return ""
	case "%":
		return " pp"
	default:
		return " " + unit
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func describe(fs []Finding) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.String())
	}
	return out
}
