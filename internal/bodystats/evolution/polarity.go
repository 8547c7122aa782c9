package evolution

import (
	"fmt"
	"strings"

	"github.com/2beens/coachstats/internal/bodystats"
)

// Metric names a tracked body metric.
type Metric string

const (
	MetricWeight         Metric = "weight"
	MetricBodyFatPercent Metric = "bodyFatPercent"
	MetricWaist          Metric = "waist"
	MetricChest          Metric = "chest"
	MetricArm            Metric = "arm"
	MetricThigh          Metric = "thigh"
	MetricMuscleMass     Metric = "muscleMass"
	MetricHip            Metric = "hip"
	MetricBMI            Metric = "bmi"
	MetricFatMass        Metric = "fatMass"
	MetricLeanMass       Metric = "leanMass"
)

// Metrics lists every tracked metric in report order.
var Metrics = []Metric{
	MetricWeight,
	MetricBodyFatPercent,
	MetricWaist,
	MetricChest,
	MetricArm,
	MetricThigh,
	MetricMuscleMass,
	MetricHip,
	MetricBMI,
	MetricFatMass,
	MetricLeanMass,
}

// Unit returns the display unit of the metric.
func (m Metric) Unit() string {
	switch m {
	case MetricWeight, MetricMuscleMass, MetricFatMass, MetricLeanMass:
		return "kg"
	case MetricBodyFatPercent:
		return "%"
	case MetricBMI:
		return ""
	default:
		return "cm"
	}
}

// Derived reports whether the metric is computed from a measurement rather
// than recorded.
func (m Metric) Derived() bool {
	switch m {
	case MetricBodyFatPercent, MetricBMI, MetricFatMass, MetricLeanMass:
		return true
	default:
		return false
	}
}

// Label returns a human readable metric name.
func (m Metric) Label() string {
	switch m {
	case MetricBodyFatPercent:
		return "body fat"
	case MetricMuscleMass:
		return "muscle mass"
	case MetricBMI:
		return "BMI"
	case MetricFatMass:
		return "fat mass"
	case MetricLeanMass:
		return "lean mass"
	default:
		return string(m)
	}
}

// Goal says which direction of change is favorable for a metric.
type Goal string

const (
	GoalDecrease Goal = "decrease"
	GoalIncrease Goal = "increase"
)

func ParseGoal(s string) (Goal, error) {
	switch Goal(strings.ToLower(strings.TrimSpace(s))) {
	case GoalDecrease:
		return GoalDecrease, nil
	case GoalIncrease:
		return GoalIncrease, nil
	default:
		return "", bodystats.NewValidationError("goal", fmt.Sprintf("unknown goal [%s]", s))
	}
}

// Polarity is the per-metric "is an increase good or bad" table shared by the
// decision engine and every reporting surface.
type Polarity map[Metric]Goal

func DefaultPolarity() Polarity {
	return Polarity{
		MetricWeight:         GoalDecrease,
		MetricBodyFatPercent: GoalDecrease,
		MetricWaist:          GoalDecrease,
		MetricHip:            GoalDecrease,
		MetricBMI:            GoalDecrease,
		MetricFatMass:        GoalDecrease,
		MetricChest:          GoalIncrease,
		MetricArm:            GoalIncrease,
		MetricThigh:          GoalIncrease,
		MetricMuscleMass:     GoalIncrease,
		MetricLeanMass:       GoalIncrease,
	}
}

// WithOverrides returns a copy of p with the given metric goals replaced,
// e.g. {"weight": "increase"} for a student on a mass gaining program.
func (p Polarity) WithOverrides(overrides map[string]string) (Polarity, error) {
	out := make(Polarity, len(p))
	for m, g := range p {
		out[m] = g
	}
	for name, goalStr := range overrides {
		m := Metric(name)
		if _, ok := p[m]; !ok {
			return nil, bodystats.NewValidationError("polarity", fmt.Sprintf("unknown metric [%s]", name))
		}
		goal, err := ParseGoal(goalStr)
		if err != nil {
			return nil, err
		}
		out[m] = goal
	}
	return out, nil
}

// Judgement of a single delta against the polarity table.
type Judgement int

const (
	Neutral Judgement = iota
	Favorable
	Unfavorable
)

func (j Judgement) String() string {
	switch j {
	case Favorable:
		return "favorable"
	case Unfavorable:
		return "unfavorable"
	default:
		return "neutral"
	}
}

func (j Judgement) MarshalText() ([]byte, error) {
	return []byte(j.String()), nil
}

// Judge tells whether the delta moved in the favorable direction for the metric.
// Flat deltas and metrics missing from the table are neutral.
func (p Polarity) Judge(m Metric, d *Delta) Judgement {
	if d == nil || d.Direction == DirectionFlat {
		return Neutral
	}
	goal, ok := p[m]
	if !ok {
		return Neutral
	}
	increased := d.Direction == DirectionIncrease
	if (goal == GoalIncrease) == increased {
		return Favorable
	}
	return Unfavorable
}
