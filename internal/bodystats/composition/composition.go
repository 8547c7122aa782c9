// Package composition computes the derived body composition metrics of a
// measurement: BMI, the US Navy body-fat estimate, fat mass and lean mass.
//
// All functions are pure. A missing or non-positive input yields a nil result,
// never an error, except for an unsupported sex which is a caller mistake.
// Rounding is applied only to the returned values.
package composition

import (
	"math"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/measurements"
)

// Metrics is never stored, it is recomputed from a measurement on demand.
type Metrics struct {
	BMI                     *float64 `json:"bmi"`
	EstimatedBodyFatPercent *float64 `json:"estimatedBodyFatPercent"`
	FatMassKg               *float64 `json:"fatMassKg"`
	LeanMassKg              *float64 `json:"leanMassKg"`
	SkinfoldSumMm           *float64 `json:"skinfoldSumMm,omitempty"`
}

// Compute derives all metrics from a (validated) measurement record, rounded
// to one decimal.
func Compute(record measurements.Record, sex bodystats.Sex) (Metrics, error) {
	m, err := ComputeRaw(record, sex)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{
		BMI:                     round1(m.BMI),
		EstimatedBodyFatPercent: round1(m.EstimatedBodyFatPercent),
		FatMassKg:               round1(m.FatMassKg),
		LeanMassKg:              round1(m.LeanMassKg),
		SkinfoldSumMm:           round1(m.SkinfoldSumMm),
	}, nil
}

// ComputeRaw is Compute without the output rounding. Deltas between two
// measurements are taken on these values.
func ComputeRaw(record measurements.Record, sex bodystats.Sex) (Metrics, error) {
	bodyFat, err := bodyFatNavy(sex, record.WaistCm, record.NeckCm, record.HeightCm, record.HipCm)
	if err != nil {
		return Metrics{}, err
	}

	m := Metrics{
		BMI:                     bmi(record.WeightKg, record.HeightCm),
		EstimatedBodyFatPercent: bodyFat,
		FatMassKg:               fatMass(record.WeightKg, bodyFat),
		LeanMassKg:              leanMass(record.WeightKg, bodyFat),
	}
	if record.Skinfolds != nil {
		m.SkinfoldSumMm = record.Skinfolds.Sum()
	}

	return m, nil
}

// BMI returns weight / height(m)^2 rounded to one decimal.
func BMI(weightKg, heightCm *float64) *float64 {
	return round1(bmi(weightKg, heightCm))
}

func bmi(weightKg, heightCm *float64) *float64 {
	if !positive(weightKg) || !positive(heightCm) {
		return nil
	}
	h := *heightCm / 100
	v := *weightKg / (h * h)
	return &v
}

// BodyFatNavy estimates the body-fat percentage with the US Navy circumference method.
// Hip is only used (and required) for females.
func BodyFatNavy(sex bodystats.Sex, waistCm, neckCm, heightCm, hipCm *float64) (*float64, error) {
	bf, err := bodyFatNavy(sex, waistCm, neckCm, heightCm, hipCm)
	if err != nil {
		return nil, err
	}
	return round1(bf), nil
}

func bodyFatNavy(sex bodystats.Sex, waistCm, neckCm, heightCm, hipCm *float64) (*float64, error) {
	if !sex.IsValid() {
		return nil, bodystats.NewValidationError("sex", "unsupported value ["+sex.String()+"] for the navy formula")
	}
	if !positive(waistCm) || !positive(neckCm) || !positive(heightCm) {
		return nil, nil
	}

	var density float64
	switch sex {
	case bodystats.SexMale:
		logArg := *waistCm - *neckCm
		if logArg <= 0 {
			return nil, nil
		}
		density = 1.0324 - 0.19077*math.Log10(logArg) + 0.15456*math.Log10(*heightCm)
	case bodystats.SexFemale:
		if !positive(hipCm) {
			return nil, nil
		}
		logArg := *waistCm + *hipCm - *neckCm
		if logArg <= 0 {
			return nil, nil
		}
		density = 1.29579 - 0.35004*math.Log10(logArg) + 0.22100*math.Log10(*heightCm)
	}
	if density <= 0 {
		return nil, nil
	}

	bf := math.Max(0, 495/density-450)
	return &bf, nil
}

// FatMassKg returns weight * bodyFatPercent / 100, rounded to one decimal.
func FatMassKg(weightKg, bodyFatPercent *float64) *float64 {
	return round1(fatMass(weightKg, bodyFatPercent))
}

// LeanMassKg returns weight - fat mass, rounded to one decimal.
func LeanMassKg(weightKg, bodyFatPercent *float64) *float64 {
	return round1(leanMass(weightKg, bodyFatPercent))
}

func fatMass(weightKg, bodyFatPercent *float64) *float64 {
	if !positive(weightKg) || !positive(bodyFatPercent) {
		return nil
	}
	fm := *weightKg * *bodyFatPercent / 100
	return &fm
}

func leanMass(weightKg, bodyFatPercent *float64) *float64 {
	fm := fatMass(weightKg, bodyFatPercent)
	if fm == nil {
		return nil
	}
	lm := *weightKg - *fm
	return &lm
}

func positive(v *float64) bool {
	return v != nil && *v > 0 && !math.IsInf(*v, 0) && !math.IsNaN(*v)
}

func round1(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*10) / 10
	return &r
}
