package measurements

import (
	"fmt"
	"math"
	"time"

	"github.com/2beens/coachstats/internal/bodystats"
)

// Skinfolds holds the optional skin-fold caliper readings, in millimeters.
type Skinfolds struct {
	Triceps     *float64 `json:"triceps,omitempty"`
	Subscapular *float64 `json:"subscapular,omitempty"`
	Suprailiac  *float64 `json:"suprailiac,omitempty"`
	Abdominal   *float64 `json:"abdominal,omitempty"`
	Thigh       *float64 `json:"thigh,omitempty"`
	Chest       *float64 `json:"chest,omitempty"`
	Midaxillary *float64 `json:"midaxillary,omitempty"`
}

func (s *Skinfolds) fields() map[string]*float64 {
	return map[string]*float64{
		"skinfolds.triceps":     s.Triceps,
		"skinfolds.subscapular": s.Subscapular,
		"skinfolds.suprailiac":  s.Suprailiac,
		"skinfolds.abdominal":   s.Abdominal,
		"skinfolds.thigh":       s.Thigh,
		"skinfolds.chest":       s.Chest,
		"skinfolds.midaxillary": s.Midaxillary,
	}
}

// Sum returns the sum of all present skinfold readings, or nil if none is present.
func (s *Skinfolds) Sum() *float64 {
	if s == nil {
		return nil
	}
	var sum float64
	present := 0
	for _, v := range s.fields() {
		if v == nil {
			continue
		}
		sum += *v
		present++
	}
	if present == 0 {
		return nil
	}
	return &sum
}

// Record is a point-in-time anthropometric snapshot of one subject.
// Weight is in kilos, circumferences and height in centimeters.
// A nil field means "unknown", it is never treated as zero.
type Record struct {
	ID           int        `json:"id"`
	SubjectID    string     `json:"subjectId"`
	MeasuredAt   time.Time  `json:"measuredAt"`
	WeightKg     *float64   `json:"weightKg,omitempty"`
	HeightCm     *float64   `json:"heightCm,omitempty"`
	NeckCm       *float64   `json:"neckCm,omitempty"`
	ChestCm      *float64   `json:"chestCm,omitempty"`
	WaistCm      *float64   `json:"waistCm,omitempty"`
	HipCm        *float64   `json:"hipCm,omitempty"`
	ArmCm        *float64   `json:"armCm,omitempty"`
	ThighCm      *float64   `json:"thighCm,omitempty"`
	CalfCm       *float64   `json:"calfCm,omitempty"`
	MuscleMassKg *float64   `json:"muscleMassKg,omitempty"`
	Skinfolds    *Skinfolds `json:"skinfolds,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Date makes Record usable with the timeline organizer.
func (r Record) Date() time.Time {
	return r.MeasuredAt
}

// Day returns the calendar day the record was taken on, in UTC.
func (r Record) Day() time.Time {
	y, m, d := r.MeasuredAt.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r Record) numericFields() []struct {
	name  string
	value *float64
} {
	return []struct {
		name  string
		value *float64
	}{
		{"weightKg", r.WeightKg},
		{"heightCm", r.HeightCm},
		{"neckCm", r.NeckCm},
		{"chestCm", r.ChestCm},
		{"waistCm", r.WaistCm},
		{"hipCm", r.HipCm},
		{"armCm", r.ArmCm},
		{"thighCm", r.ThighCm},
		{"calfCm", r.CalfCm},
		{"muscleMassKg", r.MuscleMassKg},
	}
}

// Validate checks a single raw entry. Present values must be finite and strictly positive,
// absent ones are left absent.
func (r Record) Validate() error {
	if r.SubjectID == "" {
		return bodystats.NewValidationError("subjectId", "empty")
	}
	if r.MeasuredAt.IsZero() {
		return bodystats.NewValidationError("measuredAt", "empty")
	}

	for _, f := range r.numericFields() {
		if err := checkPositive(f.name, f.value); err != nil {
			return err
		}
	}

	if r.Skinfolds != nil {
		for name, v := range r.Skinfolds.fields() {
			if err := checkPositive(name, v); err != nil {
				return err
			}
		}
	}

	return nil
}

func checkPositive(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return bodystats.NewValidationError(name, fmt.Sprintf("must be a finite number, got %v", *v))
	}
	if *v <= 0 {
		return bodystats.NewValidationError(name, fmt.Sprintf("must be > 0, got %v", *v))
	}
	return nil
}

// ValidateHistory checks that all records are valid, belong to the same subject
// and that no two of them share a calendar day.
func ValidateHistory(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	subjectID := records[0].SubjectID
	days := make(map[time.Time]int, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if r.SubjectID != subjectID {
			return bodystats.NewValidationError(
				"subjectId",
				fmt.Sprintf("mixed subjects [%s] and [%s]", subjectID, r.SubjectID),
			)
		}
		day := r.Day()
		if prev, ok := days[day]; ok {
			return bodystats.NewValidationError(
				"measuredAt",
				fmt.Sprintf("records %d and %d share the date %s", prev, i, day.Format("2006-01-02")),
			)
		}
		days[day] = i
	}

	return nil
}
