// Package bodystats holds the types shared by the body composition & evolution
// analytics packages: subjects, biological sex and the validation error.
package bodystats

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrValidation = errors.New("validation error")
	// ErrSubjectNotFound is returned by the repos when a record references an unknown subject.
	ErrSubjectNotFound = errors.New("subject not found")
)

// ValidationError is returned when malformed input reaches one of the engine
// boundary functions. It is never coerced into a default value.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: reason,
	}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Sex selects the body-fat formula variant.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return SexMale, nil
	case "female", "f":
		return SexFemale, nil
	default:
		return "", NewValidationError("sex", fmt.Sprintf("unsupported value [%s]", s))
	}
}

func (s Sex) IsValid() bool {
	return s == SexMale || s == SexFemale
}

func (s Sex) String() string {
	return string(s)
}

// Subject is the tracked individual. It is owned by the surrounding application,
// the analytics packages only read it.
type Subject struct {
	ID        string    `json:"id"`
	Sex       Sex       `json:"sex"`
	CreatedAt time.Time `json:"createdAt"`
}

// Float returns a pointer to v, handy for building optional inputs.
func Float(v float64) *float64 {
	return &v
}
