// Package formula estimates one-repetition maximums.
package formula

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/liftcalc/internal/model"
)

// Input bounds accepted by Validate.
const (
	MinReps      = 1
	MaxReps      = 20
	AccurateReps = 10
)

// AccuracyWarning is reported for valid inputs above AccurateReps.
const AccuracyWarning = "Estimates less accurate at >10 reps"

var (
	// ErrInvalidWeight is returned for non-positive weights.
	ErrInvalidWeight = errors.New("weight must be greater than 0")
	// ErrInvalidReps is returned for reps outside [MinReps, MaxReps].
	ErrInvalidReps = errors.New("reps must be between 1 and 20")
	// ErrUnknownFormula is returned by ParseFormulas.
	ErrUnknownFormula = errors.New("unknown formula")
)

// Epley computes w * (1 + r/30).
func Epley(weight float64, reps int) float64 {
	return weight * (1 + float64(reps)/30)
}

// Brzycki computes w * 36 / (37 - r). At 37 reps or more the denominator would be
// zero or negative, so the weight itself is returned.
func Brzycki(weight float64, reps int) float64 {
	if reps >= 37 {
		return weight
	}
	return weight * (36 / float64(37-reps))
}

// Lombardi computes w * r^0.1.
func Lombardi(weight float64, reps int) float64 {
	return weight * math.Pow(float64(reps), 0.1)
}

// Median returns the median of values, averaging the two central values for even
// counts. It returns 0 for no values and does not modify the input.
func Median(values []float64) float64 {
	switch len(values) {
	case 0:
		return 0
	case 1:
		return values[0]
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Estimate runs every formula and aggregates the enabled ones by median.
// Inputs are not validated; call Validate first.
func Estimate(weight float64, reps int, enabled []model.Formula) model.CalculationResult {
	result := model.CalculationResult{
		Epley:    Epley(weight, reps),
		Brzycki:  Brzycki(weight, reps),
		Lombardi: Lombardi(weight, reps),
	}
	values := make([]float64, 0, len(enabled))
	for _, f := range enabled {
		values = append(values, result.Value(f))
	}
	result.Best = Median(values)
	return result
}

// Validate checks raw inputs. A nil error with a non-empty warning means the
// calculation may proceed but is less accurate.
func Validate(weight float64, reps int) (string, error) {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return "", ErrInvalidWeight
	}
	if reps < MinReps || reps > MaxReps {
		return "", ErrInvalidReps
	}
	if reps > AccurateReps {
		return AccuracyWarning, nil
	}
	return "", nil
}

// ParseFormulas maps formula names to formulas. Duplicates are collapsed and an
// empty list is rejected.
func ParseFormulas(names []string) ([]model.Formula, error) {
	seen := map[model.Formula]bool{}
	out := make([]model.Formula, 0, len(names))
	for _, name := range names {
		f := model.Formula(strings.ToLower(strings.TrimSpace(name)))
		switch f {
		case model.Epley, model.Brzycki, model.Lombardi:
		default:
			return nil, fmt.Errorf("%w %q", ErrUnknownFormula, name)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one formula must be enabled")
	}
	return out, nil
}
