// Package units converts and rounds weights.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/liftcalc/internal/model"
)

// KgToLb is the exact conversion factor from kilograms to pounds.
const KgToLb = 2.20462262185

// ErrUnknownUnit is returned for unit strings other than kg or lb.
var ErrUnknownUnit = errors.New("unknown unit")

// Convert converts a weight between units.
func Convert(weight float64, from, to model.Unit) float64 {
	if from == to {
		return weight
	}
	if from == model.Kilograms && to == model.Pounds {
		return weight * KgToLb
	}
	return weight / KgToLb
}

// Round rounds a weight for display: kg to the nearest 0.5, lb to the nearest 1.
// Exact halves round up (100.5 lb -> 101).
func Round(weight float64, unit model.Unit) float64 {
	if unit == model.Kilograms {
		return roundHalfUp(weight*2) / 2
	}
	return roundHalfUp(weight)
}

// RoundWhole rounds to the nearest whole number with halves rounding up.
func RoundWhole(weight float64) float64 {
	return roundHalfUp(weight)
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// ParseUnit parses "kg" or "lb".
func ParseUnit(s string) (model.Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(model.Kilograms):
		return model.Kilograms, nil
	case string(model.Pounds):
		return model.Pounds, nil
	default:
		return "", fmt.Errorf("%w %q (expected kg or lb)", ErrUnknownUnit, s)
	}
}

// Valid reports whether u is a supported unit.
func Valid(u model.Unit) bool {
	return u == model.Kilograms || u == model.Pounds
}

// Format renders a weight with the shortest exact decimal form.
func Format(weight float64) string {
	return strconv.FormatFloat(weight, 'f', -1, 64)
}

// FormatWithUnit renders a weight followed by its unit.
func FormatWithUnit(weight float64, unit model.Unit) string {
	return Format(weight) + " " + string(unit)
}
