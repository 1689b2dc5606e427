// Package plates computes per-side plate loading for a barbell.
package plates

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/units"
)

// ErrPlateIndex is returned when a plate index is outside the inventory.
var ErrPlateIndex = errors.New("plate index out of range")

var defaultPlates = map[model.Unit][]float64{
	model.Kilograms: {25, 20, 15, 10, 5, 2.5, 1.25, 0.5},
	model.Pounds:    {55, 45, 35, 25, 10, 5, 2.5},
}

var availableBars = map[model.Unit][]float64{
	model.Kilograms: {20, 15, 10},
	model.Pounds:    {45, 35, 15},
}

// Defaults returns the standard bar and plate inventory for a unit, all plates available.
func Defaults(unit model.Unit) model.PlateConfig {
	weights, ok := defaultPlates[unit]
	if !ok {
		unit = model.Kilograms
		weights = defaultPlates[unit]
	}
	cfg := model.PlateConfig{
		Unit:   unit,
		Bar:    DefaultBar(unit),
		Plates: make([]model.Plate, 0, len(weights)),
	}
	for _, w := range weights {
		cfg.Plates = append(cfg.Plates, model.Plate{Weight: w, Available: true})
	}
	return cfg
}

// DefaultBar returns the standard bar weight for a unit.
func DefaultBar(unit model.Unit) float64 {
	if unit == model.Pounds {
		return 45
	}
	return 20
}

// AvailableBars lists the bar presets for a unit.
func AvailableBars(unit model.Unit) []float64 {
	bars, ok := availableBars[unit]
	if !ok {
		bars = availableBars[model.Kilograms]
	}
	return append([]float64(nil), bars...)
}

// Allocate loads target onto the bar greedily, largest plate first, using each
// available denomination at most once per side. It does not backtrack, so a
// remainder can be left even when an exact combination exists.
//
// A target at or below the bar yields no plates, the bar as total and the total
// shortfall as remainder.
func Allocate(target float64, cfg model.PlateConfig) model.PlateResult {
	perSide := (target - cfg.Bar) / 2
	if perSide <= 0 {
		return model.PlateResult{
			Plates:    []model.Plate{},
			Total:     cfg.Bar,
			Remainder: cfg.Bar - target,
		}
	}

	available := make([]model.Plate, 0, len(cfg.Plates))
	for _, p := range cfg.Plates {
		if p.Available && p.Weight > 0 {
			available = append(available, p)
		}
	}
	sort.SliceStable(available, func(i, j int) bool {
		return available[i].Weight > available[j].Weight
	})

	selected := []model.Plate{}
	total := cfg.Bar
	for _, p := range available {
		if perSide >= p.Weight {
			selected = append(selected, p)
			perSide -= p.Weight
			total += p.Weight * 2
		}
	}

	remainder := units.Round(perSide, cfg.Unit)
	if remainder < 0 {
		remainder = 0
	}
	return model.PlateResult{
		Plates:    selected,
		Total:     total,
		Remainder: remainder,
	}
}

// SetAvailability returns a copy of cfg with one plate toggled.
func SetAvailability(cfg model.PlateConfig, index int, available bool) (model.PlateConfig, error) {
	if index < 0 || index >= len(cfg.Plates) {
		return cfg, fmt.Errorf("%w: %d (have %d plates)", ErrPlateIndex, index, len(cfg.Plates))
	}
	out := cfg.Clone()
	out.Plates[index].Available = available
	return out, nil
}

// IsValidTarget reports whether target needs any plates at all.
func IsValidTarget(target float64, cfg model.PlateConfig) bool {
	return target > cfg.Bar
}

// Hint explains why a target cannot be loaded, or returns "".
func Hint(target float64, cfg model.PlateConfig) string {
	if IsValidTarget(target, cfg) {
		return ""
	}
	return fmt.Sprintf("Weight must be greater than bar weight (%s)", units.FormatWithUnit(cfg.Bar, cfg.Unit))
}

// Describe renders an allocation as loading instructions.
func Describe(result model.PlateResult, cfg model.PlateConfig) string {
	bar := units.FormatWithUnit(cfg.Bar, cfg.Unit) + " bar"
	if len(result.Plates) == 0 {
		return bar
	}
	parts := make([]string, 0, len(result.Plates))
	for _, p := range result.Plates {
		parts = append(parts, units.FormatWithUnit(p.Weight, cfg.Unit))
	}
	return bar + " + " + strings.Join(parts, " + ") + " per side"
}
