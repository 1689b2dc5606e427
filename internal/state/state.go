// Package state reconciles persisted and link-supplied calculator state.
package state

import (
	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/plates"
	"github.com/verte-zerg/liftcalc/internal/units"
)

// Default values used when nothing has been persisted.
const (
	DefaultWeight = 100
	DefaultReps   = 5
	DefaultUnit   = model.Kilograms
)

// Default returns the base state: 100 kg x 5 on a 20 kg bar with standard plates.
func Default() model.AppState {
	cfg := plates.Defaults(DefaultUnit)
	return model.AppState{
		Weight:      DefaultWeight,
		Reps:        DefaultReps,
		Unit:        DefaultUnit,
		Bar:         cfg.Bar,
		PlateConfig: cfg,
	}
}

// Override holds optional replacements for AppState fields. A nil field is absent.
type Override struct {
	Weight      *float64
	Reps        *int
	Unit        *model.Unit
	Bar         *float64
	PlateConfig *model.PlateConfig
	// PlateFlags are positional availability flags aligned to the default plate
	// ordering of the reconciled unit.
	PlateFlags      []bool
	LastCalculation *model.CalculationRecord
}

// IsEmpty reports whether the override replaces nothing.
func (o Override) IsEmpty() bool {
	return o.Weight == nil && o.Reps == nil && o.Unit == nil && o.Bar == nil &&
		o.PlateConfig == nil && o.PlateFlags == nil && o.LastCalculation == nil
}

// Reconcile applies every present override field to persisted. The plate config
// is then brought back in line with the state's unit and bar.
func Reconcile(persisted model.AppState, o Override) model.AppState {
	out := persisted.Clone()
	if o.Weight != nil {
		out.Weight = *o.Weight
	}
	if o.Reps != nil {
		out.Reps = *o.Reps
	}
	if o.Unit != nil {
		out.Unit = *o.Unit
	}
	if o.Bar != nil {
		out.Bar = *o.Bar
	}
	if o.PlateConfig != nil {
		out.PlateConfig = o.PlateConfig.Clone()
	}
	if o.LastCalculation != nil {
		rec := *o.LastCalculation
		out.LastCalculation = &rec
	}

	if out.PlateConfig.Unit != out.Unit {
		out.PlateConfig.Plates = plates.Defaults(out.Unit).Plates
	}
	if o.PlateFlags != nil {
		out.PlateConfig.Plates = applyFlags(plates.Defaults(out.Unit).Plates, o.PlateFlags)
	}
	out.PlateConfig.Unit = out.Unit
	out.PlateConfig.Bar = out.Bar
	return out
}

func applyFlags(inventory []model.Plate, flags []bool) []model.Plate {
	for i := range inventory {
		if i < len(flags) {
			inventory[i].Available = flags[i]
		}
	}
	return inventory
}

// ChangeUnit switches the state to another unit. The weight is converted and
// rounded to a whole number; bar and plates reset to the unit's defaults.
func ChangeUnit(s model.AppState, unit model.Unit) model.AppState {
	if s.Unit == unit || !units.Valid(unit) {
		return s.Clone()
	}
	out := s.Clone()
	converted := units.Convert(s.Weight, s.Unit, unit)
	out.Weight = units.RoundWhole(converted)
	if out.Weight <= 0 {
		out.Weight = converted
	}
	out.Unit = unit
	out.PlateConfig = plates.Defaults(unit)
	out.Bar = out.PlateConfig.Bar
	return out
}

// SetBar changes the bar weight on both the state and its plate config.
func SetBar(s model.AppState, bar float64) model.AppState {
	out := s.Clone()
	out.Bar = bar
	out.PlateConfig.Bar = bar
	return out
}
