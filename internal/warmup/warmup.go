// Package warmup builds warm-up ramps toward a working weight.
package warmup

import (
	"fmt"

	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/plates"
	"github.com/verte-zerg/liftcalc/internal/units"
)

// BarOnly is the plate text for the empty-bar stage.
const BarOnly = "Bar only"

type stage struct {
	percentage  int
	reps        int
	description string
}

var stages = []stage{
	{0, 8, "Empty bar"},
	{40, 5, "Light warm-up"},
	{60, 3, "Moderate warm-up"},
	{75, 2, "Heavy warm-up"},
	{85, 1, "Working weight prep"},
}

// StageCount is the number of sets in every plan.
var StageCount = len(stages)

// Plan generates the warm-up sets for a working weight. Stage weights are rounded
// to whole units before plate allocation.
func Plan(workingWeight float64, unit model.Unit, cfg model.PlateConfig) model.WarmupPlan {
	sets := make([]model.WarmupSet, 0, len(stages))
	for _, st := range stages {
		set := model.WarmupSet{
			Percentage:  st.percentage,
			Reps:        st.reps,
			Description: st.description,
		}
		if st.percentage == 0 {
			set.Weight = cfg.Bar
			set.Plates = BarOnly
		} else {
			set.Weight = units.RoundWhole(workingWeight * float64(st.percentage) / 100)
			alloc := plates.Allocate(set.Weight, cfg)
			set.Plates = plates.Describe(alloc, cfg)
			set.Allocation = &alloc
		}
		sets = append(sets, set)
	}
	return model.WarmupPlan{
		Sets:          sets,
		WorkingWeight: workingWeight,
		Unit:          unit,
	}
}

// FormatSet renders the stage and rep target of a set.
func FormatSet(set model.WarmupSet) string {
	if set.Percentage == 0 {
		return fmt.Sprintf("%d reps", set.Reps)
	}
	return fmt.Sprintf("%d%% × %d reps", set.Percentage, set.Reps)
}
