// Package model defines shared data structures.
package model

// Unit is a weight unit.
type Unit string

// Supported units.
const (
	Kilograms Unit = "kg"
	Pounds    Unit = "lb"
)

// Formula names a 1RM estimator.
type Formula string

// Supported formulas.
const (
	Epley    Formula = "epley"
	Brzycki  Formula = "brzycki"
	Lombardi Formula = "lombardi"
)

// AllFormulas lists every estimator in display order.
var AllFormulas = []Formula{Epley, Brzycki, Lombardi}

// Plate is a single plate denomination and whether it can be loaded.
type Plate struct {
	Weight    float64 `json:"weight" yaml:"weight"`
	Available bool    `json:"available" yaml:"available"`
}

// PlateConfig describes the bar and the plate inventory.
type PlateConfig struct {
	Unit   Unit    `json:"unit" yaml:"unit"`
	Bar    float64 `json:"bar" yaml:"bar"`
	Plates []Plate `json:"plates" yaml:"plates"`
}

// Clone returns a deep copy of the config.
func (c PlateConfig) Clone() PlateConfig {
	out := c
	out.Plates = append([]Plate(nil), c.Plates...)
	return out
}

// PlateResult is the outcome of a per-side plate allocation.
type PlateResult struct {
	Plates    []Plate `json:"plates" yaml:"plates"`
	Total     float64 `json:"total" yaml:"total"`
	Remainder float64 `json:"remainder" yaml:"remainder"`
}

// CalculationResult holds every estimate and the aggregate.
type CalculationResult struct {
	Epley    float64 `json:"epley" yaml:"epley"`
	Brzycki  float64 `json:"brzycki" yaml:"brzycki"`
	Lombardi float64 `json:"lombardi" yaml:"lombardi"`
	Best     float64 `json:"best" yaml:"best"`
}

// Value returns the estimate for a formula.
func (r CalculationResult) Value(f Formula) float64 {
	switch f {
	case Epley:
		return r.Epley
	case Brzycki:
		return r.Brzycki
	case Lombardi:
		return r.Lombardi
	default:
		return 0
	}
}

// CalculationRecord is the last submitted calculation.
type CalculationRecord struct {
	Weight  float64 `json:"weight" yaml:"weight"`
	Reps    int     `json:"reps" yaml:"reps"`
	Unit    Unit    `json:"unit" yaml:"unit"`
	Best1RM float64 `json:"best1RM" yaml:"best1RM"`
}

// AppState is the canonical calculator state.
type AppState struct {
	Weight          float64            `json:"weight" yaml:"weight"`
	Reps            int                `json:"reps" yaml:"reps"`
	Unit            Unit               `json:"unit" yaml:"unit"`
	Bar             float64            `json:"bar" yaml:"bar"`
	PlateConfig     PlateConfig        `json:"plateConfig" yaml:"plateConfig"`
	LastCalculation *CalculationRecord `json:"lastCalculation,omitempty" yaml:"lastCalculation,omitempty"`
}

// Clone returns a deep copy of the state.
func (s AppState) Clone() AppState {
	out := s
	out.PlateConfig = s.PlateConfig.Clone()
	if s.LastCalculation != nil {
		rec := *s.LastCalculation
		out.LastCalculation = &rec
	}
	return out
}

// WarmupSet is one stage of a warm-up plan.
type WarmupSet struct {
	Percentage  int          `json:"percentage" yaml:"percentage"`
	Reps        int          `json:"reps" yaml:"reps"`
	Weight      float64      `json:"weight" yaml:"weight"`
	Plates      string       `json:"plates" yaml:"plates"`
	Description string       `json:"description" yaml:"description"`
	Allocation  *PlateResult `json:"allocation,omitempty" yaml:"allocation,omitempty"`
}

// WarmupPlan is an ordered set of warm-up stages.
type WarmupPlan struct {
	Sets          []WarmupSet `json:"sets" yaml:"sets"`
	WorkingWeight float64     `json:"workingWeight" yaml:"workingWeight"`
	Unit          Unit        `json:"unit" yaml:"unit"`
}

// PercentageRow is one row of the training percentage table.
type PercentageRow struct {
	Percent     int     `json:"percent" yaml:"percent"`
	Reps        string  `json:"reps" yaml:"reps"`
	Description string  `json:"description" yaml:"description"`
	Weight      float64 `json:"weight" yaml:"weight"`
}

// Calculation is the full result of one 1RM calculation.
type Calculation struct {
	Input       CalculationRecord `json:"input" yaml:"input"`
	Result      CalculationResult `json:"result" yaml:"result"`
	Formulas    []Formula         `json:"formulas" yaml:"formulas"`
	Warning     string            `json:"warning,omitempty" yaml:"warning,omitempty"`
	Percentages []PercentageRow   `json:"percentages" yaml:"percentages"`
	Warmup      WarmupPlan        `json:"warmup" yaml:"warmup"`
}
