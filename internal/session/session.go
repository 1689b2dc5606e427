// Package session owns the calculator state for one interactive user.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/verte-zerg/liftcalc/internal/formula"
	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/plates"
	"github.com/verte-zerg/liftcalc/internal/report"
	"github.com/verte-zerg/liftcalc/internal/state"
	"github.com/verte-zerg/liftcalc/internal/units"
	"github.com/verte-zerg/liftcalc/internal/warmup"
)

// ErrNothingToShare is returned by ShareText before any calculation.
var ErrNothingToShare = errors.New("no calculation to share")

// Options configures a Session.
type Options struct {
	Formulas []model.Formula
	ShareURL string
}

// Session is the single writer of the persisted AppState. It is not safe for
// concurrent use.
type Session struct {
	kv       state.KV
	formulas []model.Formula
	shareURL string
	state    model.AppState
}

// Open loads the persisted state, applies override and persists the result.
func Open(ctx context.Context, kv state.KV, opts Options, override state.Override) *Session {
	formulas := opts.Formulas
	if len(formulas) == 0 {
		formulas = model.AllFormulas
	}
	s := &Session{
		kv:       kv,
		formulas: append([]model.Formula(nil), formulas...),
		shareURL: opts.ShareURL,
	}
	s.state = state.Reconcile(state.Load(ctx, kv), override)
	if !override.IsEmpty() {
		s.persist(ctx)
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Session) State() model.AppState {
	return s.state.Clone()
}

// Formulas returns the enabled estimators.
func (s *Session) Formulas() []model.Formula {
	return append([]model.Formula(nil), s.formulas...)
}

// Calculate validates the inputs, estimates the 1RM, records it and persists.
func (s *Session) Calculate(ctx context.Context, weight float64, reps int) (model.Calculation, error) {
	calc, err := Evaluate(s.state, s.formulas, weight, reps)
	if err != nil {
		return model.Calculation{}, err
	}
	s.state.Weight = weight
	s.state.Reps = reps
	rec := calc.Input
	s.state.LastCalculation = &rec
	s.persist(ctx)

	log.WithFields(log.Fields{
		"weight": weight,
		"reps":   reps,
		"unit":   s.state.Unit,
		"best":   calc.Result.Best,
	}).Info("calculated 1RM")
	return calc, nil
}

// CalculateRaw parses raw form values before calling Calculate.
func (s *Session) CalculateRaw(ctx context.Context, weightText, repsText string) (model.Calculation, error) {
	weight, err := ParseWeight(weightText)
	if err != nil {
		return model.Calculation{}, err
	}
	reps, err := strconv.Atoi(strings.TrimSpace(repsText))
	if err != nil {
		return model.Calculation{}, formula.ErrInvalidReps
	}
	return s.Calculate(ctx, weight, reps)
}

// Last recomputes the most recent calculation, if any. A calculation made in
// another unit is converted to the current one so the warm-up matches the plates.
func (s *Session) Last() (model.Calculation, bool) {
	rec := s.state.LastCalculation
	if rec == nil {
		return model.Calculation{}, false
	}
	weight := units.Convert(rec.Weight, rec.Unit, s.state.Unit)
	calc, err := Evaluate(s.state, s.formulas, weight, rec.Reps)
	if err != nil {
		log.Warnf("discarding last calculation: %v", err)
		return model.Calculation{}, false
	}
	return calc, true
}

// Evaluate validates a set and derives its estimate, percentage table and
// warm-up in the unit and plate inventory of st. It does not modify st.
func Evaluate(st model.AppState, formulas []model.Formula, weight float64, reps int) (model.Calculation, error) {
	warning, err := formula.Validate(weight, reps)
	if err != nil {
		return model.Calculation{}, err
	}
	if len(formulas) == 0 {
		formulas = model.AllFormulas
	}
	result := formula.Estimate(weight, reps, formulas)
	return model.Calculation{
		Input: model.CalculationRecord{
			Weight:  weight,
			Reps:    reps,
			Unit:    st.Unit,
			Best1RM: result.Best,
		},
		Result:      result,
		Formulas:    append([]model.Formula(nil), formulas...),
		Warning:     warning,
		Percentages: formula.PercentageTable(result.Best),
		Warmup:      warmup.Plan(result.Best, st.Unit, st.PlateConfig),
	}, nil
}

// Warmup plans a warm-up toward an arbitrary working weight.
func (s *Session) Warmup(workingWeight float64) (model.WarmupPlan, error) {
	if !(workingWeight > 0) || math.IsInf(workingWeight, 0) {
		return model.WarmupPlan{}, formula.ErrInvalidWeight
	}
	return warmup.Plan(workingWeight, s.state.Unit, s.state.PlateConfig), nil
}

// Plates allocates plates for a target total weight.
func (s *Session) Plates(target float64) model.PlateResult {
	return plates.Allocate(target, s.state.PlateConfig)
}

// SetUnit switches units, converting the weight and resetting bar and plates.
func (s *Session) SetUnit(ctx context.Context, unit model.Unit) {
	if unit == s.state.Unit {
		return
	}
	s.state = state.ChangeUnit(s.state, unit)
	s.persist(ctx)
}

// SetBar changes the bar weight.
func (s *Session) SetBar(ctx context.Context, bar float64) error {
	if !(bar > 0) || math.IsInf(bar, 0) {
		return fmt.Errorf("bar weight must be greater than 0")
	}
	s.state = state.SetBar(s.state, bar)
	s.persist(ctx)
	return nil
}

// CycleBar moves to the next bar preset for the current unit.
func (s *Session) CycleBar(ctx context.Context) {
	bars := plates.AvailableBars(s.state.Unit)
	next := bars[0]
	for i, b := range bars {
		if b == s.state.Bar {
			next = bars[(i+1)%len(bars)]
			break
		}
	}
	// next is always positive
	_ = s.SetBar(ctx, next)
}

// SetPlateAvailable toggles one plate of the inventory.
func (s *Session) SetPlateAvailable(ctx context.Context, index int, available bool) error {
	cfg, err := plates.SetAvailability(s.state.PlateConfig, index, available)
	if err != nil {
		return err
	}
	s.state.PlateConfig = cfg
	s.persist(ctx)
	return nil
}

// SetInputs stores form values without calculating.
func (s *Session) SetInputs(weight float64, reps int) {
	s.state.Weight = weight
	s.state.Reps = reps
}

// Reset clears the persisted state and returns to defaults.
func (s *Session) Reset(ctx context.Context) error {
	if err := state.Clear(ctx, s.kv); err != nil {
		return err
	}
	s.state = state.Default()
	return nil
}

// ShareURL returns a link encoding the current state.
func (s *Session) ShareURL() string {
	return state.ShareURL(s.shareURL, s.state)
}

// ShareText summarizes the last calculation for pasting.
func (s *Session) ShareText() (string, error) {
	if s.state.LastCalculation == nil {
		return "", ErrNothingToShare
	}
	return report.ShareText(*s.state.LastCalculation), nil
}

func (s *Session) persist(ctx context.Context) {
	if err := state.Save(ctx, s.kv, s.state); err != nil {
		log.Warnf("failed to persist state: %v", err)
	}
}

// ParseWeight parses a raw weight value.
func ParseWeight(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, formula.ErrInvalidWeight
	}
	return v, nil
}
