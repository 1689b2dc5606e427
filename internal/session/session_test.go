package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/liftcalc/internal/formula"
	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/state"
	"github.com/verte-zerg/liftcalc/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "liftcalc.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestOpenDefaults(t *testing.T) {
	s := Open(context.Background(), openStore(t), Options{}, state.Override{})
	assert.Equal(t, state.Default(), s.State())
	assert.Equal(t, model.AllFormulas, s.Formulas())
	_, ok := s.Last()
	assert.False(t, ok)
}

func TestOpenAppliesAndPersistsOverride(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	o, err := state.ParseURL("?w=150&r=3")
	require.NoError(t, err)

	s := Open(ctx, st, Options{}, o)
	assert.Equal(t, 150.0, s.State().Weight)

	reopened := Open(ctx, st, Options{}, state.Override{})
	assert.Equal(t, 150.0, reopened.State().Weight)
	assert.Equal(t, 3, reopened.State().Reps)
}

func TestCalculatePersistsRecord(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	s := Open(ctx, st, Options{}, state.Override{})

	calc, err := s.Calculate(ctx, 100, 5)
	require.NoError(t, err)
	assert.Empty(t, calc.Warning)
	assert.InDelta(t, 116.6667, calc.Result.Best, 1e-3)
	assert.Len(t, calc.Percentages, 9)
	assert.Len(t, calc.Warmup.Sets, 5)
	assert.Equal(t, calc.Result.Best, calc.Warmup.WorkingWeight)

	reopened := Open(ctx, st, Options{}, state.Override{})
	rec := reopened.State().LastCalculation
	require.NotNil(t, rec)
	assert.Equal(t, model.CalculationRecord{Weight: 100, Reps: 5, Unit: model.Kilograms, Best1RM: calc.Result.Best}, *rec)

	last, ok := reopened.Last()
	require.True(t, ok)
	assert.Equal(t, calc.Result, last.Result)
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, openStore(t), Options{}, state.Override{})

	_, err := s.Calculate(ctx, 0, 5)
	require.ErrorIs(t, err, formula.ErrInvalidWeight)
	_, err = s.Calculate(ctx, 100, 21)
	require.ErrorIs(t, err, formula.ErrInvalidReps)
	assert.Nil(t, s.State().LastCalculation)
}

func TestCalculateSoftWarning(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, openStore(t), Options{}, state.Override{})
	calc, err := s.Calculate(ctx, 80, 15)
	require.NoError(t, err)
	assert.Equal(t, formula.AccuracyWarning, calc.Warning)
}

func TestCalculateRaw(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, openStore(t), Options{Formulas: []model.Formula{model.Brzycki}}, state.Override{})

	calc, err := s.CalculateRaw(ctx, " 100 ", "5")
	require.NoError(t, err)
	assert.Equal(t, 112.5, calc.Result.Best)

	_, err = s.CalculateRaw(ctx, "heavy", "5")
	require.ErrorIs(t, err, formula.ErrInvalidWeight)
	_, err = s.CalculateRaw(ctx, "100", "")
	require.ErrorIs(t, err, formula.ErrInvalidReps)
}

func TestSetUnitKeepsInvariant(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	s := Open(ctx, st, Options{}, state.Override{})
	_, err := s.Calculate(ctx, 100, 5)
	require.NoError(t, err)

	s.SetUnit(ctx, model.Pounds)
	got := s.State()
	assert.Equal(t, model.Pounds, got.Unit)
	assert.Equal(t, got.Unit, got.PlateConfig.Unit)
	assert.Equal(t, got.Bar, got.PlateConfig.Bar)
	assert.Equal(t, 45.0, got.Bar)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, model.Pounds, last.Warmup.Unit)
	assert.Equal(t, 45.0, last.Warmup.Sets[0].Weight)
	assert.InDelta(t, 116.6667*2.20462262185, last.Result.Best, 1e-3)

	assert.Equal(t, model.Pounds, Open(ctx, st, Options{}, state.Override{}).State().Unit)
}

func TestBarAndPlates(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, openStore(t), Options{}, state.Override{})

	s.CycleBar(ctx)
	assert.Equal(t, 15.0, s.State().Bar)
	s.CycleBar(ctx)
	s.CycleBar(ctx)
	assert.Equal(t, 20.0, s.State().Bar)

	require.Error(t, s.SetBar(ctx, 0))
	require.NoError(t, s.SetBar(ctx, 10))
	assert.Equal(t, 10.0, s.State().PlateConfig.Bar)

	require.NoError(t, s.SetPlateAvailable(ctx, 2, false))
	assert.False(t, s.State().PlateConfig.Plates[2].Available)
	require.Error(t, s.SetPlateAvailable(ctx, 99, false))

	res := s.Plates(130)
	assert.Equal(t, 130.0, res.Total)
	assert.Equal(t, 0.0, res.Remainder)
}

func TestWarmup(t *testing.T) {
	s := Open(context.Background(), openStore(t), Options{}, state.Override{})
	plan, err := s.Warmup(100)
	require.NoError(t, err)
	assert.Len(t, plan.Sets, 5)

	_, err = s.Warmup(0)
	require.ErrorIs(t, err, formula.ErrInvalidWeight)
}

func TestResetAndShare(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	s := Open(ctx, st, Options{ShareURL: "https://lift.example/"}, state.Override{})
	_, err := s.Calculate(ctx, 120, 3)
	require.NoError(t, err)

	link := s.ShareURL()
	o, err := state.ParseURL(link)
	require.NoError(t, err)
	assert.Equal(t, 120.0, *o.Weight)

	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, state.Default(), s.State())
	assert.Equal(t, state.Default(), Open(ctx, st, Options{}, state.Override{}).State())
}

func TestParseWeight(t *testing.T) {
	w, err := ParseWeight("61.25")
	require.NoError(t, err)
	assert.Equal(t, 61.25, w)
	for _, bad := range []string{"", "0", "-3", "NaN", "Inf", "ten"} {
		_, err := ParseWeight(bad)
		require.ErrorIs(t, err, formula.ErrInvalidWeight, bad)
	}
}

func TestShareText(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, openStore(t), Options{}, state.Override{})

	_, err := s.ShareText()
	assert.ErrorIs(t, err, ErrNothingToShare)

	_, err = s.Calculate(ctx, 100, 5)
	require.NoError(t, err)
	text, err := s.ShareText()
	require.NoError(t, err)
	assert.Contains(t, text, "• Weight: 100 kg × 5 reps")
	assert.Contains(t, text, "• Estimated 1RM: 116.5 kg")
}

func TestEvaluateUsesStateUnitAndPlates(t *testing.T) {
	st := state.ChangeUnit(state.Default(), model.Pounds)
	calc, err := Evaluate(st, nil, 225, 5)
	require.NoError(t, err)
	assert.Equal(t, model.Pounds, calc.Input.Unit)
	assert.Equal(t, model.AllFormulas, calc.Formulas)
	assert.Equal(t, 45.0, calc.Warmup.Sets[0].Weight)

	_, err = Evaluate(st, nil, 225, 0)
	assert.ErrorIs(t, err, formula.ErrInvalidReps)
}
