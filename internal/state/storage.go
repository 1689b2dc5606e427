package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/verte-zerg/liftcalc/internal/formula"
	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/units"
)

// StorageKey is the key the persisted state lives under.
const StorageKey = "onerepmax_state"

// KV is the flat key-value store the state is persisted in.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Load reads the persisted state. Absent or unreadable records fall back to
// Default; fields missing from the record keep their default values and fields
// that fail validation are dropped.
func Load(ctx context.Context, kv KV) model.AppState {
	raw, ok, err := kv.Get(ctx, StorageKey)
	if err != nil {
		log.Warnf("failed to load state, using defaults: %v", err)
		return Default()
	}
	if !ok {
		log.Debugln("no stored state, using defaults")
		return Default()
	}
	o, err := decodeRecord([]byte(raw))
	if err != nil && o.IsEmpty() {
		log.Warnf("stored state is malformed, using defaults: %v", err)
		return Default()
	}
	if err != nil {
		for _, ferr := range multierr.Errors(err) {
			log.Warnf("dropping stored field: %v", ferr)
		}
	}
	return Reconcile(Default(), o)
}

// Save persists s under StorageKey.
func Save(ctx context.Context, kv KV, s model.AppState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := kv.Put(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Clear removes the persisted state.
func Clear(ctx context.Context, kv KV) error {
	if err := kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

var errNotObject = errors.New("stored state is not a JSON object")

// decodeRecord validates each field of a stored record independently.
func decodeRecord(data []byte) (Override, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Override{}, fmt.Errorf("%w: %v", errNotObject, err)
	}
	if fields == nil {
		return Override{}, errNotObject
	}

	var o Override
	var errs error
	fail := func(name string, err error) {
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
	}

	if raw, ok := fields["weight"]; ok {
		var w float64
		if err := json.Unmarshal(raw, &w); err != nil {
			fail("weight", err)
		} else if !positive(w) {
			fail("weight", fmt.Errorf("must be greater than 0"))
		} else {
			o.Weight = &w
		}
	}
	if raw, ok := fields["reps"]; ok {
		var r int
		if err := json.Unmarshal(raw, &r); err != nil {
			fail("reps", err)
		} else if r < formula.MinReps || r > formula.MaxReps {
			fail("reps", fmt.Errorf("out of range: %d", r))
		} else {
			o.Reps = &r
		}
	}
	if raw, ok := fields["unit"]; ok {
		var u model.Unit
		if err := json.Unmarshal(raw, &u); err != nil {
			fail("unit", err)
		} else if !units.Valid(u) {
			fail("unit", fmt.Errorf("%w %q", units.ErrUnknownUnit, u))
		} else {
			o.Unit = &u
		}
	}
	if raw, ok := fields["bar"]; ok {
		var b float64
		if err := json.Unmarshal(raw, &b); err != nil {
			fail("bar", err)
		} else if !positive(b) {
			fail("bar", fmt.Errorf("must be greater than 0"))
		} else {
			o.Bar = &b
		}
	}
	if raw, ok := fields["plateConfig"]; ok {
		var cfg model.PlateConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			fail("plateConfig", err)
		} else if err := validatePlateConfig(cfg); err != nil {
			fail("plateConfig", err)
		} else {
			o.PlateConfig = &cfg
		}
	}
	if raw, ok := fields["lastCalculation"]; ok && string(raw) != "null" {
		var rec model.CalculationRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			fail("lastCalculation", err)
		} else if err := validateRecord(rec); err != nil {
			fail("lastCalculation", err)
		} else {
			o.LastCalculation = &rec
		}
	}
	return o, errs
}

func validatePlateConfig(cfg model.PlateConfig) error {
	if !units.Valid(cfg.Unit) {
		return fmt.Errorf("%w %q", units.ErrUnknownUnit, cfg.Unit)
	}
	seen := map[float64]bool{}
	for _, p := range cfg.Plates {
		if !positive(p.Weight) {
			return fmt.Errorf("plate weight must be greater than 0")
		}
		if seen[p.Weight] {
			return fmt.Errorf("duplicate plate weight %s", units.Format(p.Weight))
		}
		seen[p.Weight] = true
	}
	return nil
}

func validateRecord(rec model.CalculationRecord) error {
	if !positive(rec.Weight) || !positive(rec.Best1RM) {
		return fmt.Errorf("weight and best1RM must be greater than 0")
	}
	if rec.Reps < 1 {
		return fmt.Errorf("reps must be at least 1")
	}
	if !units.Valid(rec.Unit) {
		return fmt.Errorf("%w %q", units.ErrUnknownUnit, rec.Unit)
	}
	return nil
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
