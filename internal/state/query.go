package state

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/verte-zerg/liftcalc/internal/formula"
	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/units"
)

// Share link query parameters.
const (
	ParamWeight = "w"
	ParamReps   = "r"
	ParamUnit   = "unit"
	ParamBar    = "bar"
	ParamPlates = "plates"
)

// ParseQuery extracts an Override from share link parameters. Each invalid
// parameter is dropped on its own; the returned error lists what was dropped and
// never invalidates the Override.
func ParseQuery(q url.Values) (Override, error) {
	var o Override
	var errs error

	if raw, ok := lookup(q, ParamWeight); ok {
		if w, err := parsePositive(raw); err == nil {
			o.Weight = &w
		} else {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", ParamWeight, err))
		}
	}
	if raw, ok := lookup(q, ParamReps); ok {
		r, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = multierr.Append(errs, fmt.Errorf("%s: invalid integer %q", ParamReps, raw))
		case r < formula.MinReps || r > formula.MaxReps:
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", ParamReps, formula.ErrInvalidReps))
		default:
			o.Reps = &r
		}
	}
	if raw, ok := lookup(q, ParamUnit); ok {
		if raw == string(model.Kilograms) || raw == string(model.Pounds) {
			u := model.Unit(raw)
			o.Unit = &u
		} else {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w %q", ParamUnit, units.ErrUnknownUnit, raw))
		}
	}
	if raw, ok := lookup(q, ParamBar); ok {
		if b, err := parsePositive(raw); err == nil {
			o.Bar = &b
		} else {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", ParamBar, err))
		}
	}
	if raw, ok := lookup(q, ParamPlates); ok {
		if flags, err := parseFlags(raw); err == nil {
			o.PlateFlags = flags
		} else {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", ParamPlates, err))
		}
	}
	return o, errs
}

// ParseURL parses a full share link, a "?query" suffix or a bare query string.
func ParseURL(raw string) (Override, error) {
	raw = strings.TrimSpace(raw)
	query := raw
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		u, err := url.Parse(raw)
		if err != nil {
			return Override{}, fmt.Errorf("invalid share link: %w", err)
		}
		query = u.RawQuery
	}
	// ParseQuery keeps every pair it could decode, so a single bad escape only
	// drops its own parameter.
	q, qerr := url.ParseQuery(query)
	o, err := ParseQuery(q)
	if qerr != nil {
		err = multierr.Append(fmt.Errorf("invalid share link query: %w", qerr), err)
	}
	return o, err
}

// EncodeQuery serializes every share link field of s.
func EncodeQuery(s model.AppState) url.Values {
	q := url.Values{}
	q.Set(ParamWeight, units.Format(s.Weight))
	q.Set(ParamReps, strconv.Itoa(s.Reps))
	q.Set(ParamUnit, string(s.Unit))
	q.Set(ParamBar, units.Format(s.Bar))

	flags := make([]int, len(s.PlateConfig.Plates))
	for i, p := range s.PlateConfig.Plates {
		if p.Available {
			flags[i] = 1
		}
	}
	// json.Marshal of []int cannot fail.
	encoded, _ := json.Marshal(flags)
	q.Set(ParamPlates, url.QueryEscape(string(encoded)))
	return q
}

// ShareURL appends the encoded state to base. An empty base yields "?query".
func ShareURL(base string, s model.AppState) string {
	query := EncodeQuery(s).Encode()
	if base == "" {
		return "?" + query
	}
	u, err := url.Parse(base)
	if err != nil {
		return strings.TrimRight(base, "?") + "?" + query
	}
	u.RawQuery = query
	u.Fragment = ""
	return u.String()
}

func lookup(q url.Values, key string) (string, bool) {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(values[0]), true
}

func parsePositive(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	if v <= 0 {
		return 0, fmt.Errorf("must be greater than 0, got %q", raw)
	}
	return v, nil
}

func parseFlags(raw string) ([]bool, error) {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid encoding %q", raw)
	}
	var items []any
	if err := json.Unmarshal([]byte(decoded), &items); err != nil {
		return nil, fmt.Errorf("expected JSON array of 0/1 flags, got %q", decoded)
	}
	flags := make([]bool, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case bool:
			flags = append(flags, v)
		case float64:
			if v != 0 && v != 1 {
				return nil, fmt.Errorf("flag %v is not 0 or 1", v)
			}
			flags = append(flags, v == 1)
		default:
			return nil, fmt.Errorf("flag %v is not 0 or 1", item)
		}
	}
	return flags, nil
}
