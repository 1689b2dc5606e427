package server

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/verte-zerg/liftcalc/internal/formula"
	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/plates"
	"github.com/verte-zerg/liftcalc/internal/session"
	"github.com/verte-zerg/liftcalc/internal/state"
	"github.com/verte-zerg/liftcalc/internal/warmup"
)

// Query parameters beyond the share link ones.
const (
	paramWorkingWeight = "weight"
	paramTarget        = "target"
)

type errorResponse struct {
	Error string `json:"error"`
}

type calculateResponse struct {
	model.Calculation
	ShareURL string   `json:"shareUrl"`
	Ignored  []string `json:"ignored,omitempty"`
}

type warmupResponse struct {
	model.WarmupPlan
	Ignored []string `json:"ignored,omitempty"`
}

type platesResponse struct {
	Target      float64           `json:"target"`
	Config      model.PlateConfig `json:"config"`
	Result      model.PlateResult `json:"result"`
	Description string            `json:"description,omitempty"`
	Hint        string            `json:"hint,omitempty"`
	Ignored     []string          `json:"ignored,omitempty"`
}

type stateResponse struct {
	State    model.AppState `json:"state"`
	ShareURL string         `json:"shareUrl"`
	Ignored  []string       `json:"ignored,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	o, ignored := s.parseOverride(r)
	if o.Weight == nil {
		writeError(w, http.StatusBadRequest, formula.ErrInvalidWeight.Error())
		return
	}
	if o.Reps == nil {
		writeError(w, http.StatusBadRequest, formula.ErrInvalidReps.Error())
		return
	}
	st := state.Reconcile(s.snapshot, o)
	calc, err := session.Evaluate(st, s.formulas, *o.Weight, *o.Reps)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec := calc.Input
	st.LastCalculation = &rec
	writeJSON(w, http.StatusOK, calculateResponse{
		Calculation: calc,
		ShareURL:    state.ShareURL(s.shareURL, st),
		Ignored:     ignored,
	})
}

func (s *Server) handleWarmup(w http.ResponseWriter, r *http.Request) {
	o, ignored := s.parseOverride(r)
	weight, err := session.ParseWeight(r.URL.Query().Get(paramWorkingWeight))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Please enter a valid working weight")
		return
	}
	st := state.Reconcile(s.snapshot, o)
	writeJSON(w, http.StatusOK, warmupResponse{
		WarmupPlan: warmup.Plan(weight, st.Unit, st.PlateConfig),
		Ignored:    ignored,
	})
}

func (s *Server) handlePlates(w http.ResponseWriter, r *http.Request) {
	o, ignored := s.parseOverride(r)
	target, err := session.ParseWeight(r.URL.Query().Get(paramTarget))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Please enter a valid target weight")
		return
	}
	st := state.Reconcile(s.snapshot, o)
	result := plates.Allocate(target, st.PlateConfig)
	resp := platesResponse{
		Target:  target,
		Config:  st.PlateConfig,
		Result:  result,
		Hint:    plates.Hint(target, st.PlateConfig),
		Ignored: ignored,
	}
	if resp.Hint == "" {
		resp.Description = plates.Describe(result, st.PlateConfig)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	o, ignored := s.parseOverride(r)
	st := state.Reconcile(s.snapshot, o)
	writeJSON(w, http.StatusOK, stateResponse{
		State:    st,
		ShareURL: state.ShareURL(s.shareURL, st),
		Ignored:  ignored,
	})
}

// parseOverride reads the share link parameters of r. Invalid parameters are
// dropped and reported back to the caller.
func (s *Server) parseOverride(r *http.Request) (state.Override, []string) {
	o, err := state.ParseQuery(r.URL.Query())
	if err == nil {
		return o, nil
	}
	errs := multierr.Errors(err)
	ignored := make([]string, 0, len(errs))
	for _, e := range errs {
		ignored = append(ignored, e.Error())
	}
	log.WithField("path", r.URL.Path).Debugf("ignored query parameters: %v", ignored)
	return o, ignored
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
