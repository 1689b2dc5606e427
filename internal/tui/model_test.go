package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/session"
	"github.com/verte-zerg/liftcalc/internal/state"
	"github.com/verte-zerg/liftcalc/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "liftcalc.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	sess := session.Open(ctx, st, session.Options{}, state.Override{})
	m := NewModel(ctx, sess)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEnterCalculates(t *testing.T) {
	m := newTestModel(t)
	m.Update(key(tea.KeyEnter))
	if m.calc == nil {
		t.Fatalf("expected a calculation, got error %q", m.errMsg)
	}
	if m.warmPlan == nil || len(m.warmPlan.Sets) != 5 {
		t.Fatalf("expected a 5-stage warm-up plan")
	}
	out := m.View()
	if !containsAll(out, []string{"Best 1RM", "116.5 kg", "Maximal strength"}) {
		t.Fatalf("calculator view missing expected content: %s", out)
	}
}

func TestInvalidRepsShowsError(t *testing.T) {
	m := newTestModel(t)
	m.calcInputs[fieldReps].SetValue("25")
	m.Update(key(tea.KeyEnter))
	if m.calc != nil {
		t.Fatalf("expected no calculation")
	}
	if m.errMsg != "reps must be between 1 and 20" {
		t.Fatalf("unexpected error message: %q", m.errMsg)
	}
}

func TestLettersAreCommandsNotInput(t *testing.T) {
	m := newTestModel(t)
	m.Update(runes("u"))
	if got := m.sess.State().Unit; got != model.Pounds {
		t.Fatalf("expected pounds after toggle, got %s", got)
	}
	if got := m.calcInputs[fieldWeight].Value(); got != "220" {
		t.Fatalf("expected converted weight 220, got %q", got)
	}
}

func TestPlateToggleAndLoad(t *testing.T) {
	m := newTestModel(t)
	m.Update(key(tea.KeyTab))
	m.Update(key(tea.KeyTab))
	if m.activeTab != tabPlates {
		t.Fatalf("expected plates tab, got %d", m.activeTab)
	}
	m.Update(key(tea.KeyDown))
	m.Update(key(tea.KeyDown))
	m.Update(key(tea.KeySpace))
	if m.sess.State().PlateConfig.Plates[2].Available {
		t.Fatalf("expected the 15 kg plate to be disabled")
	}

	m.plateInput.SetValue("140")
	m.Update(key(tea.KeyEnter))
	if m.plateResult == nil {
		t.Fatalf("expected an allocation, got error %q", m.errMsg)
	}
	out := m.View()
	if !containsAll(out, []string{"20 kg bar + 25 kg + 20 kg + 10 kg + 5 kg per side", "[ ]"}) {
		t.Fatalf("plates view missing expected content: %s", out)
	}
}

func TestShareRequiresCalculation(t *testing.T) {
	m := newTestModel(t)
	m.Update(runes("s"))
	if m.shareOpen || m.errMsg != "No calculation to share" {
		t.Fatalf("expected share to be refused, got open=%v err=%q", m.shareOpen, m.errMsg)
	}
	m.Update(key(tea.KeyEnter))
	m.Update(runes("s"))
	if !m.shareOpen {
		t.Fatalf("expected share modal")
	}
	if !containsAll(m.shareText, []string{"1RM Calculator Results:", "r=5", "w=100", "unit=kg"}) {
		t.Fatalf("unexpected share text: %s", m.shareText)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
