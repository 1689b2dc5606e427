// Package tui provides the Bubble Tea calculator interface.
package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/verte-zerg/liftcalc/internal/formula"
	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/plates"
	"github.com/verte-zerg/liftcalc/internal/report"
	"github.com/verte-zerg/liftcalc/internal/session"
	"github.com/verte-zerg/liftcalc/internal/units"
)

const (
	tabCalculator = iota
	tabWarmup
	tabPlates
)

const (
	fieldWeight = iota
	fieldReps
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	disabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")).Strikethrough(true)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	modalStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea calculator UI.
type Model struct {
	ctx  context.Context
	sess *session.Session

	tabs      []string
	activeTab int

	calcInputs []textinput.Model
	calcFocus  int
	warmInput  textinput.Model
	plateInput textinput.Model

	calc        *model.Calculation
	percentages table.Model
	warmPlan    *model.WarmupPlan
	plateTarget float64
	plateResult *model.PlateResult
	plateCursor int

	shareOpen bool
	shareText string

	errMsg string
	notice string

	width  int
	height int
}

// NewModel constructs the calculator UI over an open session.
func NewModel(ctx context.Context, sess *session.Session) *Model {
	m := &Model{
		ctx:  ctx,
		sess: sess,
		tabs: []string{"1RM", "Warm-up", "Plates"},
	}
	m.calcInputs = []textinput.Model{
		newNumberInput("Weight: "),
		newNumberInput("Reps:   "),
	}
	m.warmInput = newNumberInput("Working weight: ")
	m.plateInput = newNumberInput("Target weight: ")
	m.percentages = buildPercentageTable(nil, model.Kilograms)
	m.loadState()
	if calc, ok := sess.Last(); ok {
		m.setCalculation(calc)
	}
	m.focusActive()
	return m
}

func newNumberInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 8
	input.Width = 10
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.shareOpen {
			if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter || msg.String() == "q" {
				m.shareOpen = false
			}
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab:
		m.moveTab(1)
		return m, nil
	case tea.KeyShiftTab:
		m.moveTab(-1)
		return m, nil
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		m.submit()
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		m.moveFocus(msg.Type == tea.KeyDown)
		return m, nil
	case tea.KeySpace:
		if m.activeTab == tabPlates {
			m.togglePlate()
		}
		return m, nil
	case tea.KeyRunes:
		if isNumeric(msg.Runes) {
			return m, m.updateInput(msg)
		}
		return m.handleCommand(msg.String())
	}
	return m, m.updateInput(msg)
}

func (m *Model) handleCommand(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "u":
		m.toggleUnit()
	case "b":
		m.sess.CycleBar(m.ctx)
		m.afterConfigChange()
		m.notice = "Bar: " + units.FormatWithUnit(m.sess.State().Bar, m.sess.State().Unit)
	case "s":
		m.openShare()
	case "R":
		m.reset()
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.activeTab {
	case tabCalculator:
		m.calcInputs[m.calcFocus], cmd = m.calcInputs[m.calcFocus].Update(msg)
	case tabWarmup:
		m.warmInput, cmd = m.warmInput.Update(msg)
	case tabPlates:
		m.plateInput, cmd = m.plateInput.Update(msg)
	}
	return cmd
}

func (m *Model) submit() {
	m.errMsg = ""
	m.notice = ""
	switch m.activeTab {
	case tabCalculator:
		calc, err := m.sess.CalculateRaw(m.ctx, m.calcInputs[fieldWeight].Value(), m.calcInputs[fieldReps].Value())
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		m.setCalculation(calc)
	case tabWarmup:
		weight, err := session.ParseWeight(m.warmInput.Value())
		if err != nil {
			m.errMsg = "Please enter a valid working weight"
			return
		}
		plan, err := m.sess.Warmup(weight)
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		m.warmPlan = &plan
	case tabPlates:
		target, err := session.ParseWeight(m.plateInput.Value())
		if err != nil {
			m.errMsg = "Please enter a valid target weight"
			return
		}
		m.plateTarget = target
		m.refreshPlates()
	}
}

func (m *Model) setCalculation(calc model.Calculation) {
	m.calc = &calc
	m.percentages = buildPercentageTable(calc.Percentages, calc.Input.Unit)
	plan := calc.Warmup
	m.warmPlan = &plan
	m.warmInput.SetValue(units.Format(units.Round(calc.Result.Best, calc.Input.Unit)))
}

func (m *Model) refreshPlates() {
	if m.plateTarget <= 0 {
		m.plateResult = nil
		return
	}
	result := m.sess.Plates(m.plateTarget)
	m.plateResult = &result
}

func (m *Model) toggleUnit() {
	weight, werr := session.ParseWeight(m.calcInputs[fieldWeight].Value())
	reps, rerr := strconv.Atoi(strings.TrimSpace(m.calcInputs[fieldReps].Value()))
	if werr == nil && rerr == nil {
		if _, err := formula.Validate(weight, reps); err == nil {
			m.sess.SetInputs(weight, reps)
		}
	}
	next := model.Pounds
	if m.sess.State().Unit == model.Pounds {
		next = model.Kilograms
	}
	m.sess.SetUnit(m.ctx, next)
	m.loadState()
	m.plateTarget = 0
	m.plateResult = nil
	m.plateInput.SetValue("")
	if calc, ok := m.sess.Last(); ok {
		m.setCalculation(calc)
	}
	m.notice = "Unit: " + string(next)
}

func (m *Model) togglePlate() {
	cfg := m.sess.State().PlateConfig
	if m.plateCursor < 0 || m.plateCursor >= len(cfg.Plates) {
		return
	}
	available := !cfg.Plates[m.plateCursor].Available
	if err := m.sess.SetPlateAvailable(m.ctx, m.plateCursor, available); err != nil {
		log.Warnf("failed to toggle plate: %v", err)
		m.errMsg = err.Error()
		return
	}
	m.afterConfigChange()
}

func (m *Model) afterConfigChange() {
	m.refreshPlates()
	if m.warmPlan != nil {
		if plan, err := m.sess.Warmup(m.warmPlan.WorkingWeight); err == nil {
			m.warmPlan = &plan
		}
	}
}

func (m *Model) openShare() {
	text, err := m.sess.ShareText()
	if err != nil {
		if errors.Is(err, session.ErrNothingToShare) {
			m.errMsg = "No calculation to share"
			return
		}
		m.errMsg = err.Error()
		return
	}
	m.shareText = text + "\n\n" + m.sess.ShareURL()
	m.shareOpen = true
}

func (m *Model) reset() {
	if err := m.sess.Reset(m.ctx); err != nil {
		log.Errorf("failed to reset state: %v", err)
		m.errMsg = err.Error()
		return
	}
	m.calc = nil
	m.warmPlan = nil
	m.plateTarget = 0
	m.plateResult = nil
	m.plateCursor = 0
	m.percentages = buildPercentageTable(nil, model.Kilograms)
	m.warmInput.SetValue("")
	m.plateInput.SetValue("")
	m.loadState()
	m.notice = "State reset to defaults"
}

func (m *Model) loadState() {
	st := m.sess.State()
	m.calcInputs[fieldWeight].SetValue(units.Format(st.Weight))
	m.calcInputs[fieldReps].SetValue(strconv.Itoa(st.Reps))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.errMsg = ""
	m.focusActive()
}

func (m *Model) moveFocus(down bool) {
	switch m.activeTab {
	case tabCalculator:
		if down {
			m.calcFocus = (m.calcFocus + 1) % len(m.calcInputs)
		} else {
			m.calcFocus = (m.calcFocus + len(m.calcInputs) - 1) % len(m.calcInputs)
		}
		m.focusActive()
	case tabPlates:
		count := len(m.sess.State().PlateConfig.Plates)
		if count == 0 {
			return
		}
		if down {
			m.plateCursor = minInt(m.plateCursor+1, count-1)
		} else {
			m.plateCursor = maxInt(m.plateCursor-1, 0)
		}
	}
}

func (m *Model) focusActive() {
	for i := range m.calcInputs {
		m.calcInputs[i].Blur()
	}
	m.warmInput.Blur()
	m.plateInput.Blur()
	switch m.activeTab {
	case tabCalculator:
		m.calcInputs[m.calcFocus].Focus()
	case tabWarmup:
		m.warmInput.Focus()
	case tabPlates:
		m.plateInput.Focus()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.shareOpen {
		modal := modalStyle.Width(modalWidth(m.width)).Render(m.shareText)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}
	header := padLines(m.renderHeader(), m.width)
	footer := m.renderFooter()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	st := m.sess.State()
	summary := fmt.Sprintf("Unit: %s  Bar: %s", st.Unit, units.FormatWithUnit(st.Bar, st.Unit))
	return tabs + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	help := "Tabs: tab/shift+tab  Calculate: enter  Unit: u  Bar: b  Share: s  Reset: R  Quit: q"
	if m.activeTab == tabPlates {
		help = "Tabs: tab/shift+tab  Load: enter  Select: up/down  Toggle: space  Unit: u  Bar: b  Quit: q"
	}
	lines := []string{headerStyle.Render(truncateLine(help, m.width))}
	switch {
	case m.errMsg != "":
		lines = append(lines, errorStyle.Render(m.errMsg))
	case m.notice != "":
		lines = append(lines, noticeStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody() string {
	switch m.activeTab {
	case tabWarmup:
		return m.renderWarmup()
	case tabPlates:
		return m.renderPlates()
	default:
		return m.renderCalculator()
	}
}

func (m *Model) renderCalculator() string {
	lines := []string{m.calcInputs[fieldWeight].View(), m.calcInputs[fieldReps].View(), ""}
	if m.calc == nil {
		lines = append(lines, "Enter the weight and reps of a set, then press enter.")
		return strings.Join(lines, "\n")
	}
	calc := m.calc
	unit := calc.Input.Unit
	cards := []string{
		metricCard("Best 1RM", report.Weight(calc.Result.Best, unit)),
	}
	for _, f := range calc.Formulas {
		cards = append(cards, metricCard(formulaTitle(f), report.Weight(calc.Result.Value(f), unit)))
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	lines = append(lines, headerStyle.Render(fmt.Sprintf("Exact: %.2f %s", calc.Result.Best, unit)))
	if calc.Warning != "" {
		lines = append(lines, noticeStyle.Render(calc.Warning))
	}
	lines = append(lines, "", m.percentages.View())
	return strings.Join(lines, "\n")
}

func (m *Model) renderWarmup() string {
	lines := []string{m.warmInput.View(), ""}
	if m.warmPlan == nil {
		lines = append(lines, "Enter a working weight, then press enter.")
		return strings.Join(lines, "\n")
	}
	var buf bytes.Buffer
	if err := report.RenderWarmup(&buf, *m.warmPlan, true); err != nil {
		return fmt.Sprintf("Failed to render warm-up: %v", err)
	}
	lines = append(lines, strings.TrimRight(buf.String(), "\n"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderPlates() string {
	st := m.sess.State()
	lines := []string{m.plateInput.View(), ""}
	if m.plateResult != nil {
		var buf bytes.Buffer
		if err := report.RenderPlates(&buf, m.plateTarget, st.PlateConfig, *m.plateResult, true); err != nil {
			return fmt.Sprintf("Failed to render plates: %v", err)
		}
		lines = append(lines, strings.TrimRight(buf.String(), "\n"), "")
	} else if m.plateTarget == 0 {
		lines = append(lines, headerStyle.Render(plates.Hint(0, st.PlateConfig)), "")
	}
	lines = append(lines, "Available plates ("+string(st.PlateConfig.Unit)+"):")
	for i, p := range st.PlateConfig.Plates {
		lines = append(lines, plateLine(p, st.PlateConfig.Unit, i == m.plateCursor))
	}
	return strings.Join(lines, "\n")
}

func plateLine(p model.Plate, unit model.Unit, selected bool) string {
	mark := "[x]"
	label := units.FormatWithUnit(p.Weight, unit)
	if !p.Available {
		mark = "[ ]"
		label = disabledStyle.Render(label)
	}
	line := mark + " " + label
	if selected {
		return cursorStyle.Render("> ") + line
	}
	return "  " + line
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func formulaTitle(f model.Formula) string {
	s := string(f)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func isNumeric(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}
