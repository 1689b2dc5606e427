package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/liftcalc/internal/model"
	"github.com/verte-zerg/liftcalc/internal/plates"
	"github.com/verte-zerg/liftcalc/internal/units"
	"github.com/verte-zerg/liftcalc/internal/warmup"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// ColorEnabled reports whether f is a terminal that should receive styled output.
func ColorEnabled(f *os.File) bool {
	if f == nil {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func heading(title string, useColor bool) string {
	if useColor {
		return headingStyle.Render(title)
	}
	return title
}

func writeLines(w io.Writer, lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Weight formats a weight rounded for display in the given unit.
func Weight(weight float64, unit model.Unit) string {
	return units.FormatWithUnit(units.Round(weight, unit), unit)
}

// RenderCalculation prints the estimate, every formula and any accuracy warning.
func RenderCalculation(w io.Writer, calc model.Calculation, useColor bool) error {
	unit := calc.Input.Unit
	lines := []string{
		heading("1RM Estimate", useColor),
		fmt.Sprintf("Lifted: %s × %d reps", units.FormatWithUnit(calc.Input.Weight, unit), calc.Input.Reps),
		fmt.Sprintf("Estimated 1RM: %s (exact %.2f %s)", Weight(calc.Result.Best, unit), calc.Result.Best, unit),
	}
	enabled := make(map[model.Formula]bool, len(calc.Formulas))
	for _, f := range calc.Formulas {
		enabled[f] = true
	}
	rows := make([][]string, 0, len(model.AllFormulas))
	for _, f := range model.AllFormulas {
		status := "off"
		if enabled[f] {
			status = "on"
		}
		rows = append(rows, []string{
			formulaLabel(f),
			Weight(calc.Result.Value(f), unit),
			fmt.Sprintf("%.2f", calc.Result.Value(f)),
			status,
		})
	}
	lines = append(lines, "")
	lines = append(lines, formatTable([]string{"Formula", "1RM", "Exact", "Used"}, rows, map[int]bool{1: true, 2: true})...)
	if calc.Warning != "" {
		lines = append(lines, "", "Note: "+calc.Warning)
	}
	lines = append(lines, "")
	return writeLines(w, lines...)
}

// RenderPercentages prints the training percentage table for a 1RM.
func RenderPercentages(w io.Writer, rows []model.PercentageRow, unit model.Unit, useColor bool) error {
	if len(rows) == 0 {
		return nil
	}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			fmt.Sprintf("%d%%", r.Percent),
			Weight(r.Weight, unit),
			r.Reps,
			r.Description,
		})
	}
	lines := []string{heading("Training Percentages", useColor)}
	lines = append(lines, formatTable([]string{"%", "Weight", "Reps", "Focus"}, tableRows, map[int]bool{0: true, 1: true})...)
	lines = append(lines, "")
	return writeLines(w, lines...)
}

// RenderWarmup prints a warm-up plan.
func RenderWarmup(w io.Writer, plan model.WarmupPlan, useColor bool) error {
	if len(plan.Sets) == 0 {
		return nil
	}
	tableRows := make([][]string, 0, len(plan.Sets))
	for _, set := range plan.Sets {
		tableRows = append(tableRows, []string{
			warmup.FormatSet(set),
			units.FormatWithUnit(set.Weight, plan.Unit),
			set.Plates,
			set.Description,
		})
	}
	lines := []string{
		heading(fmt.Sprintf("Warm-up to %s", Weight(plan.WorkingWeight, plan.Unit)), useColor),
	}
	lines = append(lines, formatTable([]string{"Set", "Weight", "Plates", "Focus"}, tableRows, map[int]bool{1: true})...)
	lines = append(lines, "")
	return writeLines(w, lines...)
}

// RenderPlates prints the loading for a target weight.
func RenderPlates(w io.Writer, target float64, cfg model.PlateConfig, result model.PlateResult, useColor bool) error {
	lines := []string{heading("Plate Loading", useColor)}
	if !plates.IsValidTarget(target, cfg) {
		lines = append(lines, plates.Hint(target, cfg), "")
		return writeLines(w, lines...)
	}
	lines = append(lines,
		fmt.Sprintf("Target: %s", units.FormatWithUnit(target, cfg.Unit)),
		fmt.Sprintf("Loaded: %s", units.FormatWithUnit(result.Total, cfg.Unit)),
		plates.Describe(result, cfg),
	)
	if result.Remainder > 0 {
		lines = append(lines, fmt.Sprintf("Remainder per side: %s", units.FormatWithUnit(result.Remainder, cfg.Unit)))
	}
	lines = append(lines, "")
	return writeLines(w, lines...)
}

// RenderState prints the stored inputs, bar and plate inventory.
func RenderState(w io.Writer, s model.AppState, useColor bool) error {
	lines := []string{
		heading("Saved State", useColor),
		fmt.Sprintf("Weight: %s", units.FormatWithUnit(s.Weight, s.Unit)),
		fmt.Sprintf("Reps: %d", s.Reps),
		fmt.Sprintf("Bar: %s", units.FormatWithUnit(s.Bar, s.Unit)),
	}
	available := make([]string, 0, len(s.PlateConfig.Plates))
	disabled := make([]string, 0)
	for _, p := range s.PlateConfig.Plates {
		if p.Available {
			available = append(available, units.Format(p.Weight))
		} else {
			disabled = append(disabled, units.Format(p.Weight))
		}
	}
	lines = append(lines, fmt.Sprintf("Plates (%s): %s", s.PlateConfig.Unit, joinOrNone(available)))
	if len(disabled) > 0 {
		lines = append(lines, fmt.Sprintf("Disabled: %s", strings.Join(disabled, ", ")))
	}
	if rec := s.LastCalculation; rec != nil {
		lines = append(lines, fmt.Sprintf("Last: %s × %d reps → %s",
			units.FormatWithUnit(rec.Weight, rec.Unit), rec.Reps, Weight(rec.Best1RM, rec.Unit)))
	}
	lines = append(lines, "")
	return writeLines(w, lines...)
}

type shareRow struct {
	percent int
	reps    string
}

var sharePercentages = []shareRow{
	{80, "3-5 reps"},
	{85, "2-3 reps"},
	{90, "1-2 reps"},
	{95, "1 rep"},
}

// ShareText is the plain-text summary of a calculation meant for pasting.
func ShareText(rec model.CalculationRecord) string {
	var b strings.Builder
	b.WriteString("1RM Calculator Results:\n")
	fmt.Fprintf(&b, "• Weight: %s %s × %d reps\n", units.Format(rec.Weight), rec.Unit, rec.Reps)
	fmt.Fprintf(&b, "• Estimated 1RM: %s\n", Weight(rec.Best1RM, rec.Unit))
	b.WriteString("• Key percentages:")
	for _, p := range sharePercentages {
		fmt.Fprintf(&b, "\n  - %d%%: %s (%s)", p.percent, Weight(rec.Best1RM*float64(p.percent)/100, rec.Unit), p.reps)
	}
	return b.String()
}

func formulaLabel(f model.Formula) string {
	s := string(f)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
