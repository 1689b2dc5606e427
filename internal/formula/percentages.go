package formula

import "github.com/verte-zerg/liftcalc/internal/model"

type percentage struct {
	percent     int
	reps        string
	description string
}

var trainingPercentages = []percentage{
	{95, "2-3", "Maximal strength"},
	{90, "3-4", "Heavy strength"},
	{85, "5-6", "Strength endurance"},
	{80, "7-8", "Hypertrophy"},
	{75, "8-10", "Muscle building"},
	{70, "10-12", "Endurance"},
	{65, "12-15", "Light endurance"},
	{60, "15+", "Technique work"},
	{50, "Technique", "Form practice"},
}

// PercentageTable derives training loads from a 1RM. Weights are unrounded.
func PercentageTable(best float64) []model.PercentageRow {
	rows := make([]model.PercentageRow, 0, len(trainingPercentages))
	for _, p := range trainingPercentages {
		rows = append(rows, model.PercentageRow{
			Percent:     p.percent,
			Reps:        p.reps,
			Description: p.description,
			Weight:      best * float64(p.percent) / 100,
		})
	}
	return rows
}
