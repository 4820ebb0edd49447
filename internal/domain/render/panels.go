package render

import (
	"fmt"
	"strconv"

	"github.com/okian/samemean/internal/domain/catalog"
)

// StatCard is one tile of the statistics panel.
type StatCard struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Caption string `json:"caption"`
	Tone    string `json:"tone"`
}

// StatsPanel shows the authored statistics verbatim.
type StatsPanel struct {
	Mean   string     `json:"mean"`
	Median string     `json:"median"`
	Mode   string     `json:"mode"`
	SD     string     `json:"sd"`
	Cards  []StatCard `json:"cards"`
}

// Stats builds the statistics panel for ds. Nothing is computed here.
func Stats(ds catalog.Dataset) *StatsPanel {
	p := &StatsPanel{
		Mean:   formatNumber(ds.Mean) + "%",
		Median: formatNumber(ds.Median) + "%",
		Mode:   ds.Mode,
		SD:     formatNumber(ds.SD),
	}
	p.Cards = []StatCard{
		{Label: "Mean", Value: p.Mean, Caption: "Average score", Tone: "blue"},
		{Label: "Median", Value: p.Median, Caption: "Middle value", Tone: "green"},
		{Label: "Mode", Value: p.Mode, Caption: "Most common", Tone: "purple"},
		{Label: "Std Dev", Value: p.SD, Caption: "Variability", Tone: "orange"},
	}
	return p
}

// InterpretationPanel is the educational reading of a distribution.
type InterpretationPanel struct {
	Interpretation string `json:"interpretation"`
	Recommendation string `json:"recommendation"`
	WhyItMatters   string `json:"why_it_matters"`
}

// Interpretation returns the panel for ds, or nil when it is collapsed.
// classes is the number of datasets the page compares.
func Interpretation(ds catalog.Dataset, classes int, visible bool) *InterpretationPanel {
	if !visible {
		return nil
	}
	return &InterpretationPanel{
		Interpretation: ds.Interpretation,
		Recommendation: ds.Recommendation,
		WhyItMatters: fmt.Sprintf("If you only looked at the mean (%s%%), you'd think all %s classes are the same. "+
			"But the distribution reveals completely different learning situations requiring "+
			"completely different instructional responses.", formatNumber(ds.Mean), countWord(classes)),
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
