package render

import (
	"fmt"

	"github.com/okian/samemean/internal/domain/catalog"
	"github.com/okian/samemean/internal/domain/selection"
)

// Registry is the read side of the dataset table.
type Registry interface {
	Datasets() []catalog.Dataset
	Lookup(id string) (catalog.Dataset, bool)
}

// DatasetCard is one selector button.
type DatasetCard struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MeanLabel   string `json:"mean_label"`
	Selected    bool   `json:"selected"`
}

// PageView is everything the widget template draws.
type PageView struct {
	Title       string          `json:"title"`
	Intro       string          `json:"intro"`
	KeyQuestion string          `json:"key_question"`
	Cards       []DatasetCard   `json:"cards"`
	State       selection.State `json:"state"`

	Heading     string    `json:"heading"`
	Description string    `json:"description"`
	Chart       ChartView `json:"chart"`

	StatsToggleLabel          string               `json:"stats_toggle_label"`
	InterpretationToggleLabel string               `json:"interpretation_toggle_label"`
	Interpretation            *InterpretationPanel `json:"interpretation,omitempty"`

	Takeaways []Takeaway `json:"takeaways"`
	Quote     Quote      `json:"quote"`
}

// Page composes the full widget view for state s.
func Page(reg Registry, s selection.State) (PageView, error) {
	current, ok := reg.Lookup(s.SelectedID)
	if !ok {
		return PageView{}, fmt.Errorf("%w: %q", ErrUnknownDataset, s.SelectedID)
	}
	datasets := reg.Datasets()

	cards := make([]DatasetCard, len(datasets))
	for i, ds := range datasets {
		cards[i] = DatasetCard{
			ID:          ds.ID,
			Name:        ds.Name,
			Description: ds.Description,
			MeanLabel:   "Mean: " + formatNumber(ds.Mean) + "%",
			Selected:    ds.ID == s.SelectedID,
		}
	}

	return PageView{
		Title:                     "Same Mean, Different Distributions",
		Intro:                     introText(datasets),
		KeyQuestion:               keyQuestion(datasets),
		Cards:                     cards,
		State:                     s,
		Heading:                   current.Name,
		Description:               current.Description,
		Chart:                     Chart(current, s.StatsVisible),
		StatsToggleLabel:          toggleLabel(s.StatsVisible, "Statistics"),
		InterpretationToggleLabel: toggleLabel(s.InterpretationVisible, "Educational Interpretation"),
		Interpretation:            Interpretation(current, len(datasets), s.InterpretationVisible),
		Takeaways:                 Takeaways(datasets),
		Quote:                     closingQuote,
	}, nil
}

func toggleLabel(visible bool, what string) string {
	if visible {
		return "Hide " + what
	}
	return "Show " + what
}
