// Package render turns a dataset and the widget state into view models that
// templates (or JSON clients) can draw without further computation.
package render

import (
	"fmt"
	"html/template"
	"math"
	"strconv"

	"github.com/okian/samemean/internal/domain/catalog"
)

// MinBarHeightPx keeps small non-zero bars visible next to a much taller one.
const MinBarHeightPx = 20

var gridlineFractions = [...]float64{1, 0.75, 0.5, 0.25, 0}

// Bar is one drawn histogram bar.
type Bar struct {
	Range         string  `json:"range"`
	Count         int     `json:"count"`
	HeightPercent float64 `json:"height_percent"`
	MinHeightPx   int     `json:"min_height_px"`
	Percent       float64 `json:"percent_of_total"`
}

// Visible reports whether the bar carries a label and hover tooltip.
func (b Bar) Visible() bool { return b.Count > 0 }

// PercentLabel formats Percent with one decimal, e.g. "58.3".
func (b Bar) PercentLabel() string {
	return strconv.FormatFloat(b.Percent, 'f', 1, 64)
}

// Style is the inline CSS sizing the bar.
func (b Bar) Style() template.CSS {
	return template.CSS(fmt.Sprintf("height: %s%%; min-height: %dpx",
		strconv.FormatFloat(b.HeightPercent, 'f', 2, 64), b.MinHeightPx))
}

// ChartView is the histogram for the selected dataset.
type ChartView struct {
	DatasetID string      `json:"dataset_id"`
	Title     string      `json:"title"`
	Color     string      `json:"color"`
	Fill      string      `json:"fill"`
	Total     int         `json:"total"`
	MaxCount  int         `json:"max_count"`
	Bars      []Bar       `json:"bars"`
	Gridlines []int       `json:"gridlines"`
	Stats     *StatsPanel `json:"stats,omitempty"`
}

// FillStyle is the inline CSS colouring every bar.
func (c ChartView) FillStyle() template.CSS {
	return template.CSS("background-color: " + c.Fill)
}

// Chart lays out ds as a bar chart. Heights are relative to the tallest bin,
// non-zero bins get at least MinBarHeightPx, and each bin's share of the
// total is rounded to one decimal. The stats panel is attached only when
// statsVisible is set.
//
// Chart panics if ds has no students or no non-empty bin: both are chart
// denominators and catalog validation guarantees them for loaded tables.
func Chart(ds catalog.Dataset, statsVisible bool) ChartView {
	total := ds.Total()
	maxCount := ds.MaxCount()
	if total <= 0 || maxCount <= 0 {
		panic(fmt.Sprintf("render: dataset %q has total %d and max bin %d; chart denominators must be positive",
			ds.ID, total, maxCount))
	}

	bars := make([]Bar, len(ds.Bins))
	for i, b := range ds.Bins {
		bar := Bar{
			Range:         b.Range,
			Count:         b.Count,
			HeightPercent: float64(b.Count) / float64(maxCount) * 100,
			Percent:       roundTenth(float64(b.Count) / float64(total) * 100),
		}
		if b.Count > 0 {
			bar.MinHeightPx = MinBarHeightPx
		}
		bars[i] = bar
	}

	gridlines := make([]int, len(gridlineFractions))
	for i, f := range gridlineFractions {
		gridlines[i] = int(math.Floor(float64(maxCount) * f))
	}

	view := ChartView{
		DatasetID: ds.ID,
		Title:     ds.Name,
		Color:     ds.Color,
		Fill:      ColorHex(ds.Color),
		Total:     total,
		MaxCount:  maxCount,
		Bars:      bars,
		Gridlines: gridlines,
	}
	if statsVisible {
		view.Stats = Stats(ds)
	}
	return view
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
