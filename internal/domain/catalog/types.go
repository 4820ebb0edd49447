// Package catalog holds the immutable registry of score histograms shown by
// the widget. The table is loaded once at startup, validated, and only ever
// handed out as copies.
package catalog

// ScoreRanges are the fixed bin labels every dataset must use, in order.
var ScoreRanges = [...]string{"0-20", "21-40", "41-60", "61-80", "81-100"}

// Bin is one histogram bar: a score range, the number of students in it and
// the range midpoint.
type Bin struct {
	Range    string  `koanf:"range" json:"range"`
	Count    int     `koanf:"count" json:"count"`
	Midpoint float64 `koanf:"midpoint" json:"midpoint"`
}

// Dataset is a registry record. Mean, Median, Mode and SD are authored
// values; they are not derived from Bins.
type Dataset struct {
	ID             string  `koanf:"id" json:"id"`
	Name           string  `koanf:"name" json:"name"`
	Bins           []Bin   `koanf:"bins" json:"bins"`
	Mean           float64 `koanf:"mean" json:"mean"`
	Median         float64 `koanf:"median" json:"median"`
	SD             float64 `koanf:"sd" json:"sd"`
	Mode           string  `koanf:"mode" json:"mode"`
	Description    string  `koanf:"description" json:"description"`
	Color          string  `koanf:"color" json:"color"`
	Interpretation string  `koanf:"interpretation" json:"interpretation"`
	Recommendation string  `koanf:"recommendation" json:"recommendation"`
}

// Total returns the number of students across all bins.
func (d Dataset) Total() int {
	total := 0
	for _, b := range d.Bins {
		total += b.Count
	}
	return total
}

// MaxCount returns the tallest bin count.
func (d Dataset) MaxCount() int {
	maxCount := 0
	for _, b := range d.Bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	return maxCount
}

// Counts returns the bin counts in order.
func (d Dataset) Counts() []int {
	counts := make([]int, len(d.Bins))
	for i, b := range d.Bins {
		counts[i] = b.Count
	}
	return counts
}

func (d Dataset) clone() Dataset {
	out := d
	out.Bins = append([]Bin(nil), d.Bins...)
	return out
}
