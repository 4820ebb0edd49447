package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Derived holds summary statistics computed from a dataset's bins, treating
// every student as sitting at the midpoint of their bin.
type Derived struct {
	Mean        float64  `json:"mean"`
	Median      float64  `json:"median"`
	SD          float64  `json:"sd"`
	ModalRanges []string `json:"modal_ranges"`
}

// Consistency compares a dataset's authored statistics with Derived.
type Consistency struct {
	DatasetID   string   `json:"dataset_id"`
	Authored    Derived  `json:"authored"`
	Derived     Derived  `json:"derived"`
	MeanDelta   float64  `json:"mean_delta"`
	MedianDelta float64  `json:"median_delta"`
	SDDelta     float64  `json:"sd_delta"`
	ModeMatches bool     `json:"mode_matches"`
	Tolerance   float64  `json:"tolerance"`
	Consistent  bool     `json:"consistent"`
	Mismatches  []string `json:"mismatches,omitempty"`
}

// Derive computes midpoint-weighted statistics from the bins. The sd is the
// sample (n-1) standard deviation.
func Derive(ds Dataset) Derived {
	midpoints := make([]float64, len(ds.Bins))
	weights := make([]float64, len(ds.Bins))
	var samples stats.Float64Data
	for i, b := range ds.Bins {
		midpoints[i] = b.Midpoint
		weights[i] = float64(b.Count)
		for j := 0; j < b.Count; j++ {
			samples = append(samples, b.Midpoint)
		}
	}

	mean, sd := stat.MeanStdDev(midpoints, weights)
	median, err := samples.Median()
	if err != nil {
		median = math.NaN()
	}

	return Derived{
		Mean:        mean,
		Median:      median,
		SD:          sd,
		ModalRanges: modalRanges(ds),
	}
}

func modalRanges(ds Dataset) []string {
	maxCount := ds.MaxCount()
	if maxCount == 0 {
		return nil
	}
	var out []string
	for _, b := range ds.Bins {
		if b.Count == maxCount {
			out = append(out, b.Range)
		}
	}
	return out
}

// authoredModes splits an authored mode label such as "81-100 & 21-40".
func authoredModes(mode string) []string {
	var out []string
	for _, part := range strings.Split(mode, "&") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// Check compares ds's authored statistics with the bin-derived ones.
func Check(ds Dataset, tolerance float64) Consistency {
	d := Derive(ds)
	r := Consistency{
		DatasetID: ds.ID,
		Authored: Derived{
			Mean:        ds.Mean,
			Median:      ds.Median,
			SD:          ds.SD,
			ModalRanges: authoredModes(ds.Mode),
		},
		Derived:     d,
		MeanDelta:   ds.Mean - d.Mean,
		MedianDelta: ds.Median - d.Median,
		SDDelta:     ds.SD - d.SD,
		ModeMatches: sameSet(authoredModes(ds.Mode), d.ModalRanges),
		Tolerance:   tolerance,
	}

	if math.Abs(r.MeanDelta) > tolerance {
		r.Mismatches = append(r.Mismatches, fmt.Sprintf("mean %.4g vs %.4g", ds.Mean, d.Mean))
	}
	if math.Abs(r.MedianDelta) > tolerance {
		r.Mismatches = append(r.Mismatches, fmt.Sprintf("median %.4g vs %.4g", ds.Median, d.Median))
	}
	if math.Abs(r.SDDelta) > tolerance {
		r.Mismatches = append(r.Mismatches, fmt.Sprintf("sd %.4g vs %.4g", ds.SD, d.SD))
	}
	if !r.ModeMatches {
		r.Mismatches = append(r.Mismatches, fmt.Sprintf("mode %q vs %q", ds.Mode, strings.Join(d.ModalRanges, " & ")))
	}
	r.Consistent = len(r.Mismatches) == 0
	return r
}

// Summary is a one-line description suitable for logs and errors.
func (r Consistency) Summary() string {
	if r.Consistent {
		return r.DatasetID + ": consistent"
	}
	return r.DatasetID + ": " + strings.Join(r.Mismatches, "; ")
}

// Consistency runs Check over every dataset in registry order.
func (c *Catalog) Consistency(tolerance float64) []Consistency {
	out := make([]Consistency, 0, c.Len())
	for _, id := range c.order {
		out = append(out, Check(c.byID[id], tolerance))
	}
	return out
}
