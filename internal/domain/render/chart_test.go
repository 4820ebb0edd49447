package render_test

import (
	"math"
	"strings"
	"testing"

	"github.com/okian/samemean/internal/domain/catalog"
	"github.com/okian/samemean/internal/domain/render"
	. "github.com/smartystreets/goconvey/convey"
)

func mustLookup(id string) catalog.Dataset {
	ds, ok := catalog.Default().Lookup(id)
	if !ok {
		panic("missing dataset " + id)
	}
	return ds
}

func TestChartClassB(t *testing.T) {
	Convey("Given the bimodal class", t, func() {
		view := render.Chart(mustLookup("dataset2"), true)

		Convey("Then the tallest bin sets the scale", func() {
			So(view.MaxCount, ShouldEqual, 35)
			So(view.Total, ShouldEqual, 60)
			So(view.Gridlines, ShouldResemble, []int{35, 26, 17, 8, 0})
		})

		Convey("Then each bar carries its share of the class", func() {
			labels := make([]string, len(view.Bars))
			for i, b := range view.Bars {
				labels[i] = b.PercentLabel()
			}
			So(labels, ShouldResemble, []string{"0.0", "25.0", "8.3", "8.3", "58.3"})
		})

		Convey("Then the 81-100 bar is full height and the empty bin is hidden", func() {
			So(view.Bars[4].HeightPercent, ShouldEqual, 100)
			So(view.Bars[0].HeightPercent, ShouldEqual, 0)
			So(view.Bars[0].MinHeightPx, ShouldEqual, 0)
			So(view.Bars[0].Visible(), ShouldBeFalse)
			So(view.Bars[2].MinHeightPx, ShouldEqual, render.MinBarHeightPx)
		})

		Convey("Then the stats panel shows the authored values", func() {
			So(view.Stats, ShouldNotBeNil)
			So(view.Stats.Mean, ShouldEqual, "75%")
			So(view.Stats.Median, ShouldEqual, "77%")
			So(view.Stats.Mode, ShouldEqual, "81-100 & 21-40")
			So(view.Stats.SD, ShouldEqual, "28")
			So(view.Stats.Cards, ShouldHaveLength, 4)
			So(view.Stats.Cards[3].Caption, ShouldEqual, "Variability")
		})

		Convey("Then the bars are coloured from the dataset token", func() {
			So(view.Fill, ShouldEqual, "#22c55e")
			So(string(view.FillStyle()), ShouldContainSubstring, "#22c55e")
		})
	})
}

func TestChartInvariants(t *testing.T) {
	Convey("For every default dataset", t, func() {
		for _, ds := range catalog.Default().Datasets() {
			view := render.Chart(ds, false)

			var sum float64
			full := 0
			for i, b := range view.Bars {
				sum += b.Percent
				if b.HeightPercent == 100 {
					full++
				}
				So(b.Range, ShouldEqual, catalog.ScoreRanges[i])
				if b.Count == 0 {
					So(b.HeightPercent, ShouldEqual, 0)
					So(b.MinHeightPx, ShouldEqual, 0)
				} else {
					So(b.MinHeightPx, ShouldEqual, render.MinBarHeightPx)
					So(b.HeightPercent, ShouldBeGreaterThan, 0)
				}
			}
			So(math.Abs(sum-100), ShouldBeLessThanOrEqualTo, 0.1+1e-9)
			So(full, ShouldBeGreaterThanOrEqualTo, 1)
			So(view.Gridlines[len(view.Gridlines)-1], ShouldEqual, 0)
			So(view.Stats, ShouldBeNil)
		}
	})
}

func TestChartBarStyle(t *testing.T) {
	Convey("Given a bar at a fraction of the tallest bin", t, func() {
		view := render.Chart(mustLookup("dataset1"), false)
		style := string(view.Bars[4].Style())

		Convey("Then the inline style carries both the height and the floor", func() {
			So(style, ShouldStartWith, "height: 21.43%")
			So(strings.HasSuffix(style, "min-height: 20px"), ShouldBeTrue)
		})
	})
}

func TestChartPanicsOnEmptyDataset(t *testing.T) {
	Convey("Given a dataset with no students", t, func() {
		empty := catalog.Dataset{ID: "empty", Bins: []catalog.Bin{{Range: "0-20"}, {Range: "21-40"}}}

		Convey("Then drawing it is a programming error", func() {
			So(func() { render.Chart(empty, true) }, ShouldPanic)
		})
	})
}

func TestColorHex(t *testing.T) {
	Convey("Known tokens resolve and unknown ones fall back to grey", t, func() {
		So(render.ColorHex("bg-blue-500"), ShouldEqual, "#3b82f6")
		So(render.ColorHex("bg-purple-500"), ShouldEqual, "#a855f7")
		So(render.ColorHex("chartreuse"), ShouldEqual, "#6b7280")
	})
}
