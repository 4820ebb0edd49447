// Package chartimg exports the histogram as an SVG or PNG image.
package chartimg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/samemean/internal/adapters/http/middleware"
	service "github.com/okian/samemean/internal/app"
	"github.com/okian/samemean/internal/domain/render"
	"github.com/okian/samemean/pkg/logger"
	"github.com/okian/samemean/pkg/metrics"
)

// Image size in pixels.
const (
	width    = 640
	height   = 400
	barWidth = 72
)

// ErrUnsupportedFormat is returned for extensions other than .svg and .png.
var ErrUnsupportedFormat = errors.New("unsupported chart format")

// Format is an image encoding.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ContentType is the MIME type of the encoding.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

// ParseFile splits "dataset2.svg" into the dataset id and the format.
func ParseFile(name string) (string, Format, error) {
	ext := path.Ext(name)
	id := strings.TrimSuffix(name, ext)
	if id == "" {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	switch Format(strings.ToLower(strings.TrimPrefix(ext, "."))) {
	case SVG:
		return id, SVG, nil
	case PNG:
		return id, PNG, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Render draws view as a bar chart. Bar heights are the raw counts on an axis
// running from zero to the tallest bin, the same scale as the page.
func Render(view render.ChartView, format Format, w io.Writer) error {
	fill := drawing.ColorFromHex(strings.TrimPrefix(view.Fill, "#"))

	bars := make([]chart.Value, len(view.Bars))
	for i, b := range view.Bars {
		bars[i] = chart.Value{
			Label: b.Range,
			Value: float64(b.Count),
			Style: chart.Style{
				FillColor:   fill,
				StrokeColor: fill,
				StrokeWidth: 1,
			},
		}
	}

	// gridlines run top to bottom; axis ticks bottom to top
	n := len(view.Gridlines)
	ticks := make([]chart.Tick, n)
	for i, v := range view.Gridlines {
		ticks[n-1-i] = chart.Tick{Value: float64(v), Label: fmt.Sprint(v)}
	}

	bc := chart.BarChart{
		Title:      view.Title,
		TitleStyle: chart.Style{FontSize: 14},
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(view.MaxCount)},
			Ticks: ticks,
		},
		Bars: bars,
	}
	return bc.Render(format.provider(), w)
}

// Charts resolves dataset ids to chart layouts.
type Charts interface {
	Chart(id string) (render.ChartView, error)
}

// Handler serves GET /chart/{file}.
type Handler struct {
	charts Charts
	logger logger.Logger
}

// NewHandler creates the chart image handler.
func NewHandler(charts Charts) *Handler {
	return &Handler{charts: charts, logger: logger.Named("chartimg")}
}

// Register attaches the chart image route to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /chart/{file}", middleware.MetricsFunc(h.HandleChart, "chart_image"))
}

// HandleChart renders the requested dataset's histogram.
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	id, format, err := ParseFile(r.PathValue("file"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	view, err := h.charts.Chart(id)
	if err != nil {
		if errors.Is(err, service.ErrUnknownDataset) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "render_failed", err)
		return
	}

	var buf bytes.Buffer
	if err := Render(view, format, &buf); err != nil {
		h.logger.Error(r.Context(), "chart render failed",
			logger.String("dataset", id),
			logger.String("format", string(format)),
			logger.Error(err),
		)
		http.Error(w, "render_failed", http.StatusInternalServerError)
		return
	}
	metrics.RecordChartExport(string(format))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = buf.WriteTo(w)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": err.Error()})
}
