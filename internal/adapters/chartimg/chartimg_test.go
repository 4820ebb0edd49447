package chartimg_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/samemean/internal/adapters/chartimg"
	service "github.com/okian/samemean/internal/app"
	"github.com/okian/samemean/internal/domain/catalog"
	"github.com/okian/samemean/internal/domain/render"
	"github.com/okian/samemean/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type stubCharts struct{}

func (stubCharts) Chart(id string) (render.ChartView, error) {
	ds, ok := catalog.Default().Lookup(id)
	if !ok {
		return render.ChartView{}, service.ErrUnknownDataset
	}
	return render.Chart(ds, true), nil
}

func TestParseFile(t *testing.T) {
	Convey("Given chart file names", t, func() {
		Convey("Then svg and png are accepted", func() {
			id, f, err := chartimg.ParseFile("dataset2.svg")
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "dataset2")
			So(f, ShouldEqual, chartimg.SVG)

			id, f, err = chartimg.ParseFile("dataset1.PNG")
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "dataset1")
			So(f, ShouldEqual, chartimg.PNG)
			So(f.ContentType(), ShouldEqual, "image/png")
		})

		Convey("Then other extensions are rejected", func() {
			_, _, err := chartimg.ParseFile("dataset1.gif")
			So(errors.Is(err, chartimg.ErrUnsupportedFormat), ShouldBeTrue)
			_, _, err = chartimg.ParseFile(".svg")
			So(errors.Is(err, chartimg.ErrUnsupportedFormat), ShouldBeTrue)
		})
	})
}

func TestRender(t *testing.T) {
	Convey("Given the bimodal class layout", t, func() {
		view, err := stubCharts{}.Chart("dataset2")
		So(err, ShouldBeNil)

		Convey("When it is rendered as SVG", func() {
			var buf bytes.Buffer
			err := chartimg.Render(view, chartimg.SVG, &buf)

			Convey("Then an svg document with the range labels is produced", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, "<svg")
				So(buf.String(), ShouldContainSubstring, "81-100")
			})
		})

		Convey("When it is rendered as PNG", func() {
			var buf bytes.Buffer
			err := chartimg.Render(view, chartimg.PNG, &buf)

			Convey("Then a png image is produced", func() {
				So(err, ShouldBeNil)
				So(bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), ShouldBeTrue)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given the chart image handler", t, func() {
		mux := http.NewServeMux()
		chartimg.NewHandler(stubCharts{}).Register(context.Background(), mux)

		Convey("Then a known dataset is served as SVG", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chart/dataset1.svg", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldEqual, "image/svg+xml")
		})

		Convey("Then an unknown dataset is 404", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chart/dataset9.svg", nil))
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then an unknown dataset's error names not_found", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chart/dataset9.png", nil))
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(rec.Body.String(), ShouldContainSubstring, `"code":"not_found"`)
		})

		Convey("Then an unsupported format is 400 bad_request", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chart/dataset1.gif", nil))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(rec.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			So(rec.Body.String(), ShouldContainSubstring, `"code":"bad_request"`)
		})

		Convey("Then a name without an extension is 400", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chart/dataset1", nil))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}
