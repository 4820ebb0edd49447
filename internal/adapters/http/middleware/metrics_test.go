package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/okian/samemean/internal/adapters/http/middleware"
	"github.com/okian/samemean/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped with the metrics middleware", t, func() {
		h := middleware.MetricsFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("fail") != "" {
				http.Error(w, "nope", http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte("ok"))
		}, "middleware_test")

		Convey("When it serves a successful request", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			Convey("Then the response passes through unchanged", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldEqual, "ok")
			})
		})

		Convey("When it serves a failing request", func() {
			before := countSeries()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?fail=1", nil))

			Convey("Then the status is kept and the request is recorded", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(countSeries(), ShouldBeGreaterThan, before)
			})
		})
	})
}

func TestErrorType(t *testing.T) {
	Convey("Status codes map onto error types", t, func() {
		So(middleware.ErrorType(500), ShouldEqual, "server_error")
		So(middleware.ErrorType(429), ShouldEqual, "rate_limit")
		So(middleware.ErrorType(404), ShouldEqual, "not_found")
		So(middleware.ErrorType(400), ShouldEqual, "client_error")
		So(middleware.ErrorType(200), ShouldEqual, "unknown")
	})
}

func countSeries() int {
	n, err := testutil.GatherAndCount(metrics.GetRegistry())
	if err != nil {
		return -1
	}
	return n
}
