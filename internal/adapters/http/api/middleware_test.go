package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/racebet/pkg/logger"
	"github.com/okian/racebet/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func TestClassifyStatus(t *testing.T) {
	Convey("Given error statuses returned by the race handlers", t, func() {
		cases := []struct {
			status   int
			kind     string
			severity string
		}{
			{http.StatusServiceUnavailable, "server_error", "high"},
			{http.StatusTooManyRequests, "backpressure", "medium"},
			{http.StatusConflict, "conflict", "low"},
			{http.StatusMethodNotAllowed, "method_not_allowed", "low"},
			{http.StatusNotFound, "not_found", "low"},
			{http.StatusBadRequest, "client_error", "medium"},
		}

		Convey("Then each maps to its error labels", func() {
			for _, c := range cases {
				kind, severity := classifyStatus(c.status)
				So(kind, ShouldEqual, c.kind)
				So(severity, ShouldEqual, c.severity)
			}
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given an instrumented handler", t, func() {
		handler := MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.WriteHeader(http.StatusOK)
		}, "mw_test")

		Convey("When it answers twice", func() {
			before, _ := testutil.GatherAndCount(metrics.GetRegistry(), "racebet_engine_http_requests_total")
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodPost, "/games", nil))

			Convey("Then the first status is the one recorded", func() {
				So(rec.Code, ShouldEqual, http.StatusConflict)
				after, err := testutil.GatherAndCount(metrics.GetRegistry(), "racebet_engine_http_requests_total")
				So(err, ShouldBeNil)
				So(after, ShouldBeGreaterThanOrEqualTo, before)
			})
		})
	})
}

func TestMetricsMiddlewareWithoutLogger(t *testing.T) {
	Convey("Given no global logger", t, func() {
		logger.Reset()
		defer func() { _ = logger.Init(logger.WithWriter(io.Discard)) }()

		handler := MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}, "mw_nolog")

		Convey("Then a failed request is still served", func() {
			rec := httptest.NewRecorder()
			So(func() { handler(rec, httptest.NewRequest(http.MethodPost, "/results", nil)) }, ShouldNotPanic)
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
		})
	})
}
