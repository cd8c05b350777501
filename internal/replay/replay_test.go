package replay_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/perfectcircle/internal/adapters/http/api"
	service "github.com/okian/perfectcircle/internal/app"
	"github.com/okian/perfectcircle/internal/domain/scoring"
	"github.com/okian/perfectcircle/internal/replay"
)

func newServer(t *testing.T, opts ...service.Option) *httptest.Server {
	t.Helper()
	svc := service.New(opts...)
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestRun(t *testing.T) {
	convey.Convey("Given a server with default scoring", t, func() {
		ts := newServer(t)

		convey.Convey("When 20 samples are replayed", func() {
			stats, err := replay.Run(context.Background(), replay.Config{BaseURL: ts.URL + "/", Count: 20, Seed: 3})

			convey.Convey("Then every score matches local scoring", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stats.Submitted, convey.ShouldEqual, 20)
				convey.So(stats.Failed, convey.ShouldEqual, 0)
				convey.So(stats.Insufficient, convey.ShouldEqual, 4)
				convey.So(stats.Scored, convey.ShouldEqual, 16)
				convey.So(stats.Mismatches, convey.ShouldBeEmpty)
			})
		})
	})

	convey.Convey("Given a server with stricter scoring than the replay expects", t, func() {
		p := scoring.DefaultParams()
		p.Leniency = 0.05
		ts := newServer(t, service.WithScoringParams(p))

		convey.Convey("When samples are replayed with default params", func() {
			stats, err := replay.Run(context.Background(), replay.Config{BaseURL: ts.URL, Count: 10, Seed: 3})

			convey.Convey("Then mismatches are reported", func() {
				convey.So(errors.Is(err, replay.ErrMismatch), convey.ShouldBeTrue)
				convey.So(stats.Mismatches, convey.ShouldNotBeEmpty)
			})
		})
	})

	convey.Convey("Given an unhealthy server", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer ts.Close()

		convey.Convey("Then the run stops before submitting", func() {
			stats, err := replay.Run(context.Background(), replay.Config{BaseURL: ts.URL, Count: 5})
			convey.So(errors.Is(err, replay.ErrUnhealthy), convey.ShouldBeTrue)
			convey.So(stats.Submitted, convey.ShouldEqual, 0)
		})
	})
}
