package config_test

import (
	"errors"
	"testing"

	"github.com/okian/perfectcircle/internal/config"
	"github.com/okian/perfectcircle/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.MinPoints, convey.ShouldEqual, 9)
			convey.So(cfg.HighScoreThreshold, convey.ShouldEqual, 90)
			convey.So(cfg.MaxStrokePoints, convey.ShouldEqual, 10_000)
			convey.So(cfg.ScoringParams(), convey.ShouldResemble, scoring.DefaultParams())
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid field each", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = "" },
			"zero min points":   func(c *config.Config) { c.MinPoints = 0 },
			"zero leniency":     func(c *config.Config) { c.Leniency = 0 },
			"negative weight":   func(c *config.Config) { c.WeightPerimeter = -0.1 },
			"all zero weights":  func(c *config.Config) { c.WeightCircularity, c.WeightPerimeter, c.WeightClosure = 0, 0, 0 },
			"threshold too big": func(c *config.Config) { c.HighScoreThreshold = 101 },
			"threshold < 0":     func(c *config.Config) { c.HighScoreThreshold = -1 },
			"tiny stroke bound": func(c *config.Config) { c.MaxStrokePoints = 3 },
		}

		convey.Convey("Then each is rejected as invalid", func() {
			for _, mutate := range cases {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})
	})
}
