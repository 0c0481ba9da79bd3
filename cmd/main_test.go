package main

import (
	"context"
	"os"
	"testing"

	"github.com/okian/racebet/internal/config"
	"github.com/okian/racebet/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("RACEBET_ADDR", ":8080")
			_ = os.Setenv("RACEBET_QUEUE_SIZE", "1000")
			_ = os.Setenv("RACEBET_STORE__DRIVER", "sqlite")
			defer func() {
				_ = os.Unsetenv("RACEBET_ADDR")
				_ = os.Unsetenv("RACEBET_QUEUE_SIZE")
				_ = os.Unsetenv("RACEBET_STORE__DRIVER")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.Store.Driver, convey.ShouldEqual, config.DriverSQLite)
			})
		})

		convey.Convey("When the address is blank", func() {
			_ = os.Setenv("RACEBET_ADDR", "")
			defer func() { _ = os.Unsetenv("RACEBET_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestSetupLogging(t *testing.T) {
	convey.Convey("Given a loaded configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()
		defer func() { _ = logger.Init() }()

		convey.Convey("When the level is invalid", func() {
			cfg.LogLevel = "loud"

			convey.Convey("Then logging still initializes", func() {
				convey.So(setupLogging(ctx, cfg), convey.ShouldBeNil)
			})
		})

		convey.Convey("When json output is requested", func() {
			cfg.LogFormat = "json"

			convey.Convey("Then logging initializes", func() {
				convey.So(setupLogging(ctx, cfg), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the format is unknown", func() {
			cfg.LogFormat = "xml"

			convey.Convey("Then an error is returned", func() {
				convey.So(setupLogging(ctx, cfg), convey.ShouldNotBeNil)
			})
		})
	})
}
