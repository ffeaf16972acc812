package main

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/versuslab/versus/internal/adapters/http/api"
	app "github.com/versuslab/versus/internal/app"
	"github.com/versuslab/versus/internal/config"
	"github.com/versuslab/versus/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			t.Setenv("VERSUS_ADDR", ":8080")
			t.Setenv("VERSUS_QUEUE_SIZE", "1000")
			t.Setenv("VERSUS_WORKER_COUNT", "4")

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithKFactor(24),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When wiring the HTTP layer", func() {
			svc := app.New()

			convey.Convey("Then routes should register without starting the service", func() {
				ctx := context.Background()
				mux := http.NewServeMux()
				server := api.NewServer(svc)
				convey.So(server, convey.ShouldNotBeNil)
				convey.So(func() { server.Register(ctx, mux) }, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When the configured address is empty", func() {
			t.Setenv("VERSUS_ADDR", "")

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When service options carry zero values", func() {
			convey.Convey("Then defaults stay in place", func() {
				svc := app.New(
					app.WithWorkerCount(0),
					app.WithQueueSize(0),
					app.WithSessionTTL(0),
				)
				convey.So(svc, convey.ShouldNotBeNil)
				stats := svc.GetStats(context.Background())
				convey.So(stats["started"], convey.ShouldBeFalse)
			})
		})
	})
}
