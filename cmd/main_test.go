package main

import (
	"context"
	"os"
	"testing"

	"github.com/heatboard/heatboard/internal/adapters/snapshot"
	"github.com/heatboard/heatboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainConfiguration(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("HEATBOARD_ADDR", ":8080")
			_ = os.Setenv("HEATBOARD_TASK_ID", "ahc001_a")
			defer func() {
				_ = os.Unsetenv("HEATBOARD_ADDR")
				_ = os.Unsetenv("HEATBOARD_TASK_ID")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TaskID, convey.ShouldEqual, "ahc001_a")
			})
		})
	})
}

func TestBuildStore(t *testing.T) {
	convey.Convey("Given the store builder", t, func() {
		ctx := context.Background()

		convey.Convey("When no snapshot directory is configured", func() {
			store, err := buildStore(config.New(ctx))

			convey.Convey("Then the in-memory backend is selected", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := store.(*snapshot.MemoryStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a snapshot directory is configured", func() {
			cfg := config.New(ctx)
			cfg.SnapshotDir = t.TempDir()
			store, err := buildStore(cfg)

			convey.Convey("Then the file backend is selected", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := store.(*snapshot.FileStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})
	})
}
