package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/heatboard/heatboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.SnapshotChunkSize, convey.ShouldEqual, 4000)
				convey.So(cfg.SnapshotTTLHours, convey.ShouldEqual, 24*28)
				convey.So(cfg.ChartLegendLimit, convey.ShouldEqual, 20)
				convey.So(cfg.PollIntervalS, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("HEATBOARD_ADDR", ":8080")
			_ = os.Setenv("HEATBOARD_TASK_ID", "ahc099_a")
			_ = os.Setenv("HEATBOARD_SHEET_URL", "https://example.test/sheet/")
			_ = os.Setenv("HEATBOARD_SNAPSHOT_CHUNK_SIZE", "100")
			_ = os.Setenv("HEATBOARD_POLL_INTERVAL_S", "300")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TaskID, convey.ShouldEqual, "ahc099_a")
				convey.So(cfg.SheetURL, convey.ShouldEqual, "https://example.test/sheet/")
				convey.So(cfg.SnapshotChunkSize, convey.ShouldEqual, 100)
				convey.So(cfg.PollIntervalS, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":9090"
task_id: "ahc100_b"
snapshot_ttl_hours: 48
chart_legend_limit: 10
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("HEATBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.TaskID, convey.ShouldEqual, "ahc100_b")
				convey.So(cfg.SnapshotTTLHours, convey.ShouldEqual, 48)
				convey.So(cfg.ChartLegendLimit, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When the config is invalid", func() {
			_ = os.Setenv("HEATBOARD_SHEET_URL", "https://example.test/sheet")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should report an invalid config", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"HEATBOARD_CONFIG",
		"HEATBOARD_ADDR",
		"HEATBOARD_TASK_ID",
		"HEATBOARD_SHEET_URL",
		"HEATBOARD_SNAPSHOT_CHUNK_SIZE",
		"HEATBOARD_SNAPSHOT_TTL_HOURS",
		"HEATBOARD_POLL_INTERVAL_S",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}
