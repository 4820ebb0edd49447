package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/samemean/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.SessionTTLSeconds, convey.ShouldEqual, 1800)
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SAMEMEAN_ADDR", ":8080")
			_ = os.Setenv("SAMEMEAN_SESSION_TTL_SECONDS", "60")
			_ = os.Setenv("SAMEMEAN_MAX_SESSIONS", "25")
			_ = os.Setenv("SAMEMEAN_STRICT_CONSISTENCY", "true")
			_ = os.Setenv("SAMEMEAN_CONSISTENCY_TOLERANCE", "5.5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SessionTTLSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 25)
				convey.So(cfg.StrictConsistency, convey.ShouldBeTrue)
				convey.So(cfg.ConsistencyTolerance, convey.ShouldEqual, 5.5)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
log_level: debug
catalog_path: /etc/samemean/datasets.yaml
session_cookie: widget
max_sessions: 300
`)
			_ = os.Setenv("SAMEMEAN_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file and keep defaults elsewhere", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.CatalogPath, convey.ShouldEqual, "/etc/samemean/datasets.yaml")
				convey.So(cfg.SessionCookie, convey.ShouldEqual, "widget")
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 300)
				convey.So(cfg.SessionTTLSeconds, convey.ShouldEqual, 1800)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
max_sessions: 300
`)
			_ = os.Setenv("SAMEMEAN_CONFIG", tmpFile)
			_ = os.Setenv("SAMEMEAN_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When a dotenv file is configured", func() {
			envFile := filepath.Join(t.TempDir(), "widget.env")
			err := os.WriteFile(envFile, []byte("SAMEMEAN_ADDR=:7070\nSAMEMEAN_LOG_FORMAT=json\n"), 0o600)
			convey.So(err, convey.ShouldBeNil)
			_ = os.Setenv("SAMEMEAN_ENV_FILE", envFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then its variables feed the env layer", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When the configured dotenv file does not exist", func() {
			_ = os.Setenv("SAMEMEAN_ENV_FILE", "/non/existent/widget.env")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("SAMEMEAN_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SAMEMEAN_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("SAMEMEAN_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SAMEMEAN_MAX_SESSIONS", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a zero session TTL", func() {
			_ = os.Setenv("SAMEMEAN_SESSION_TTL_SECONDS", "0")

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SAMEMEAN_CONFIG",
		"SAMEMEAN_ENV_FILE",
		"SAMEMEAN_ADDR",
		"SAMEMEAN_LOG_LEVEL",
		"SAMEMEAN_LOG_FORMAT",
		"SAMEMEAN_CATALOG_PATH",
		"SAMEMEAN_STRICT_CONSISTENCY",
		"SAMEMEAN_CONSISTENCY_TOLERANCE",
		"SAMEMEAN_SESSION_TTL_SECONDS",
		"SAMEMEAN_MAX_SESSIONS",
		"SAMEMEAN_SESSION_COOKIE",
		"SAMEMEAN_CLEANUP_INTERVAL_SECONDS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samemean-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
