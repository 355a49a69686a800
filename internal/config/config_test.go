package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lab-grader/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GITHUB_STEP_SUMMARY", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, 10*time.Minute, cfg.ReportCacheTTL)
	require.Equal(t, "artifacts", cfg.ArtifactsDir)
	require.Equal(t, "index.html", cfg.MarkupName)
	require.Equal(t, "styles.css", cfg.StylesheetName)
	require.True(t, cfg.Deadline.IsZero())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("GEMA_APP_PORT", ":9090")
	t.Setenv("GEMA_DATABASE_DRIVER", "SQLite")
	t.Setenv("GEMA_REPORT_CACHE_TTL", "30s")
	t.Setenv("GEMA_GRADER_DEADLINE", "2026-02-01T12:00:00+03:00")
	t.Setenv("GEMA_GRADER_ARTIFACTS_DIR", "out")
	t.Setenv("GITHUB_STEP_SUMMARY", "/tmp/summary.md")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, 30*time.Second, cfg.ReportCacheTTL)
	require.Equal(t, "out", cfg.ArtifactsDir)
	require.Equal(t, "/tmp/summary.md", cfg.StepSummary)
	require.True(t, cfg.Deadline.Equal(time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)))
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("GEMA_REPORT_CACHE_TTL", "soon")
	_, err := config.Load()
	require.Error(t, err)

	t.Setenv("GEMA_REPORT_CACHE_TTL", "1m")
	t.Setenv("GEMA_GRADER_DEADLINE", "tomorrow")
	_, err = config.Load()
	require.Error(t, err)

	t.Setenv("GEMA_GRADER_DEADLINE", "")
	t.Setenv("GEMA_DATABASE_DRIVER", "mysql")
	_, err = config.Load()
	require.ErrorIs(t, err, config.ErrUnsupportedDatabase)
}

func TestValidateServer(t *testing.T) {
	cfg := config.Config{}
	require.ErrorIs(t, cfg.ValidateServer(), config.ErrJWTSecretMissing)

	cfg.JWTSecret = "secret"
	require.ErrorIs(t, cfg.ValidateServer(), config.ErrDatabaseURLMissing)

	cfg.DatabaseURL = "file::memory:"
	require.NoError(t, cfg.ValidateServer())
}
