package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrJWTSecretMissing is returned by ValidateServer when no signing secret is set.
	ErrJWTSecretMissing = errors.New("jwt secret must be provided")
	// ErrDatabaseURLMissing is returned by ValidateServer when the store has no DSN.
	ErrDatabaseURLMissing = errors.New("database url must be provided")
	// ErrUnsupportedDatabase is returned for a driver other than postgres or sqlite.
	ErrUnsupportedDatabase = errors.New("database driver must be postgres or sqlite")
)

// Config holds runtime configuration for the grader CLI and the API service.
type Config struct {
	AppName  string
	AppEnv   string
	AppPort  string
	LogLevel string

	DatabaseDriver string
	DatabaseURL    string
	RedisURL       string
	ReportCacheTTL time.Duration
	JWTSecret      string
	NATSURL        string
	NATSSubject    string

	GraderRoot     string
	ArtifactsDir   string
	MarkupName     string
	StylesheetName string
	// Deadline overrides the lab deadline when set.
	Deadline    time.Time
	StepSummary string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// ValidateServer checks the settings only the API needs. The CLI runs
// without them.
func (c Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return ErrJWTSecretMissing
	}
	if c.DatabaseURL == "" {
		return ErrDatabaseURLMissing
	}
	return nil
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("grader.step_summary", "GEMA_GRADER_STEP_SUMMARY", "GITHUB_STEP_SUMMARY")

	v.SetDefault("app.name", "GEMA Lab Grader")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("report.cache_ttl", "10m")
	v.SetDefault("nats.subject", "gema.weblab.graded")
	v.SetDefault("grader.root", ".")
	v.SetDefault("grader.artifacts_dir", "artifacts")
	v.SetDefault("grader.markup_name", "index.html")
	v.SetDefault("grader.stylesheet_name", "styles.css")

	ttlString := v.GetString("report.cache_ttl")
	if ttlString == "" {
		ttlString = "10m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid report cache ttl: %w", err)
	}

	var deadline time.Time
	if raw := v.GetString("grader.deadline"); raw != "" {
		deadline, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid grader deadline: %w", err)
		}
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		LogLevel:       strings.ToLower(v.GetString("log.level")),
		DatabaseDriver: strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:    v.GetString("database.url"),
		RedisURL:       v.GetString("redis.url"),
		ReportCacheTTL: ttl,
		JWTSecret:      v.GetString("jwt.secret"),
		NATSURL:        v.GetString("nats.url"),
		NATSSubject:    v.GetString("nats.subject"),
		GraderRoot:     v.GetString("grader.root"),
		ArtifactsDir:   v.GetString("grader.artifacts_dir"),
		MarkupName:     v.GetString("grader.markup_name"),
		StylesheetName: v.GetString("grader.stylesheet_name"),
		Deadline:       deadline,
		StepSummary:    v.GetString("grader.step_summary"),
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedDatabase, cfg.DatabaseDriver)
	}

	return cfg, nil
}
