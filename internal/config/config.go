// Package config loads settings from the environment and an optional .env
// file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/litescript/ls-ephemeris/internal/ephem"
	"github.com/litescript/ls-ephemeris/internal/observability"
	"github.com/litescript/ls-ephemeris/internal/planetary"
)

// Config holds application configuration.
type Config struct {
	// Engine
	Engine        string
	EphePath      string
	JPLFile       string
	HorizonsURL   string
	TruePositions bool

	// Observer, nil unless both LSE_OBSERVER_LON and LSE_OBSERVER_LAT are set
	Observer *planetary.Observer

	// Logging
	LogLevel string

	// Watch
	WatchInterval time.Duration
	MetricsAddr   string

	// Tracing
	Tracing            bool
	TracingExporter    string
	OTLPEndpoint       string
	TracingSampleRatio float64
}

// Load reads the given .env files (".env" when none are named), then the
// environment. Missing .env files are not an error; variables already set
// in the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	jplFile := getEnv("LSE_JPL_FILE", "")
	defaultEngine := "analytic"
	if jplFile != "" {
		defaultEngine = "jpl"
	}

	cfg := &Config{
		Engine:        getEnv("LSE_ENGINE", defaultEngine),
		EphePath:      getEnv("LSE_EPHE_PATH", ""),
		JPLFile:       jplFile,
		HorizonsURL:   getEnv("LSE_HORIZONS_URL", ""),
		TruePositions: getBoolEnv("LSE_TRUE_POSITIONS", true),

		LogLevel: getEnv("LSE_LOG_LEVEL", "info"),

		WatchInterval: getDurationEnv("LSE_WATCH_INTERVAL", 10*time.Second),
		MetricsAddr:   getEnv("LSE_METRICS_ADDR", ""),

		Tracing:            getBoolEnv("LSE_TRACING", false),
		TracingExporter:    strings.ToLower(getEnv("LSE_TRACING_EXPORTER", "stdout")),
		OTLPEndpoint:       getEnv("LSE_OTLP_ENDPOINT", ""),
		TracingSampleRatio: getRatioEnv("LSE_TRACING_SAMPLE_RATIO", 1),
	}

	obs, err := observerFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Observer = obs

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that Load cannot default, so callers that
// override fields after Load can re-check them.
func (c *Config) Validate() error {
	if _, err := ephem.ParseKind(c.Engine); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// EphemConfig returns the engine settings. The engine name must have
// passed Validate.
func (c *Config) EphemConfig() ephem.Config {
	kind, _ := ephem.ParseKind(c.Engine)
	return ephem.Config{
		Kind:        kind,
		EphePath:    c.EphePath,
		JPLFile:     c.JPLFile,
		HorizonsURL: c.HorizonsURL,
	}
}

// SessionConfig returns the planetary session settings.
func (c *Config) SessionConfig() planetary.Config {
	return planetary.Config{
		Engine:            c.EphemConfig(),
		ApparentPositions: !c.TruePositions,
		Observer:          c.Observer,
	}
}

// TracingConfig returns the tracing settings.
func (c *Config) TracingConfig() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.Tracing,
		ServiceName: "ls-ephemeris",
		Exporter:    c.TracingExporter,
		Endpoint:    c.OTLPEndpoint,
		SampleRatio: c.TracingSampleRatio,
	}
}

func observerFromEnv() (*planetary.Observer, error) {
	lonStr, latStr := os.Getenv("LSE_OBSERVER_LON"), os.Getenv("LSE_OBSERVER_LAT")
	if lonStr == "" && latStr == "" {
		return nil, nil
	}
	if lonStr == "" || latStr == "" {
		return nil, fmt.Errorf("LSE_OBSERVER_LON and LSE_OBSERVER_LAT must be set together")
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, fmt.Errorf("LSE_OBSERVER_LON: %w", err)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("LSE_OBSERVER_LAT: %w", err)
	}
	alt := 0.0
	if s := os.Getenv("LSE_OBSERVER_ALT"); s != "" {
		if alt, err = strconv.ParseFloat(s, 64); err != nil {
			return nil, fmt.Errorf("LSE_OBSERVER_ALT: %w", err)
		}
	}

	obs := &planetary.Observer{LonDeg: lon, LatDeg: lat, AltMeters: alt}
	if err := obs.Validate(); err != nil {
		return nil, err
	}
	return obs, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getRatioEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 && f <= 1 {
			return f
		}
	}
	return defaultValue
}
