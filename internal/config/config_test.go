package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-ephemeris/internal/ephem"
	"github.com/litescript/ls-ephemeris/internal/planetary"
)

var envVars = []string{
	"LSE_ENGINE", "LSE_EPHE_PATH", "LSE_JPL_FILE", "LSE_HORIZONS_URL", "LSE_TRUE_POSITIONS",
	"LSE_OBSERVER_LON", "LSE_OBSERVER_LAT", "LSE_OBSERVER_ALT",
	"LSE_LOG_LEVEL", "LSE_WATCH_INTERVAL", "LSE_METRICS_ADDR",
	"LSE_TRACING", "LSE_TRACING_EXPORTER", "LSE_OTLP_ENDPOINT", "LSE_TRACING_SAMPLE_RATIO",
}

// clearEnv unsets every LSE_ variable for the duration of the test. The
// t.Setenv calls also restore anything a .env file sets.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "analytic", cfg.Engine)
	assert.Equal(t, "", cfg.JPLFile)
	assert.True(t, cfg.TruePositions)
	assert.False(t, cfg.SessionConfig().ApparentPositions)
	assert.Nil(t, cfg.Observer)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.WatchInterval)
	assert.Equal(t, "", cfg.MetricsAddr)
	assert.False(t, cfg.Tracing)
	assert.Equal(t, "stdout", cfg.TracingExporter)
	assert.Equal(t, 1.0, cfg.TracingSampleRatio)

	assert.Equal(t, ephem.KindAnalytic, cfg.EphemConfig().Kind)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("LSE_EPHE_PATH", "/data/ephe")
	t.Setenv("LSE_JPL_FILE", "de440.bin")
	t.Setenv("LSE_TRUE_POSITIONS", "false")
	t.Setenv("LSE_OBSERVER_LON", "-0.1278")
	t.Setenv("LSE_OBSERVER_LAT", "51.5074")
	t.Setenv("LSE_OBSERVER_ALT", "11")
	t.Setenv("LSE_WATCH_INTERVAL", "1m")
	t.Setenv("LSE_TRACING", "1")
	t.Setenv("LSE_TRACING_EXPORTER", "OTLP")
	t.Setenv("LSE_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("LSE_TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "jpl", cfg.Engine, "a DE file selects the jpl engine")
	assert.False(t, cfg.TruePositions)
	require.NotNil(t, cfg.Observer)
	assert.Equal(t, planetary.Observer{LonDeg: -0.1278, LatDeg: 51.5074, AltMeters: 11}, *cfg.Observer)
	assert.Equal(t, time.Minute, cfg.WatchInterval)

	ec := cfg.EphemConfig()
	assert.Equal(t, ephem.KindJPL, ec.Kind)
	assert.Equal(t, "/data/ephe", ec.EphePath)

	sc := cfg.SessionConfig()
	assert.True(t, sc.ApparentPositions)
	assert.Equal(t, cfg.Observer, sc.Observer)

	tc := cfg.TracingConfig()
	assert.True(t, tc.Enabled)
	assert.Equal(t, "otlp", tc.Exporter)
	assert.Equal(t, "collector:4317", tc.Endpoint)
	assert.Equal(t, 0.25, tc.SampleRatio)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("LSE_WATCH_INTERVAL", "soon")
	t.Setenv("LSE_TRUE_POSITIONS", "maybe")
	t.Setenv("LSE_TRACING_SAMPLE_RATIO", "2")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.WatchInterval)
	assert.True(t, cfg.TruePositions)
	assert.Equal(t, 1.0, cfg.TracingSampleRatio)
}

func TestLoad_UnknownEngine(t *testing.T) {
	clearEnv(t)
	t.Setenv("LSE_ENGINE", "horizns")

	_, err := Load(missingEnvFile(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ephem.ErrUnknownEngine)
	assert.Contains(t, err.Error(), "horizns")
}

func TestValidate_AfterOverride(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cfg.Engine = "DE"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ephem.KindJPL, cfg.EphemConfig().Kind)

	cfg.Engine = "swisseph"
	assert.ErrorIs(t, cfg.Validate(), ephem.ErrUnknownEngine)
}

func TestLoad_ObserverErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"only longitude", map[string]string{"LSE_OBSERVER_LON": "10"}},
		{"bad latitude", map[string]string{"LSE_OBSERVER_LON": "10", "LSE_OBSERVER_LAT": "north"}},
		{"bad altitude", map[string]string{"LSE_OBSERVER_LON": "10", "LSE_OBSERVER_LAT": "5", "LSE_OBSERVER_ALT": "high"}},
		{"out of range", map[string]string{"LSE_OBSERVER_LON": "200", "LSE_OBSERVER_LAT": "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(missingEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LSE_ENGINE=horizons\nLSE_LOG_LEVEL=debug\nLSE_HORIZONS_URL=http://localhost:9999/api\n"), 0o600))
	t.Setenv("LSE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "horizons", cfg.Engine)
	assert.Equal(t, "warn", cfg.LogLevel, "environment wins over the file")
	assert.Equal(t, ephem.KindHorizons, cfg.EphemConfig().Kind)
	assert.Equal(t, "http://localhost:9999/api", cfg.EphemConfig().HorizonsURL)
}
