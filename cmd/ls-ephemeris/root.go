package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/litescript/ls-ephemeris/internal/config"
	"github.com/litescript/ls-ephemeris/internal/ephem"
	"github.com/litescript/ls-ephemeris/internal/logging"
	"github.com/litescript/ls-ephemeris/internal/observability"
	"github.com/litescript/ls-ephemeris/internal/planetary"
	"github.com/litescript/ls-ephemeris/internal/timecodec"
	"github.com/litescript/ls-ephemeris/internal/version"
)

// app carries global flags and the dependencies built from them.
type app struct {
	envFile       string
	engine        string
	logLevel      string
	observer      string
	truePositions bool

	cfg       *config.Config
	log       *logging.Logger
	registry  *prometheus.Registry
	collector *observability.Collector
	shutdown  observability.ShutdownFunc

	runID     uuid.UUID
	startedAt time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ls-ephemeris",
		Short: "Planetary positions in every frame, zodiac and representation",
		Long: `ls-ephemeris computes complete planetary records: one body at one
instant, evaluated geocentrically, topocentrically and heliocentrically, in
the tropical and sidereal zodiacs, as ecliptical, equatorial and rectangular
coordinates.

Settings come from the environment (LSE_*) and an optional .env file;
flags override both.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	pf.StringVar(&a.engine, "engine", "", "calculation engine: analytic, jpl or horizons (default from LSE_ENGINE)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default from LSE_LOG_LEVEL)")
	pf.StringVar(&a.observer, "observer", "", "topocentric observer as lon,lat[,alt_m] in degrees and metres")
	pf.BoolVar(&a.truePositions, "true-positions", true, "compute true (geometric) positions; =false for apparent positions")

	root.AddCommand(
		newRecordCmd(a),
		newTableCmd(a),
		newBodiesCmd(),
		newRoundTripCmd(),
		newHorizonCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.engine != "" {
		cfg.Engine = a.engine
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("true-positions") {
		cfg.TruePositions = a.truePositions
	}
	if a.observer != "" {
		obs, err := parseObserver(a.observer)
		if err != nil {
			return err
		}
		cfg.Observer = &obs
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logging.New(logging.ParseLevel(cfg.LogLevel))
	a.log.SetOutput(cmd.ErrOrStderr())

	shutdown, err := observability.InitTracing(cmd.Context(), cfg.TracingConfig(), a.log.Named("tracing"))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.shutdown = shutdown

	a.registry = prometheus.NewRegistry()
	a.collector, err = observability.NewCollector(a.registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	a.runID = uuid.New()
	a.startedAt = time.Now()
	a.log.Debug("command start: %s (run %s, engine %s)", cmd.CommandPath(), a.runID, cfg.Engine)
	return nil
}

func (a *app) teardown(cmd *cobra.Command, _ []string) {
	observability.ShutdownWithTimeout(cmd.Context(), a.shutdown, a.log)
	if a.log != nil {
		a.log.Debug("command end: %s (run %s) in %v", cmd.CommandPath(), a.runID, time.Since(a.startedAt))
	}
}

// openSession returns an initialized session. The caller must Shutdown it.
func (a *app) openSession() (*planetary.Session, error) {
	sess := planetary.NewSession(a.cfg.SessionConfig(),
		planetary.WithLogger(a.log.Named("planetary")),
		planetary.WithMetrics(a.collector),
	)
	if err := sess.Initialize(); err != nil {
		return nil, err
	}
	return sess, nil
}

// explain adds a hint to errors a user can fix with a flag.
func explain(err error) error {
	if errors.Is(err, ephem.ErrObserverNotSet) || errors.Is(err, planetary.ErrNoObserver) {
		return fmt.Errorf("%w (set --observer lon,lat[,alt] or LSE_OBSERVER_LON/LSE_OBSERVER_LAT)", err)
	}
	return err
}

// parseObserver parses "lon,lat[,alt]".
func parseObserver(s string) (planetary.Observer, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return planetary.Observer{}, fmt.Errorf("%w: want lon,lat[,alt], got %q", planetary.ErrInvalidObserver, s)
	}

	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return planetary.Observer{}, fmt.Errorf("%w: %q: %v", planetary.ErrInvalidObserver, p, err)
		}
		vals[i] = v
	}

	obs := planetary.Observer{LonDeg: vals[0], LatDeg: vals[1], AltMeters: vals[2]}
	if err := obs.Validate(); err != nil {
		return planetary.Observer{}, err
	}
	return obs, nil
}

// parseAt parses an --at value; empty means now.
func parseAt(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	return timecodec.ParseInstant(s)
}
