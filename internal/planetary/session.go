// Package planetary assembles complete planetary records: one body at one
// instant, evaluated in every frame, zodiac and representation.
package planetary

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/litescript/ls-ephemeris/internal/catalog"
	"github.com/litescript/ls-ephemeris/internal/ephem"
	"github.com/litescript/ls-ephemeris/internal/flags"
	"github.com/litescript/ls-ephemeris/internal/logging"
	"github.com/litescript/ls-ephemeris/internal/timecodec"
)

// DistanceTolerance bounds the disagreement, in AU, between the distance of
// the ecliptical call and that of the equatorial call.
const DistanceTolerance = 1e-6

const tracerName = "github.com/litescript/ls-ephemeris/internal/planetary"

// Observer is a topocentric observer location.
type Observer struct {
	LonDeg    float64 `json:"lon_deg"`
	LatDeg    float64 `json:"lat_deg"`
	AltMeters float64 `json:"alt_m"`
}

// Validate checks the coordinate ranges.
func (o Observer) Validate() error {
	switch {
	case math.IsNaN(o.LonDeg) || o.LonDeg < -180 || o.LonDeg > 180:
		return fmt.Errorf("%w: longitude %v not in [-180, 180]", ErrInvalidObserver, o.LonDeg)
	case math.IsNaN(o.LatDeg) || o.LatDeg < -90 || o.LatDeg > 90:
		return fmt.Errorf("%w: latitude %v not in [-90, 90]", ErrInvalidObserver, o.LatDeg)
	case math.IsNaN(o.AltMeters) || math.IsInf(o.AltMeters, 0):
		return fmt.Errorf("%w: altitude %v", ErrInvalidObserver, o.AltMeters)
	}
	return nil
}

// Config configures a Session. The zero value computes true (geometric)
// positions with the analytic engine.
type Config struct {
	Engine ephem.Config
	// ApparentPositions applies light time and aberration instead of
	// returning true positions.
	ApparentPositions bool
	Observer          *Observer // applied by Initialize when set
}

// Metrics receives per-record measurements.
type Metrics interface {
	ObserveRecord(body string, d time.Duration, err error)
	ObserveDistanceMismatch(body string, mode flags.Mode, delta float64)
}

type nopMetrics struct{}

func (nopMetrics) ObserveRecord(string, time.Duration, error)             {}
func (nopMetrics) ObserveDistanceMismatch(string, flags.Mode, float64) {}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *Session) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the tracer used for record spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Session) { s.tracer = t }
}

// WithCalculator makes Initialize use c instead of opening the engine
// described by Config.Engine. The session still closes c on Shutdown.
func WithCalculator(c ephem.Calculator) Option {
	return func(s *Session) { s.calc = c }
}

type lifecycle int

const (
	lifecycleNew lifecycle = iota
	lifecycleReady
	lifecycleClosed
)

// Session owns one calculator and its mode registry. All methods are
// serialised by a single mutex; records are computed one at a time.
//
// ComputeRecord and SetObserverLocation panic with ErrNotInitialized before
// Initialize and with ErrShutdown after Shutdown.
type Session struct {
	mu sync.Mutex

	id      uuid.UUID
	cfg     Config
	log     *logging.Logger
	metrics Metrics
	tracer  trace.Tracer

	state    lifecycle
	calc     ephem.Calculator
	registry *flags.Registry
	observer *Observer
}

// NewSession creates an uninitialised session.
func NewSession(cfg Config, opts ...Option) *Session {
	s := &Session{
		id:       uuid.New(),
		cfg:      cfg,
		log:      logging.Discard(),
		metrics:  nopMetrics{},
		registry: flags.NewRegistry(flags.MoshierEph),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// ID returns the session identifier used in logs and spans.
func (s *Session) ID() string {
	return s.id.String()
}

// Initialize opens the calculation engine and fixes the session bits.
// Calling it again on a ready session does nothing.
func (s *Session) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case lifecycleReady:
		return nil
	case lifecycleClosed:
		panic(ErrShutdown)
	}

	if s.calc == nil {
		calc, err := ephem.Open(s.cfg.Engine, s.log.Named("ephem"))
		if err != nil {
			return fmt.Errorf("initialize engine: %w", err)
		}
		s.calc = calc
	}

	engine := flags.MoshierEph
	if ef, ok := s.calc.(interface{ EngineFlag() flags.Flags }); ok {
		engine = ef.EngineFlag()
	}
	s.registry.SetEngine(engine)
	s.registry.SetTruePositions(!s.cfg.ApparentPositions)

	if s.cfg.Observer != nil {
		if err := s.cfg.Observer.Validate(); err != nil {
			return err
		}
		s.setObserverLocked(*s.cfg.Observer)
	}

	s.state = lifecycleReady
	s.log.Info("session %s ready: engine %s, flags %s", s.id, s.calc.Name(), s.registry.ComposedFlags())
	return nil
}

// SetObserverLocation sets the topocentric observer. Longitude comes first,
// then latitude, in degrees; altitude is in metres.
func (s *Session) SetObserverLocation(lonDeg, latDeg, altMeters float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeReady()

	obs := Observer{LonDeg: lonDeg, LatDeg: latDeg, AltMeters: altMeters}
	if err := obs.Validate(); err != nil {
		return err
	}
	s.setObserverLocked(obs)
	return nil
}

func (s *Session) setObserverLocked(obs Observer) {
	s.calc.SetTopo(obs.LonDeg, obs.LatDeg, obs.AltMeters)
	s.observer = &obs
	s.log.Info("observer set: lon %.4f lat %.4f alt %.0fm", obs.LonDeg, obs.LatDeg, obs.AltMeters)
}

// Observer returns the current observer, if one is set.
func (s *Session) Observer() (Observer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observer == nil {
		return Observer{}, false
	}
	return *s.observer, true
}

// EngineName returns the name of the open calculator.
func (s *Session) EngineName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeReady()
	return s.calc.Name()
}

// Mode returns the mode the registry was last set to.
func (s *Session) Mode() flags.Mode {
	return s.registry.Mode()
}

// ComposedFlags returns the registry's current bitmask.
func (s *Session) ComposedFlags() flags.Flags {
	return s.registry.ComposedFlags()
}

// Shutdown closes the calculator. The session cannot be used afterwards.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == lifecycleClosed {
		panic(ErrShutdown)
	}
	s.state = lifecycleClosed

	if s.calc == nil {
		return nil
	}
	if err := s.calc.Close(); err != nil {
		return fmt.Errorf("shutdown engine: %w", err)
	}
	s.log.Info("session %s shut down", s.id)
	return nil
}

func (s *Session) mustBeReady() {
	switch s.state {
	case lifecycleNew:
		panic(ErrNotInitialized)
	case lifecycleClosed:
		panic(ErrShutdown)
	}
}

// ComputeRecord evaluates body at t in all 18 modes. Any failed primitive
// call fails the whole record with a *CalculationError. Afterwards the
// registry holds the last mode iterated (heliocentric, sidereal,
// rectangular).
func (s *Session) ComputeRecord(ctx context.Context, body catalog.ID, t time.Time) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeReady()

	_, span := s.tracer.Start(ctx, "planetary.ComputeRecord", trace.WithAttributes(
		attribute.String("session.id", s.id.String()),
		attribute.Int("body.id", int(body)),
	))
	defer span.End()

	rec, err := s.computeLocked(body, t)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Record{}, err
	}
	span.SetAttributes(
		attribute.String("body.name", rec.Name),
		attribute.Float64("day_number", rec.DayNumber),
	)
	return rec, nil
}

// ComputeRecords evaluates several bodies at one instant. A nil list means
// every catalog body. The first failure aborts the batch.
func (s *Session) ComputeRecords(ctx context.Context, bodies []catalog.ID, t time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeReady()

	if bodies == nil {
		bodies = catalog.All()
	}

	_, span := s.tracer.Start(ctx, "planetary.ComputeRecords", trace.WithAttributes(
		attribute.String("session.id", s.id.String()),
		attribute.Int("bodies", len(bodies)),
	))
	defer span.End()

	records := make([]Record, 0, len(bodies))
	for _, body := range bodies {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return nil, err
		}
		rec, err := s.computeLocked(body, t)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Session) computeLocked(body catalog.ID, t time.Time) (rec Record, err error) {
	start := time.Now()
	label := body.String()
	defer func() {
		s.metrics.ObserveRecord(label, time.Since(start), err)
	}()

	name, err := catalog.NameForIdentifier(body)
	if err != nil {
		return Record{}, err
	}
	label = name

	jd, err := timecodec.ToDayNumber(t)
	if err != nil {
		return Record{}, err
	}

	rec = Record{Name: name, ID: body, Time: t, DayNumber: jd}
	for _, m := range flags.AllModes() {
		s.registry.SetReferenceFrame(m.Frame)
		s.registry.SetZodiac(m.Zodiac)
		s.registry.SetCoordinateRepresentation(m.Representation)
		fl := s.registry.ComposedFlags()

		vals, err := s.calc.Calc(jd, body, fl)
		if err != nil {
			return Record{}, &CalculationError{Body: body, DayNumber: jd, Mode: m, Flags: fl, Err: err}
		}
		rec.frame(m.Frame).zodiac(m.Zodiac).set(m.Representation, vals)
	}

	s.checkDistances(rec)
	s.log.Debug("record %s jd=%.6f in %v", name, jd, time.Since(start))
	return rec, nil
}

// checkDistances compares the ecliptical and equatorial distances of each
// frame and zodiac. Disagreements are reported, never corrected.
func (s *Session) checkDistances(rec Record) {
	for _, f := range flags.AllFrames {
		for _, z := range flags.AllZodiacs {
			c := rec.Frame(f).Zodiac(z)
			delta := math.Abs(c.Distance - c.EquatorialDistance)
			if delta <= DistanceTolerance {
				continue
			}
			m := flags.Mode{Frame: f, Zodiac: z}
			s.log.Warn("%s %s/%s: ecliptical distance %.9f and equatorial distance %.9f differ by %.3g AU",
				rec.Name, f, z, c.Distance, c.EquatorialDistance, delta)
			s.metrics.ObserveDistanceMismatch(rec.Name, m, delta)
		}
	}
}
