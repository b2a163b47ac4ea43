// Package observability wires Prometheus metrics and OpenTelemetry tracing
// for planetary sessions.
package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-ephemeris/internal/catalog"
	"github.com/litescript/ls-ephemeris/internal/ephem"
	"github.com/litescript/ls-ephemeris/internal/flags"
	"github.com/litescript/ls-ephemeris/internal/timecodec"
)

// Collector bundles the record metrics. It satisfies planetary.Metrics.
// All methods are safe on a nil receiver.
type Collector struct {
	gatherer prometheus.Gatherer

	Records            *prometheus.CounterVec
	RecordDurations    *prometheus.HistogramVec
	DistanceMismatches *prometheus.CounterVec
	Events             *prometheus.CounterVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	records, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ephemeris_records_total",
		Help: "Planetary records computed, labeled by body and result.",
	}, []string{"body", "result"}), "ephemeris_records_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ephemeris_record_duration_seconds",
		Help:    "Time to compute one planetary record (18 engine calls).",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"body"}), "ephemeris_record_duration_seconds")
	if err != nil {
		return nil, err
	}

	mismatches, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ephemeris_distance_mismatches_total",
		Help: "Records whose ecliptical and equatorial distances disagree beyond tolerance.",
	}, []string{"body", "frame", "zodiac"}), "ephemeris_distance_mismatches_total")
	if err != nil {
		return nil, err
	}

	events, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ephemeris_events_total",
		Help: "Watch-mode events detected, labeled by type.",
	}, []string{"type"}), "ephemeris_events_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:           gatherer,
		Records:            records,
		RecordDurations:    durations,
		DistanceMismatches: mismatches,
		Events:             events,
	}, nil
}

// ObserveRecord counts one record computation and its latency.
func (c *Collector) ObserveRecord(body string, d time.Duration, err error) {
	if c == nil {
		return
	}
	if c.Records != nil {
		c.Records.WithLabelValues(body, ResultLabel(err)).Inc()
	}
	if c.RecordDurations != nil && err == nil {
		c.RecordDurations.WithLabelValues(body).Observe(d.Seconds())
	}
}

// ObserveDistanceMismatch counts one distance cross-check failure.
func (c *Collector) ObserveDistanceMismatch(body string, mode flags.Mode, delta float64) {
	if c == nil || c.DistanceMismatches == nil {
		return
	}
	c.DistanceMismatches.WithLabelValues(body, mode.Frame.String(), mode.Zodiac.String()).Inc()
}

// ObserveEvent counts one watch-mode event.
func (c *Collector) ObserveEvent(eventType string) {
	if c == nil || c.Events == nil {
		return
	}
	c.Events.WithLabelValues(eventType).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ResultLabel maps a record error to a low-cardinality label value.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, timecodec.ErrInvalidTimestamp):
		return "invalid_timestamp"
	case errors.Is(err, catalog.ErrUnknownBody):
		return "unknown_body"
	case errors.Is(err, ephem.ErrObserverNotSet):
		return "observer_not_set"
	case errors.Is(err, ephem.ErrOutsideRange):
		return "outside_range"
	default:
		return "error"
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
