package planetary

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/catalog"
)

// DefaultHorizonStep is the sampling interval of HorizonWindow when step
// is zero.
const DefaultHorizonStep = 10 * time.Minute

// HorizonAltitude returns the altitude of the apparent horizon crossing
// used for body.
func HorizonAltitude(body catalog.ID) float64 {
	switch body {
	case catalog.Sun:
		return astro.HorizonSun
	case catalog.Moon:
		return astro.HorizonMoon
	default:
		return astro.HorizonPlanet
	}
}

// HorizonWindow samples the topocentric tropical equatorial place of body
// every step over [from, from+span] and returns the first rise, the
// transit and the following set seen from the session observer.
func (s *Session) HorizonWindow(ctx context.Context, body catalog.ID, from time.Time, span, step time.Duration) (astro.HorizonWindow, error) {
	obs, ok := s.Observer()
	if !ok {
		return astro.HorizonWindow{}, ErrNoObserver
	}
	if step <= 0 {
		step = DefaultHorizonStep
	}

	ctx, span0 := s.tracer.Start(ctx, "planetary.HorizonWindow", trace.WithAttributes(
		attribute.String("session.id", s.ID()),
		attribute.Int("body.id", int(body)),
		attribute.String("span", span.String()),
	))
	defer span0.End()

	var samples []astro.EquatorialSample
	for off := time.Duration(0); off <= span; off += step {
		if err := ctx.Err(); err != nil {
			return astro.HorizonWindow{}, err
		}
		t := from.Add(off)
		rec, err := s.ComputeRecord(ctx, body, t)
		if err != nil {
			span0.RecordError(err)
			span0.SetStatus(codes.Error, err.Error())
			return astro.HorizonWindow{}, err
		}
		c := rec.Topocentric.Tropical
		samples = append(samples, astro.EquatorialSample{Time: t, RAdeg: c.Rectascension, DecDeg: c.Declination})
	}

	site := astro.Observer{LonDeg: obs.LonDeg, LatDeg: obs.LatDeg, AltMeters: obs.AltMeters}
	w, err := astro.RiseTransitSet(site, samples, HorizonAltitude(body))
	if err != nil {
		return astro.HorizonWindow{}, fmt.Errorf("horizon search for %s: %w", body, err)
	}
	s.log.Debug("horizon window %s: rise %v transit %v set %v (%d samples)",
		body, w.Rise, w.Transit, w.Set, len(samples))
	return w, nil
}
