package ephem

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mshafiee/jpleph"

	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/catalog"
	"github.com/litescript/ls-ephemeris/internal/flags"
)

// jplBodies maps catalog bodies to DE file targets.
var jplBodies = map[catalog.ID]jpleph.Planet{
	catalog.Sun:     jpleph.Sun,
	catalog.Moon:    jpleph.Moon,
	catalog.Mercury: jpleph.Mercury,
	catalog.Venus:   jpleph.Venus,
	catalog.Earth:   jpleph.Earth,
	catalog.Mars:    jpleph.Mars,
	catalog.Jupiter: jpleph.Jupiter,
	catalog.Saturn:  jpleph.Saturn,
	catalog.Uranus:  jpleph.Uranus,
	catalog.Neptune: jpleph.Neptune,
	catalog.Pluto:   jpleph.Pluto,
}

// JPLSource reads a JPL DE binary ephemeris (de405.bin, de440.bin, ...).
// Bodies absent from the file, such as Chiron and the lunar points, are
// delegated to a fallback source.
type JPLSource struct {
	mu       sync.Mutex
	eph      *jpleph.Ephemeris
	path     string
	first    float64
	last     float64
	fallback Source
}

// OpenJPLSource opens a DE file. fallback may be nil, in which case bodies
// missing from the file fail with ErrUnsupportedBody.
func OpenJPLSource(path string, fallback Source) (*JPLSource, error) {
	eph, err := jpleph.NewEphemeris(path, true)
	if err != nil {
		return nil, fmt.Errorf("open JPL ephemeris %s: %w", path, err)
	}
	return &JPLSource{
		eph:      eph,
		path:     path,
		first:    eph.GetEphemerisDouble(jpleph.EphemerisStartJD),
		last:     eph.GetEphemerisDouble(jpleph.EphemerisEndJD),
		fallback: fallback,
	}, nil
}

// Name implements Source.
func (s *JPLSource) Name() string {
	return "jpl:" + s.eph.GetEphemName()
}

// EngineFlag implements Source.
func (s *JPLSource) EngineFlag() flags.Flags {
	return flags.JPLEph
}

// Range returns the file coverage in Julian Days (TDB).
func (s *JPLSource) Range() (first, last float64) {
	return s.first, s.last
}

// Close implements Source.
func (s *JPLSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	if s.eph != nil {
		errs = append(errs, s.eph.Close())
		s.eph = nil
	}
	if s.fallback != nil {
		errs = append(errs, s.fallback.Close())
	}
	return errors.Join(errs...)
}

// Position implements Source. TT is used in place of TDB; the two differ
// by under 2 ms.
func (s *JPLSource) Position(body catalog.ID, center Center, jdTT float64) (astro.Vec3, error) {
	target, ok := jplBodies[body]
	if !ok {
		if s.fallback == nil {
			return astro.Vec3{}, fmt.Errorf("%w: %s not in %s", ErrUnsupportedBody, body, s.path)
		}
		return s.fallback.Position(body, center, jdTT)
	}

	if jdTT < s.first || jdTT > s.last {
		return astro.Vec3{}, fmt.Errorf("%w: JD %.1f not in [%.1f, %.1f]", ErrOutsideRange, jdTT, s.first, s.last)
	}

	origin := jpleph.CenterSun
	if center == CenterEarth {
		origin = jpleph.CenterEarth
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eph == nil {
		return astro.Vec3{}, fmt.Errorf("JPL ephemeris %s is closed", s.path)
	}
	pos, _, err := s.eph.CalculatePV(jdTT, target, origin, false)
	if err != nil {
		if errors.Is(err, jpleph.ErrOutsideRange) {
			return astro.Vec3{}, fmt.Errorf("%w: %v", ErrOutsideRange, err)
		}
		return astro.Vec3{}, fmt.Errorf("jpl %s: %w", body, err)
	}

	// DE files are referred to the ICRF equator.
	return astro.EquatorialToEcliptic(astro.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z}), nil
}
