// Package ephem computes body positions for a given calculation mode.
//
// A Source supplies geometric J2000 ecliptic positions; the Engine reduces
// them to apparent places in the frame, zodiac and representation encoded
// in a flags.Flags bitmask.
package ephem

import (
	"errors"
	"fmt"
	"strings"

	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/catalog"
	"github.com/litescript/ls-ephemeris/internal/flags"
)

var (
	// ErrOutsideRange is returned when the date lies outside the data
	// coverage of the source.
	ErrOutsideRange = errors.New("date outside ephemeris range")

	// ErrUnsupportedBody is returned when a source cannot compute a body.
	ErrUnsupportedBody = errors.New("body not supported by ephemeris source")

	// ErrObserverNotSet is returned for a topocentric calculation before
	// SetTopo has been called.
	ErrObserverNotSet = errors.New("topocentric observer not set")

	// ErrUnknownEngine is returned by ParseKind for an unrecognised name.
	ErrUnknownEngine = errors.New("unknown ephemeris engine")
)

// Calculator is the primitive the planetary aggregator calls once per mode.
type Calculator interface {
	// Name returns the engine name for display/logging.
	Name() string

	// Calc returns six values for body at jdUT. The layout follows the
	// representation bits of fl: (lon, lat, dist, dlon, dlat, ddist),
	// (ra, dec, dist, dra, ddec, ddist) or (x, y, z, dx, dy, dz).
	// Angles are degrees unless fl has Radians, distances AU, rates per day.
	Calc(jdUT float64, body catalog.ID, fl flags.Flags) ([6]float64, error)

	// SetTopo fixes the observer used by topocentric calculations.
	SetTopo(lonDeg, latDeg, altMeters float64)

	// Close releases any data files.
	Close() error
}

// Center is the origin of a source position.
type Center int

const (
	CenterSun Center = iota
	CenterEarth
)

// String returns the center name.
func (c Center) String() string {
	switch c {
	case CenterSun:
		return "sun"
	case CenterEarth:
		return "earth"
	default:
		return "unknown"
	}
}

// Source supplies geometric positions.
type Source interface {
	// Name returns the source name for display/logging.
	Name() string

	// Position returns the geometric position of body relative to center,
	// in AU, referred to the J2000 ecliptic and equinox. jdTT is in
	// Terrestrial Time.
	Position(body catalog.ID, center Center, jdTT float64) (astro.Vec3, error)

	// EngineFlag reports which engine bit the source answers to.
	EngineFlag() flags.Flags

	// Close releases any resources held by the source.
	Close() error
}

// Kind selects the source behind a calculator.
type Kind int

const (
	KindAnalytic Kind = iota // Built-in analytic theories (default)
	KindJPL                  // JPL DE binary file
	KindHorizons             // JPL Horizons web service
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAnalytic:
		return "analytic"
	case KindJPL:
		return "jpl"
	case KindHorizons:
		return "horizons"
	default:
		return "unknown"
	}
}

// ParseKind parses a source kind string. The empty string selects the
// analytic source.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "analytic":
		return KindAnalytic, nil
	case "jpl", "de":
		return KindJPL, nil
	case "horizons":
		return KindHorizons, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownEngine, s)
	}
}

// isLunarPoint reports whether body is a mathematical point of the lunar
// orbit rather than a physical body.
func isLunarPoint(body catalog.ID) bool {
	b, ok := catalog.Lookup(body)
	return ok && b.Kind == catalog.KindLunarPoint
}
