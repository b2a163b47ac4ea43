// Package flags describes calculation modes: the reference frame, zodiac and
// coordinate representation of a position, and the bitmask handed to an
// ephemeris engine for each calculation.
package flags

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConflictingFlags is returned for a bitmask that selects two values of
// one mode group.
var ErrConflictingFlags = errors.New("conflicting mode flags")

// Flags is an engine calculation bitmask.
type Flags uint32

// Bit values shared with the classic ephemeris engine interface.
const (
	JPLEph       Flags = 1
	SwissEph     Flags = 2
	MoshierEph   Flags = 4
	Heliocentric Flags = 8
	TruePosition Flags = 16
	Speed        Flags = 256
	Equatorial   Flags = 2048
	XYZ          Flags = 4096
	Radians      Flags = 8192
	Topocentric  Flags = 32768
	Sidereal     Flags = 65536
)

const (
	engineMask = JPLEph | SwissEph | MoshierEph
	frameMask  = Heliocentric | Topocentric
	reprMask   = Equatorial | XYZ
)

var bitNames = []struct {
	bit  Flags
	name string
}{
	{JPLEph, "JPLEPH"},
	{SwissEph, "SWIEPH"},
	{MoshierEph, "MOSEPH"},
	{Heliocentric, "HELCTR"},
	{TruePosition, "TRUEPOS"},
	{Speed, "SPEED"},
	{Equatorial, "EQUATORIAL"},
	{XYZ, "XYZ"},
	{Radians, "RADIANS"},
	{Topocentric, "TOPOCTR"},
	{Sidereal, "SIDEREAL"},
}

// Has reports whether every bit of b is set.
func (f Flags) Has(b Flags) bool {
	return f&b == b
}

// Engine returns the engine selection bits.
func (f Flags) Engine() Flags {
	return f & engineMask
}

// Frame decodes the reference frame bits.
func (f Flags) Frame() Frame {
	switch {
	case f.Has(Topocentric):
		return FrameTopocentric
	case f.Has(Heliocentric):
		return FrameHeliocentric
	default:
		return FrameGeocentric
	}
}

// Zodiac decodes the zodiac bit.
func (f Flags) Zodiac() Zodiac {
	if f.Has(Sidereal) {
		return ZodiacSidereal
	}
	return ZodiacTropical
}

// Representation decodes the representation bits.
func (f Flags) Representation() Representation {
	switch {
	case f.Has(XYZ):
		return ReprRectangular
	case f.Has(Equatorial):
		return ReprEquatorial
	default:
		return ReprEcliptical
	}
}

// Mode returns the mode descriptor encoded in f.
func (f Flags) Mode() Mode {
	return Mode{Frame: f.Frame(), Zodiac: f.Zodiac(), Representation: f.Representation()}
}

// Validate rejects masks that select more than one frame, representation or
// engine.
func (f Flags) Validate() error {
	if f&frameMask == frameMask {
		return fmt.Errorf("%w: %s selects two reference frames", ErrConflictingFlags, f)
	}
	if f&reprMask == reprMask {
		return fmt.Errorf("%w: %s selects two representations", ErrConflictingFlags, f)
	}
	if e := f.Engine(); e&(e-1) != 0 {
		return fmt.Errorf("%w: %s selects two engines", ErrConflictingFlags, f)
	}
	return nil
}

// String lists the set bits, e.g. "MOSEPH|SPEED|EQUATORIAL".
func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	rest := f
	for _, bn := range bitNames {
		if f&bn.bit != 0 {
			parts = append(parts, bn.name)
			rest &^= bn.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}
