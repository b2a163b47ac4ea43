package flags

import (
	"fmt"
	"strings"
)

// Frame is the reference frame of a position.
type Frame int

const (
	FrameGeocentric Frame = iota
	FrameTopocentric
	FrameHeliocentric
)

// AllFrames lists frames in record iteration order.
var AllFrames = []Frame{FrameGeocentric, FrameTopocentric, FrameHeliocentric}

// String returns the frame name.
func (f Frame) String() string {
	switch f {
	case FrameGeocentric:
		return "geocentric"
	case FrameTopocentric:
		return "topocentric"
	case FrameHeliocentric:
		return "heliocentric"
	default:
		return "unknown"
	}
}

// ParseFrame parses a frame name; "geo", "topo" and "helio" are accepted.
func ParseFrame(s string) (Frame, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "geocentric", "geo":
		return FrameGeocentric, nil
	case "topocentric", "topo":
		return FrameTopocentric, nil
	case "heliocentric", "helio":
		return FrameHeliocentric, nil
	default:
		return 0, fmt.Errorf("unknown reference frame %q", s)
	}
}

// Zodiac is the origin of ecliptic longitudes.
type Zodiac int

const (
	ZodiacTropical Zodiac = iota
	ZodiacSidereal
)

// AllZodiacs lists zodiacs in record iteration order.
var AllZodiacs = []Zodiac{ZodiacTropical, ZodiacSidereal}

// String returns the zodiac name.
func (z Zodiac) String() string {
	switch z {
	case ZodiacTropical:
		return "tropical"
	case ZodiacSidereal:
		return "sidereal"
	default:
		return "unknown"
	}
}

// ParseZodiac parses a zodiac name.
func ParseZodiac(s string) (Zodiac, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tropical", "trop":
		return ZodiacTropical, nil
	case "sidereal", "sid":
		return ZodiacSidereal, nil
	default:
		return 0, fmt.Errorf("unknown zodiac %q", s)
	}
}

// Representation is the coordinate form of a position.
type Representation int

const (
	ReprEcliptical Representation = iota
	ReprEquatorial
	ReprRectangular
)

// AllRepresentations lists representations in record iteration order.
var AllRepresentations = []Representation{ReprEcliptical, ReprEquatorial, ReprRectangular}

// String returns the representation name.
func (r Representation) String() string {
	switch r {
	case ReprEcliptical:
		return "ecliptical"
	case ReprEquatorial:
		return "equatorial"
	case ReprRectangular:
		return "rectangular"
	default:
		return "unknown"
	}
}

// ParseRepresentation parses a representation name; "xyz" means rectangular.
func ParseRepresentation(s string) (Representation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ecliptical", "ecliptic", "ecl":
		return ReprEcliptical, nil
	case "equatorial", "equ":
		return ReprEquatorial, nil
	case "rectangular", "xyz", "cartesian":
		return ReprRectangular, nil
	default:
		return 0, fmt.Errorf("unknown coordinate representation %q", s)
	}
}

// Mode is the combination of settings that selects one calculation.
type Mode struct {
	Frame          Frame
	Zodiac         Zodiac
	Representation Representation
}

// String formats the mode as "frame/zodiac/representation".
func (m Mode) String() string {
	return m.Frame.String() + "/" + m.Zodiac.String() + "/" + m.Representation.String()
}

// AllModes returns the 18 modes in record iteration order: frame, then
// zodiac, then representation.
func AllModes() []Mode {
	modes := make([]Mode, 0, len(AllFrames)*len(AllZodiacs)*len(AllRepresentations))
	for _, f := range AllFrames {
		for _, z := range AllZodiacs {
			for _, r := range AllRepresentations {
				modes = append(modes, Mode{Frame: f, Zodiac: z, Representation: r})
			}
		}
	}
	return modes
}

// Session holds the bits fixed for the lifetime of a session.
type Session struct {
	Engine        Flags
	TruePositions bool
	Radians       bool
}

// Bits returns the session's constant bits. Speed is always requested.
func (s Session) Bits() Flags {
	f := s.Engine&engineMask | Speed
	if s.TruePositions {
		f |= TruePosition
	}
	if s.Radians {
		f |= Radians
	}
	return f
}

// ToBitmask composes the engine flags for one calculation from scratch.
func ToBitmask(m Mode, s Session) Flags {
	f := s.Bits()

	switch m.Frame {
	case FrameTopocentric:
		f |= Topocentric
	case FrameHeliocentric:
		f |= Heliocentric
	}
	if m.Zodiac == ZodiacSidereal {
		f |= Sidereal
	}
	switch m.Representation {
	case ReprEquatorial:
		f |= Equatorial
	case ReprRectangular:
		f |= XYZ
	}
	return f
}
