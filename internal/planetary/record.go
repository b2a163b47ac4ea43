package planetary

import (
	"fmt"
	"time"

	"github.com/litescript/ls-ephemeris/internal/catalog"
	"github.com/litescript/ls-ephemeris/internal/flags"
)

// FieldsPerZodiac is the number of scalar fields in Coordinates.
const FieldsPerZodiac = 18

// LeafCount is the number of scalar values in a Record.
const LeafCount = 3 * 2 * FieldsPerZodiac

// Coordinates holds the three representations of one frame and zodiac.
// Distance comes from the ecliptical call and EquatorialDistance from the
// equatorial call; both are kept so they can be compared.
type Coordinates struct {
	Longitude      float64 `json:"longitude"`
	Latitude       float64 `json:"latitude"`
	Distance       float64 `json:"distance"`
	LongitudeSpeed float64 `json:"longitude_speed"`
	LatitudeSpeed  float64 `json:"latitude_speed"`
	DistanceSpeed  float64 `json:"distance_speed"`

	Rectascension           float64 `json:"rectascension"`
	Declination             float64 `json:"declination"`
	EquatorialDistance      float64 `json:"equatorial_distance"`
	RectascensionSpeed      float64 `json:"rectascension_speed"`
	DeclinationSpeed        float64 `json:"declination_speed"`
	EquatorialDistanceSpeed float64 `json:"equatorial_distance_speed"`

	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
	DZ float64 `json:"dz"`
}

// FieldNames lists the Coordinates fields in Values order.
var FieldNames = [FieldsPerZodiac]string{
	"longitude", "latitude", "distance",
	"longitude_speed", "latitude_speed", "distance_speed",
	"rectascension", "declination", "equatorial_distance",
	"rectascension_speed", "declination_speed", "equatorial_distance_speed",
	"x", "y", "z", "dx", "dy", "dz",
}

// Values returns the fields in ecliptical, equatorial, rectangular order.
func (c Coordinates) Values() [FieldsPerZodiac]float64 {
	return [FieldsPerZodiac]float64{
		c.Longitude, c.Latitude, c.Distance,
		c.LongitudeSpeed, c.LatitudeSpeed, c.DistanceSpeed,
		c.Rectascension, c.Declination, c.EquatorialDistance,
		c.RectascensionSpeed, c.DeclinationSpeed, c.EquatorialDistanceSpeed,
		c.X, c.Y, c.Z, c.DX, c.DY, c.DZ,
	}
}

// set stores the six primitive outputs in the fields of representation r.
func (c *Coordinates) set(r flags.Representation, v [6]float64) {
	switch r {
	case flags.ReprEcliptical:
		c.Longitude, c.Latitude, c.Distance = v[0], v[1], v[2]
		c.LongitudeSpeed, c.LatitudeSpeed, c.DistanceSpeed = v[3], v[4], v[5]
	case flags.ReprEquatorial:
		c.Rectascension, c.Declination, c.EquatorialDistance = v[0], v[1], v[2]
		c.RectascensionSpeed, c.DeclinationSpeed, c.EquatorialDistanceSpeed = v[3], v[4], v[5]
	case flags.ReprRectangular:
		c.X, c.Y, c.Z = v[0], v[1], v[2]
		c.DX, c.DY, c.DZ = v[3], v[4], v[5]
	}
}

// FrameInfo holds both zodiacs of one reference frame.
type FrameInfo struct {
	Tropical Coordinates `json:"tropical"`
	Sidereal Coordinates `json:"sidereal"`
}

// Zodiac returns the coordinates for z.
func (f FrameInfo) Zodiac(z flags.Zodiac) Coordinates {
	if z == flags.ZodiacSidereal {
		return f.Sidereal
	}
	return f.Tropical
}

func (f *FrameInfo) zodiac(z flags.Zodiac) *Coordinates {
	if z == flags.ZodiacSidereal {
		return &f.Sidereal
	}
	return &f.Tropical
}

// Record is the complete result for one body at one instant. It is a plain
// value; the session keeps no reference to it.
type Record struct {
	Name      string     `json:"name"`
	ID        catalog.ID `json:"id"`
	Time      time.Time  `json:"time"`
	DayNumber float64    `json:"day_number"`

	Geocentric   FrameInfo `json:"geocentric"`
	Topocentric  FrameInfo `json:"topocentric"`
	Heliocentric FrameInfo `json:"heliocentric"`
}

// Frame returns the frame info for f.
func (r Record) Frame(f flags.Frame) FrameInfo {
	switch f {
	case flags.FrameTopocentric:
		return r.Topocentric
	case flags.FrameHeliocentric:
		return r.Heliocentric
	default:
		return r.Geocentric
	}
}

func (r *Record) frame(f flags.Frame) *FrameInfo {
	switch f {
	case flags.FrameTopocentric:
		return &r.Topocentric
	case flags.FrameHeliocentric:
		return &r.Heliocentric
	default:
		return &r.Geocentric
	}
}

// Coordinates returns the coordinates for the frame and zodiac of m. The
// representation of m is ignored since Coordinates carries all three.
func (r Record) Coordinates(m flags.Mode) Coordinates {
	return r.Frame(m.Frame).Zodiac(m.Zodiac)
}

// Leaves returns every scalar of the record in frame, zodiac, field order.
func (r Record) Leaves() []float64 {
	leaves := make([]float64, 0, LeafCount)
	for _, f := range flags.AllFrames {
		for _, z := range flags.AllZodiacs {
			v := r.Frame(f).Zodiac(z).Values()
			leaves = append(leaves, v[:]...)
		}
	}
	return leaves
}

// String returns a one-line summary built from the geocentric tropical
// place.
func (r Record) String() string {
	c := r.Geocentric.Tropical
	return fmt.Sprintf("%s @ %s (JD %.6f): lon %.4f° lat %.4f° dist %.6f AU speed %+.4f°/d",
		r.Name, r.Time.Format(time.RFC3339), r.DayNumber,
		c.Longitude, c.Latitude, c.Distance, c.LongitudeSpeed)
}
