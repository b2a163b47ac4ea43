// Package astro holds the low-level vector and angle math shared by the
// ephemeris engines: frame rotations, precession, nutation, aberration,
// analytic theories of the Sun, Moon and planets, and horizon geometry.
package astro

import (
	"math"
)

// AU is the Astronomical Unit in kilometers.
const AU = 149597870.7

// LightDaysPerAU is the light travel time across one AU, in days.
const LightDaysPerAU = 499.004783836 / 86400

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Dot returns the scalar product.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// Cross returns the vector product v × u.
func (v Vec3) Cross(u Vec3) Vec3 {
	return Vec3{
		X: v.Y*u.Z - v.Z*u.Y,
		Y: v.Z*u.X - v.X*u.Z,
		Z: v.X*u.Y - v.Y*u.X,
	}
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// RotateX rotates the vector about the X axis by angle radians
// (positive angle turns Y toward Z).
func (v Vec3) RotateX(angle float64) Vec3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Vec3{
		X: v.X,
		Y: v.Y*c - v.Z*s,
		Z: v.Y*s + v.Z*c,
	}
}

// RotateZ rotates the vector about the Z axis by angle radians
// (positive angle turns X toward Y).
func (v Vec3) RotateZ(angle float64) Vec3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Vec3{
		X: v.X*c - v.Y*s,
		Y: v.X*s + v.Y*c,
		Z: v.Z,
	}
}

// Spherical holds polar coordinates: longitude and latitude in degrees,
// distance in the units of the originating vector.
type Spherical struct {
	LonDeg float64
	LatDeg float64
	Dist   float64
}

// ToSpherical converts a cartesian vector to spherical coordinates.
// Longitude is normalized to [0, 360).
func ToSpherical(v Vec3) Spherical {
	r := v.Norm()
	if r == 0 {
		return Spherical{}
	}
	return Spherical{
		LonDeg: longitudeOf(v),
		LatDeg: radToDeg(math.Asin(clamp(v.Z/r, -1, 1))),
		Dist:   r,
	}
}

// FromSpherical converts spherical coordinates back to a cartesian vector.
func FromSpherical(s Spherical) Vec3 {
	lon := degToRad(s.LonDeg)
	lat := degToRad(s.LatDeg)
	cosLat := math.Cos(lat)
	return Vec3{
		X: s.Dist * cosLat * math.Cos(lon),
		Y: s.Dist * cosLat * math.Sin(lon),
		Z: s.Dist * math.Sin(lat),
	}
}

// KmToAU converts kilometres to astronomical units.
func KmToAU(km float64) float64 { return km / AU }

// longitudeOf returns the polar angle of v in the XY plane, in [0, 360).
func longitudeOf(v Vec3) float64 {
	return NormalizeDegrees(radToDeg(math.Atan2(v.Y, v.X)))
}

// j2000Obliquity is the mean obliquity of the ecliptic at J2000.0, degrees.
const j2000Obliquity = 23.4392911

// EquatorialToEcliptic rotates a vector referred to the ICRF/J2000 equator
// onto the J2000 ecliptic. Units are preserved.
func EquatorialToEcliptic(eq Vec3) Vec3 {
	return EquatorialToEclipticAt(eq, j2000Obliquity)
}

// EclipticToEquatorialAt rotates an ecliptic vector into the equator defined
// by the obliquity epsDeg (degrees), typically the true obliquity of date.
func EclipticToEquatorialAt(ecl Vec3, epsDeg float64) Vec3 {
	return ecl.RotateX(degToRad(epsDeg))
}

// EquatorialToEclipticAt is the inverse of EclipticToEquatorialAt.
func EquatorialToEclipticAt(eq Vec3, epsDeg float64) Vec3 {
	return eq.RotateX(-degToRad(epsDeg))
}

// NormalizeDegrees normalizes an angle to [0, 360).
func NormalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// AngleDiff returns the signed difference a-b wrapped to (-180, 180].
func AngleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
