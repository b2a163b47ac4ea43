package astro

import "math"

// SolarCoords holds the low-precision apparent place of the Sun.
type SolarCoords struct {
	LonDeg float64 // apparent ecliptic longitude, equinox of date
	RAdeg  float64
	DecDeg float64
	DistAU float64
}

// SunApparent evaluates the Astronomical Almanac solar series for a Julian
// Day (TT). It is independent of the Kepler tables and serves as a
// cross-check for the full reduction. Accuracy is about 0.01°.
func SunApparent(jdTT float64) SolarCoords {
	T := JulianCenturies(jdTT)

	L0 := NormalizeDegrees(280.46646 + 36000.76983*T + 0.0003032*T*T)
	M := NormalizeDegrees(357.52911 + 35999.05029*T - 0.0001537*T*T)
	Mrad := degToRad(M)
	e := 0.016708634 - 0.000042037*T - 0.0000001267*T*T

	// Equation of center
	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(Mrad) +
		(0.019993-0.000101*T)*math.Sin(2*Mrad) +
		0.000289*math.Sin(3*Mrad)

	trueLon := L0 + C
	v := degToRad(M + C)
	R := 1.000001018 * (1 - e*e) / (1 + e*math.Cos(v))

	// Aberration and nutation
	omega := degToRad(125.04 - 1934.136*T)
	lon := trueLon - 0.00569 - 0.00478*math.Sin(omega)

	eps := degToRad(MeanObliquity(jdTT) + 0.00256*math.Cos(omega))
	lonRad := degToRad(lon)

	ra := radToDeg(math.Atan2(math.Cos(eps)*math.Sin(lonRad), math.Cos(lonRad)))
	dec := radToDeg(math.Asin(math.Sin(eps) * math.Sin(lonRad)))

	return SolarCoords{
		LonDeg: NormalizeDegrees(lon),
		RAdeg:  NormalizeDegrees(ra),
		DecDeg: dec,
		DistAU: R,
	}
}

// AngularSeparation calculates the angular separation between two points on the celestial sphere.
// All coordinates in degrees. Returns separation in degrees.
func AngularSeparation(lon1, lat1, lon2, lat2 float64) float64 {
	l1, b1 := degToRad(lon1), degToRad(lat1)
	l2, b2 := degToRad(lon2), degToRad(lat2)

	dLon := l2 - l1
	dLat := b2 - b1

	// Haversine
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(b1)*math.Cos(b2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if a > 1 {
		a = 1
	}

	return radToDeg(2 * math.Asin(math.Sqrt(a)))
}
