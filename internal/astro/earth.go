package astro

import "math"

// MeanObliquity returns the mean obliquity of the ecliptic in degrees
// (IAU 1980, Laskar-free polynomial) for a Julian Day in TT.
func MeanObliquity(jdTT float64) float64 {
	T := JulianCenturies(jdTT)
	return 23.439291 - 0.0130042*T - 0.00000016*T*T + 0.000000504*T*T*T
}

// Nutation holds the nutation in longitude and obliquity, in degrees.
type Nutation struct {
	Longitude float64 // Δψ
	Obliquity float64 // Δε
}

// NutationAt evaluates the four leading terms of the IAU 1980 nutation
// series. Accuracy is about 0.5" in Δψ and 0.1" in Δε.
func NutationAt(jdTT float64) Nutation {
	T := JulianCenturies(jdTT)

	omega := degToRad(125.04452 - 1934.136261*T)
	lSun := degToRad(280.4665 + 36000.7698*T)
	lMoon := degToRad(218.3165 + 481267.8813*T)

	dpsi := -17.20*math.Sin(omega) - 1.32*math.Sin(2*lSun) -
		0.23*math.Sin(2*lMoon) + 0.21*math.Sin(2*omega)
	deps := 9.20*math.Cos(omega) + 0.57*math.Cos(2*lSun) +
		0.10*math.Cos(2*lMoon) - 0.09*math.Cos(2*omega)

	return Nutation{
		Longitude: dpsi / 3600,
		Obliquity: deps / 3600,
	}
}

// TrueObliquity returns mean obliquity plus nutation in obliquity, degrees.
func TrueObliquity(jdTT float64) float64 {
	return MeanObliquity(jdTT) + NutationAt(jdTT).Obliquity
}

// GeneralPrecession returns the accumulated general precession in longitude
// from J2000.0 to jdTT, in degrees.
func GeneralPrecession(jdTT float64) float64 {
	T := JulianCenturies(jdTT)
	return (5028.796195*T + 1.1054348*T*T) / 3600
}

// PrecessEcliptic carries a J2000 ecliptic vector to the mean ecliptic and
// equinox of date. The motion of the ecliptic pole (under 0.5"/yr) is
// ignored; only the precession in longitude is applied.
func PrecessEcliptic(v Vec3, jdTT float64) Vec3 {
	return v.RotateZ(degToRad(GeneralPrecession(jdTT)))
}

// UnprecessEcliptic is the inverse of PrecessEcliptic.
func UnprecessEcliptic(v Vec3, jdTT float64) Vec3 {
	return v.RotateZ(-degToRad(GeneralPrecession(jdTT)))
}

// DeltaT returns TT-UT in seconds for a Julian Day (UT), using the
// Espenak & Meeus polynomial fits with the long-term parabola outside
// 1900–2150.
func DeltaT(jdUT float64) float64 {
	y := 2000 + (jdUT-J2000)/365.2425

	switch {
	case y >= 1900 && y < 1920:
		t := y - 1900
		return -2.79 + 1.494119*t - 0.0598939*t*t + 0.0061966*t*t*t - 0.000197*t*t*t*t
	case y >= 1920 && y < 1941:
		t := y - 1920
		return 21.20 + 0.84493*t - 0.076100*t*t + 0.0020936*t*t*t
	case y >= 1941 && y < 1961:
		t := y - 1950
		return 29.07 + 0.407*t - t*t/233 + t*t*t/2547
	case y >= 1961 && y < 1986:
		t := y - 1975
		return 45.45 + 1.067*t - t*t/260 - t*t*t/718
	case y >= 1986 && y < 2005:
		t := y - 2000
		return 63.86 + 0.3345*t - 0.060374*t*t + 0.0017275*t*t*t +
			0.000651814*t*t*t*t + 0.00002373599*t*t*t*t*t
	case y >= 2005 && y < 2050:
		t := y - 2000
		return 62.92 + 0.32217*t + 0.005589*t*t
	case y >= 2050 && y < 2150:
		u := (y - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-y)
	default:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	}
}

// EphemerisTime converts a Julian Day in UT to Terrestrial Time.
func EphemerisTime(jdUT float64) float64 {
	return jdUT + DeltaT(jdUT)/86400
}

// lahiriAtJ2000 is the Lahiri ayanamsa at J2000.0, degrees.
const lahiriAtJ2000 = 23.85306

// LahiriAyanamsa returns the Lahiri (Chitrapaksha) ayanamsa for a Julian
// Day (TT): the distance of the mean vernal equinox from the sidereal zero
// point, in degrees.
func LahiriAyanamsa(jdTT float64) float64 {
	return lahiriAtJ2000 + GeneralPrecession(jdTT)
}
