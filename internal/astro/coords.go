package astro

import (
	"math"
	"time"
)

// J2000 is the Julian Day of the J2000.0 epoch (2000-01-01 12:00 TT).
const J2000 = 2451545.0

// DaysPerCentury is the length of a Julian century in days.
const DaysPerCentury = 36525.0

// Observer is a geodetic site on the WGS84 ellipsoid.
type Observer struct {
	LonDeg    float64 // east positive
	LatDeg    float64 // north positive
	AltMeters float64
}

// JulianCenturies returns Julian centuries elapsed since J2000.0.
func JulianCenturies(jd float64) float64 {
	return (jd - J2000) / DaysPerCentury
}

// GreenwichMeanSiderealTime calculates GMST in degrees for a Julian Day (UT).
// Uses the IAU 1982 formula.
func GreenwichMeanSiderealTime(jd float64) float64 {
	T := JulianCenturies(jd)

	gmst := 280.46061837 +
		360.98564736629*(jd-J2000) +
		0.000387933*T*T -
		T*T*T/38710000.0

	return NormalizeDegrees(gmst)
}

// JulianDate calculates the Julian Date for a given time, keeping the
// sub-second part of the clock.
func JulianDate(t time.Time) float64 {
	// Convert to UTC
	t = t.UTC()

	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())

	// Time of day as fraction
	h := float64(t.Hour())
	min := float64(t.Minute())
	sec := float64(t.Second())
	ns := float64(t.Nanosecond())

	dayFrac := (h + min/60 + sec/3600 + ns/3600e9) / 24.0

	// Adjust for January/February (treat as months 13/14 of previous year)
	if m <= 2 {
		y--
		m += 12
	}

	// Gregorian calendar correction
	A := math.Floor(y / 100)
	B := 2 - A + math.Floor(A/4)

	jd := math.Floor(365.25*(y+4716)) +
		math.Floor(30.6001*(m+1)) +
		d + dayFrac + B - 1524.5

	return jd
}

// CalendarDate holds the Gregorian calendar fields of a Julian Day.
// Second carries the fractional part of the minute.
type CalendarDate struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second float64
}

// gregorianCycleDays is the length of the 400-year Gregorian cycle.
const gregorianCycleDays = 146097

// CalendarFromJulian converts a Julian Day to Gregorian calendar fields.
// Dates before the 1582 reform are still reported in the proleptic
// Gregorian calendar. Negative day numbers are shifted forward by whole
// 400-year cycles, where the algorithm is valid, and shifted back after.
func CalendarFromJulian(jd float64) CalendarDate {
	if jd < 0 {
		cycles := math.Ceil(-jd/gregorianCycleDays) + 1
		cal := CalendarFromJulian(jd + cycles*gregorianCycleDays)
		cal.Year -= 400 * int(cycles)
		return cal
	}

	jd += 0.5
	Z := math.Floor(jd)
	F := jd - Z

	alpha := math.Floor((Z - 1867216.25) / 36524.25)
	A := Z + 1 + alpha - math.Floor(alpha/4)

	B := A + 1524
	C := math.Floor((B - 122.1) / 365.25)
	D := math.Floor(365.25 * C)
	E := math.Floor((B - D) / 30.6001)

	day := int(B - D - math.Floor(30.6001*E))
	month := int(E - 1)
	if E >= 14 {
		month = int(E - 13)
	}
	year := int(C - 4716)
	if month <= 2 {
		year = int(C - 4715)
	}

	secs := F * 86400
	hour := int(secs / 3600)
	secs -= float64(hour) * 3600
	minute := int(secs / 60)
	secs -= float64(minute) * 60
	if secs < 0 {
		secs = 0
	}

	return CalendarDate{
		Year:   year,
		Month:  time.Month(month),
		Day:    day,
		Hour:   hour,
		Minute: minute,
		Second: secs,
	}
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return degToRad(deg) }
