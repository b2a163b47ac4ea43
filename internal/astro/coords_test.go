package astro

import (
	"math"
	"testing"
	"time"
)

func TestJulianDate(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected float64
		tol      float64
	}{
		{
			name:     "J2000 epoch",
			time:     time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
			expected: 2451545.0,
			tol:      0.0001,
		},
		{
			name:     "Unix epoch",
			time:     time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2440587.5,
			tol:      0.0001,
		},
		{
			name:     "Known date 2024-01-01 00:00 UTC",
			time:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2460310.5,
			tol:      0.0001,
		},
		{
			name:     "Non-UTC zone is normalized",
			time:     time.Date(2000, 1, 1, 7, 0, 0, 0, time.FixedZone("EST", -5*3600)),
			expected: 2451545.0,
			tol:      0.0001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JulianDate(tt.time)
			if math.Abs(got-tt.expected) > tt.tol {
				t.Errorf("JulianDate() = %v, want %v (±%v)", got, tt.expected, tt.tol)
			}
		})
	}
}

func TestCalendarFromJulian(t *testing.T) {
	tests := []struct {
		name string
		jd   float64
		want CalendarDate
	}{
		{"J2000 epoch", 2451545.0, CalendarDate{2000, time.January, 1, 12, 0, 0}},
		{"Unix epoch", 2440587.5, CalendarDate{1970, time.January, 1, 0, 0, 0}},
		{"Leap day", 2451603.5, CalendarDate{2000, time.February, 29, 0, 0, 0}},
		{"Quarter day", 2460310.75, CalendarDate{2024, time.January, 1, 6, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalendarFromJulian(tt.jd)
			if got.Year != tt.want.Year || got.Month != tt.want.Month || got.Day != tt.want.Day ||
				got.Hour != tt.want.Hour || got.Minute != tt.want.Minute {
				t.Errorf("CalendarFromJulian(%v) = %+v, want %+v", tt.jd, got, tt.want)
			}
			if math.Abs(got.Second-tt.want.Second) > 1e-3 {
				t.Errorf("CalendarFromJulian(%v) seconds = %v, want %v", tt.jd, got.Second, tt.want.Second)
			}
		})
	}
}

func TestCalendarFromJulian_RoundTrip(t *testing.T) {
	start := time.Date(1969, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		ts := start.Add(time.Duration(i) * 97 * time.Hour).Add(time.Duration(i*13) * time.Second)
		cal := CalendarFromJulian(JulianDate(ts))
		back := time.Date(cal.Year, cal.Month, cal.Day, cal.Hour, cal.Minute, 0, 0, time.UTC).
			Add(time.Duration(cal.Second * float64(time.Second)))
		if d := back.Sub(ts); d > time.Millisecond || d < -time.Millisecond {
			t.Fatalf("round trip of %v drifted by %v", ts, d)
		}
	}
}

func TestGreenwichMeanSiderealTime(t *testing.T) {
	// At J2000 epoch (2000-01-01 12:00 UTC), GMST should be approximately 280.46°
	gmst := GreenwichMeanSiderealTime(J2000)

	if math.Abs(gmst-280.46) > 0.1 {
		t.Errorf("GMST at J2000 = %v, want ~280.46", gmst)
	}

	// One sidereal day later the angle repeats.
	later := GreenwichMeanSiderealTime(J2000 + 0.99726957)
	if math.Abs(AngleDiff(later, gmst)) > 0.01 {
		t.Errorf("GMST after one sidereal day = %v, want %v", later, gmst)
	}

	for jd := J2000; jd < J2000+3; jd += 0.3 {
		if g := GreenwichMeanSiderealTime(jd); g < 0 || g >= 360 {
			t.Errorf("GMST out of range at %v: %v", jd, g)
		}
	}
}

func TestDegToRad(t *testing.T) {
	tests := []struct {
		deg float64
		rad float64
	}{
		{0, 0},
		{90, math.Pi / 2},
		{180, math.Pi},
		{360, 2 * math.Pi},
		{-90, -math.Pi / 2},
	}

	for _, tt := range tests {
		got := DegToRad(tt.deg)
		if math.Abs(got-tt.rad) > 1e-10 {
			t.Errorf("DegToRad(%v) = %v, want %v", tt.deg, got, tt.rad)
		}
	}
}
