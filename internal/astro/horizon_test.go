package astro

import (
	"math"
	"testing"
	"time"
)

var testObservers = map[string]Observer{
	"greenwich":  {LatDeg: 51.4769, LonDeg: -0.0005},
	"sydney":     {LatDeg: -33.8688, LonDeg: 151.2093},
	"mid_north":  {LatDeg: 35.4267, LonDeg: -116.8900},
	"north_pole": {LatDeg: 89.0, LonDeg: 0.0},
}

// Fixed apparent places (J2000 is close enough here).
var testStars = map[string]struct {
	RAdeg  float64
	DecDeg float64
}{
	"vega":     {RAdeg: 279.2347, DecDeg: 38.7837},
	"polaris":  {RAdeg: 37.9542, DecDeg: 89.2641},
	"canopus":  {RAdeg: 95.9879, DecDeg: -52.6957},
	"arcturus": {RAdeg: 213.9150, DecDeg: 19.1825},
}

func fixedSamples(ra, dec float64, start time.Time, n int, step time.Duration) []EquatorialSample {
	samples := make([]EquatorialSample, n)
	for i := range samples {
		samples[i] = EquatorialSample{Time: start.Add(time.Duration(i) * step), RAdeg: ra, DecDeg: dec}
	}
	return samples
}

func TestEquatorialToHorizontal_Meridian(t *testing.T) {
	obs := testObservers["mid_north"]
	at := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

	// Put the object on the local meridian.
	lst := NormalizeDegrees(GreenwichMeanSiderealTime(JulianDate(at)) + obs.LonDeg)
	h := EquatorialToHorizontal(lst, 0, obs, at)

	if math.Abs(h.ElDeg-(90-obs.LatDeg)) > 1e-6 {
		t.Errorf("meridian elevation = %.6f, want %.6f", h.ElDeg, 90-obs.LatDeg)
	}
	if math.Abs(AngleDiff(h.AzDeg, 180)) > 1e-6 {
		t.Errorf("meridian azimuth = %.6f, want 180", h.AzDeg)
	}

	// Six hours of hour angle east: rising near the east point.
	h = EquatorialToHorizontal(NormalizeDegrees(lst+90), 0, obs, at)
	if math.Abs(h.ElDeg) > 1e-6 || math.Abs(AngleDiff(h.AzDeg, 90)) > 1e-6 {
		t.Errorf("equator at H=-6h = %+v, want az 90 el 0", h)
	}
}

func TestElevation(t *testing.T) {
	polaris := testStars["polaris"]
	el := Elevation(testObservers["north_pole"], polaris.RAdeg, polaris.DecDeg,
		time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC))
	if el < 87 || el > 90 {
		t.Errorf("Polaris from 89°N = %.2f°, want within 2° of the zenith", el)
	}
}

func TestRiseTransitSet(t *testing.T) {
	obs := testObservers["mid_north"]
	star := testStars["vega"]
	samples := fixedSamples(star.RAdeg, star.DecDeg, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), 49, 30*time.Minute)

	w, err := RiseTransitSet(obs, samples, HorizonPlanet)
	if err != nil {
		t.Fatalf("RiseTransitSet() error = %v", err)
	}
	if w.Circumpolar || w.NeverRises {
		t.Fatalf("Vega should rise and set at 35°N, got %+v", w)
	}

	want := 90.0 - math.Abs(obs.LatDeg-star.DecDeg)
	if math.Abs(w.MaxElevation-want) > 3 {
		t.Errorf("MaxElevation = %.2f°, want ~%.2f°", w.MaxElevation, want)
	}

	if w.Rise.IsZero() && w.Set.IsZero() {
		t.Fatal("expected at least one horizon crossing in 24h")
	}
	if !w.Rise.IsZero() && !w.Set.IsZero() && !w.Set.After(w.Rise) {
		t.Errorf("set %v should follow rise %v", w.Set, w.Rise)
	}
	for _, ts := range []time.Time{w.Rise, w.Set} {
		if ts.IsZero() {
			continue
		}
		el := Elevation(obs, star.RAdeg, star.DecDeg, ts)
		if math.Abs(el-HorizonPlanet) > 0.5 {
			t.Errorf("elevation at crossing %v = %.3f°, want ~%.3f°", ts, el, HorizonPlanet)
		}
	}
}

func TestRiseTransitSet_Circumpolar(t *testing.T) {
	star := testStars["polaris"]
	samples := fixedSamples(star.RAdeg, star.DecDeg, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), 25, time.Hour)

	w, err := RiseTransitSet(testObservers["north_pole"], samples, HorizonPlanet)
	if err != nil {
		t.Fatalf("RiseTransitSet() error = %v", err)
	}
	if !w.Circumpolar || !w.Rise.IsZero() || !w.Set.IsZero() {
		t.Errorf("Polaris from 89°N = %+v, want circumpolar without crossings", w)
	}
}

func TestRiseTransitSet_NeverRises(t *testing.T) {
	star := testStars["canopus"]
	samples := fixedSamples(star.RAdeg, star.DecDeg, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 25, time.Hour)

	w, err := RiseTransitSet(testObservers["greenwich"], samples, HorizonPlanet)
	if err != nil {
		t.Fatalf("RiseTransitSet() error = %v", err)
	}
	if !w.NeverRises {
		t.Errorf("Canopus should never rise at Greenwich, got %+v", w)
	}
}

func TestRiseTransitSet_BothHemispheres(t *testing.T) {
	star := testStars["arcturus"]
	for _, site := range []string{"greenwich", "sydney"} {
		t.Run(site, func(t *testing.T) {
			samples := fixedSamples(star.RAdeg, star.DecDeg, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), 49, 30*time.Minute)
			w, err := RiseTransitSet(testObservers[site], samples, HorizonPlanet)
			if err != nil {
				t.Fatalf("RiseTransitSet() error = %v", err)
			}
			if w.NeverRises || w.Circumpolar {
				t.Errorf("Arcturus should rise and set from %s, got %+v", site, w)
			}
			if w.MaxElevation <= 0 {
				t.Errorf("MaxElevation = %.2f°, want > 0", w.MaxElevation)
			}
		})
	}
}

func TestRiseTransitSet_InsufficientSamples(t *testing.T) {
	obs := testObservers["greenwich"]
	for n := 0; n < 3; n++ {
		samples := fixedSamples(0, 0, time.Now(), n, time.Hour)
		if _, err := RiseTransitSet(obs, samples, 0); err != ErrInsufficientSamples {
			t.Errorf("%d samples: error = %v, want ErrInsufficientSamples", n, err)
		}
	}
}

func TestInterpolateCrossing(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	tests := []struct {
		name     string
		el1, el2 float64
		wantFrac float64
	}{
		{"midpoint", -10, 10, 0.5},
		{"quarter", -5, 15, 0.25},
		{"three quarters", -15, 5, 0.75},
		{"flat", 3, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := interpolateCrossing(t1, t2, tt.el1, tt.el2, 0)
			frac := float64(got.Sub(t1)) / float64(t2.Sub(t1))
			if math.Abs(frac-tt.wantFrac) > 0.01 {
				t.Errorf("fraction = %.3f, want %.3f", frac, tt.wantFrac)
			}
		})
	}
}
