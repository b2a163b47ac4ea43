package astro

import (
	"math"
	"testing"
)

func TestMoonGeocentric(t *testing.T) {
	// Meeus example 47.a, 1992-04-12 0h TD. The published longitude includes
	// nutation (Δψ = +0.004610°), which the geometric series omits.
	sph := ToSpherical(MoonGeocentric(2448724.5))

	if d := math.Abs(AngleDiff(sph.LonDeg, 133.162655-0.004610)); d > 0.05 {
		t.Errorf("Moon longitude = %.5f°, off by %.4f°", sph.LonDeg, d)
	}
	if math.Abs(sph.LatDeg-(-3.229126)) > 0.03 {
		t.Errorf("Moon latitude = %.5f°, want -3.229126°", sph.LatDeg)
	}
	if km := AUToKm(sph.Dist); math.Abs(km-368409.7) > 300 {
		t.Errorf("Moon distance = %.1f km, want 368409.7 km", km)
	}
}

func TestMoonDistanceBounds(t *testing.T) {
	for jd := J2000; jd < J2000+400; jd += 0.7 {
		km := AUToKm(MoonGeocentric(jd).Norm())
		if km < 355000 || km > 408000 {
			t.Fatalf("Moon distance at JD %v = %.0f km, out of range", jd, km)
		}
	}
}

func TestMeanLunarNode(t *testing.T) {
	// Regresses about 19.34° per year.
	n0 := MeanLunarNode(J2000)
	if math.Abs(n0-125.0445) > 0.001 {
		t.Errorf("MeanLunarNode(J2000) = %v, want 125.0445", n0)
	}
	n1 := MeanLunarNode(J2000 + 365.25)
	if d := AngleDiff(n1, n0); math.Abs(d-(-19.34)) > 0.05 {
		t.Errorf("node motion over one year = %.3f°, want -19.34°", d)
	}

	// The true node stays within 2° of the mean node.
	for jd := J2000; jd < J2000+365; jd += 3 {
		if d := AngleDiff(TrueLunarNode(jd), MeanLunarNode(jd)); math.Abs(d) > 2.0 {
			t.Fatalf("true node deviates %.3f° from mean at JD %v", d, jd)
		}
	}
}

func TestLunarApogees(t *testing.T) {
	jd := J2000 + 100

	mean := MeanLunarApogee(jd)
	wantDist := KmToAU(MoonMeanDistanceKm * (1 + MoonEccentricity))
	if math.Abs(mean.Norm()-wantDist) > 1e-12 {
		t.Errorf("mean apogee distance = %v, want %v", mean.Norm(), wantDist)
	}
	if lat := ToSpherical(mean).LatDeg; math.Abs(lat) > MoonInclination+1e-9 {
		t.Errorf("mean apogee latitude %v exceeds the orbit inclination", lat)
	}

	meanLon := ToSpherical(mean).LonDeg

	osc := OsculatingLunarApogee(jd)
	if km := AUToKm(osc.Norm()); km < 380000 || km > 430000 {
		t.Errorf("osculating apogee distance = %.0f km", km)
	}
	if d := AngleDiff(ToSpherical(osc).LonDeg, meanLon); math.Abs(d) > 35 {
		t.Errorf("osculating apogee %.2f° from mean apogee", d)
	}

	intp := InterpolatedLunarApogee(jd)
	if d := AngleDiff(ToSpherical(intp).LonDeg, meanLon); math.Abs(d) > 25 {
		t.Errorf("interpolated apogee %.2f° from mean apogee", d)
	}

	perigee := InterpolatedLunarPerigee(jd)
	if d := AngleDiff(ToSpherical(perigee).LonDeg, ToSpherical(intp).LonDeg); math.Abs(math.Abs(d)-180) > 1e-6 {
		t.Errorf("interpolated perigee not opposite apogee: separation %.6f°", d)
	}
	if perigee.Norm() >= intp.Norm() {
		t.Error("perigee distance should be less than apogee distance")
	}
}
