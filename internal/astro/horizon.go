package astro

import (
	"errors"
	"math"
	"time"
)

// Standard altitudes of the horizon crossing, degrees. They include mean
// refraction and, for the Sun, its semi-diameter.
const (
	HorizonPlanet = -0.5667
	HorizonSun    = -0.8333
	HorizonMoon   = 0.125
)

// ErrInsufficientSamples is returned when fewer than three samples are given.
var ErrInsufficientSamples = errors.New("insufficient samples for horizon search")

// EquatorialSample is an apparent topocentric place at one instant.
type EquatorialSample struct {
	Time   time.Time
	RAdeg  float64
	DecDeg float64
}

// Horizontal is a position above the local horizon.
type Horizontal struct {
	AzDeg float64 // from north through east
	ElDeg float64
}

// EquatorialToHorizontal converts an apparent place to azimuth and
// elevation for obs at t, using mean sidereal time.
func EquatorialToHorizontal(raDeg, decDeg float64, obs Observer, t time.Time) Horizontal {
	lst := GreenwichMeanSiderealTime(JulianDate(t)) + obs.LonDeg
	h := degToRad(NormalizeDegrees(lst - raDeg))
	dec := degToRad(decDeg)
	lat := degToRad(obs.LatDeg)

	sinEl := math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(h)
	el := math.Asin(clamp(sinEl, -1, 1))

	az := math.Atan2(math.Sin(h), math.Cos(h)*math.Sin(lat)-math.Tan(dec)*math.Cos(lat))

	return Horizontal{
		AzDeg: NormalizeDegrees(radToDeg(az) + 180),
		ElDeg: radToDeg(el),
	}
}

// Elevation returns the elevation of an apparent place for obs at t.
func Elevation(obs Observer, raDeg, decDeg float64, t time.Time) float64 {
	return EquatorialToHorizontal(raDeg, decDeg, obs, t).ElDeg
}

// HorizonWindow is the first rise, highest point and following set found
// in a run of samples. Rise or Set is zero when the body was already up at
// the first sample or still up at the last.
type HorizonWindow struct {
	Rise         time.Time
	Transit      time.Time
	Set          time.Time
	MaxElevation float64
	Circumpolar  bool // above the horizon at every sample
	NeverRises   bool // below the horizon at every sample
}

// RiseTransitSet searches chronologically ordered samples for crossings of
// the horizon altitude horizonDeg. Crossing times are linearly
// interpolated between samples; the transit is refined with a parabola
// through the three samples around the highest one.
func RiseTransitSet(obs Observer, samples []EquatorialSample, horizonDeg float64) (HorizonWindow, error) {
	if len(samples) < 3 {
		return HorizonWindow{}, ErrInsufficientSamples
	}

	els := make([]float64, len(samples))
	minEl, maxEl := 90.0, -90.0
	maxIdx := 0
	for i, s := range samples {
		els[i] = Elevation(obs, s.RAdeg, s.DecDeg, s.Time)
		minEl = math.Min(minEl, els[i])
		if els[i] > maxEl {
			maxEl = els[i]
			maxIdx = i
		}
	}

	if maxEl <= horizonDeg {
		return HorizonWindow{NeverRises: true, MaxElevation: maxEl}, nil
	}

	transit, peak := refineTransit(samples, els, maxIdx)
	if minEl > horizonDeg {
		return HorizonWindow{Transit: transit, MaxElevation: peak, Circumpolar: true}, nil
	}

	w := HorizonWindow{Transit: transit, MaxElevation: peak}

	setFrom := 1
	for i := 1; i < len(samples); i++ {
		if els[i-1] <= horizonDeg && els[i] > horizonDeg {
			w.Rise = interpolateCrossing(samples[i-1].Time, samples[i].Time, els[i-1], els[i], horizonDeg)
			setFrom = i + 1
			break
		}
	}
	for i := setFrom; i < len(samples); i++ {
		if els[i-1] > horizonDeg && els[i] <= horizonDeg {
			w.Set = interpolateCrossing(samples[i-1].Time, samples[i].Time, els[i-1], els[i], horizonDeg)
			break
		}
	}

	return w, nil
}

// refineTransit fits y = at² + bt + c through the samples either side of
// idx and returns the vertex when it opens downward.
func refineTransit(samples []EquatorialSample, els []float64, idx int) (time.Time, float64) {
	if idx == 0 || idx == len(samples)-1 {
		return samples[idx].Time, els[idx]
	}

	y0, y1, y2 := els[idx-1], els[idx], els[idx+1]
	c := y1
	a := (y0+y2)/2 - c
	b := (y2 - y0) / 2
	if a >= 0 {
		return samples[idx].Time, y1
	}

	tMax := clamp(-b/(2*a), -1, 1)
	step := samples[idx].Time.Sub(samples[idx-1].Time)
	return samples[idx].Time.Add(time.Duration(float64(step) * tMax)), a*tMax*tMax + b*tMax + c
}

// interpolateCrossing finds the time when elevation crosses threshold.
func interpolateCrossing(t1, t2 time.Time, el1, el2, threshold float64) time.Time {
	if math.Abs(el2-el1) < 0.0001 {
		return t1
	}
	fraction := clamp((threshold-el1)/(el2-el1), 0, 1)
	return t1.Add(time.Duration(float64(t2.Sub(t1)) * fraction))
}
