package ephem

import (
	"fmt"
	"math"
	"sync"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/catalog"
	"github.com/litescript/ls-ephemeris/internal/flags"
	"github.com/litescript/ls-ephemeris/internal/logging"
)

// SpeedStep is the half-width of the central difference used for speeds,
// in days.
const SpeedStep = 0.005

// lightTimeIterations bounds the light-time solution.
const lightTimeIterations = 3

// Engine reduces geometric source positions to the place requested by a
// flags bitmask. It implements Calculator.
type Engine struct {
	src Source
	log *logging.Logger

	mu   sync.Mutex
	topo *astro.Observer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for per-call debug dumps.
func WithLogger(l *logging.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates a calculator over src.
func NewEngine(src Source, opts ...EngineOption) *Engine {
	e := &Engine{src: src, log: logging.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements Calculator.
func (e *Engine) Name() string {
	return e.src.Name()
}

// EngineFlag reports the engine bit of the underlying source.
func (e *Engine) EngineFlag() flags.Flags {
	return e.src.EngineFlag()
}

// Source returns the underlying position source.
func (e *Engine) Source() Source {
	return e.src
}

// SetTopo implements Calculator.
func (e *Engine) SetTopo(lonDeg, latDeg, altMeters float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.topo = &astro.Observer{LonDeg: lonDeg, LatDeg: latDeg, AltMeters: altMeters}
}

// Close implements Calculator.
func (e *Engine) Close() error {
	return e.src.Close()
}

// Calc implements Calculator.
func (e *Engine) Calc(jdUT float64, body catalog.ID, fl flags.Flags) ([6]float64, error) {
	var out [6]float64

	if err := fl.Validate(); err != nil {
		return out, err
	}
	if _, ok := catalog.Lookup(body); !ok {
		return out, fmt.Errorf("%w: id %d", ErrUnsupportedBody, int(body))
	}

	e.mu.Lock()
	obs := e.topo
	e.mu.Unlock()

	mode := fl.Mode()
	if mode.Frame == flags.FrameTopocentric && obs == nil {
		return out, ErrObserverNotSet
	}

	if !isZeroVector(body, mode.Frame) {
		r := reduction{src: e.src, body: body, mode: mode, apparent: !fl.Has(flags.TruePosition), obs: obs}

		p0, err := r.coords(jdUT)
		if err != nil {
			return out, err
		}
		copy(out[:3], p0[:])

		if fl.Has(flags.Speed) {
			plus, err := r.coords(jdUT + SpeedStep)
			if err != nil {
				return out, err
			}
			minus, err := r.coords(jdUT - SpeedStep)
			if err != nil {
				return out, err
			}
			for i := 0; i < 3; i++ {
				d := plus[i] - minus[i]
				if i == 0 && mode.Representation != flags.ReprRectangular {
					d = astro.AngleDiff(plus[i], minus[i])
				}
				out[3+i] = d / (2 * SpeedStep)
			}
		}

		if fl.Has(flags.Radians) && mode.Representation != flags.ReprRectangular {
			for _, i := range []int{0, 1, 3, 4} {
				out[i] = astro.DegToRad(out[i])
			}
		}
	}

	if e.log.Enabled(logging.LevelDebug) {
		e.log.Debug("%s", dumpCall(body, jdUT, fl, out))
	}
	return out, nil
}

// isZeroVector reports the body/frame pairs whose position is the origin
// itself, or undefined.
func isZeroVector(body catalog.ID, frame flags.Frame) bool {
	switch {
	case body == catalog.Sun && frame == flags.FrameHeliocentric:
		return true
	case body == catalog.Earth && frame != flags.FrameHeliocentric:
		return true
	case isLunarPoint(body) && frame == flags.FrameHeliocentric:
		return true
	}
	return false
}

// reduction carries one Calc request through the pipeline.
type reduction struct {
	src      Source
	body     catalog.ID
	mode     flags.Mode
	apparent bool
	obs      *astro.Observer
}

// coords returns the three position values of the requested representation
// at jdUT, in degrees and AU.
func (r reduction) coords(jdUT float64) ([3]float64, error) {
	jdTT := astro.EphemerisTime(jdUT)

	v, err := r.position(jdUT, jdTT)
	if err != nil {
		return [3]float64{}, err
	}

	nut := astro.NutationAt(jdTT)
	sidereal := r.mode.Zodiac == flags.ZodiacSidereal

	switch r.mode.Representation {
	case flags.ReprEquatorial:
		eq := astro.EclipticToEquatorialAt(v, astro.TrueObliquity(jdTT))
		s := astro.ToSpherical(eq)
		return [3]float64{s.LonDeg, s.LatDeg, s.Dist}, nil
	case flags.ReprRectangular:
		if sidereal {
			v = toSidereal(v, jdTT, nut)
		}
		return [3]float64{v.X, v.Y, v.Z}, nil
	default:
		if sidereal {
			v = toSidereal(v, jdTT, nut)
		}
		s := astro.ToSpherical(v)
		return [3]float64{s.LonDeg, s.LatDeg, s.Dist}, nil
	}
}

// toSidereal refers a true-equinox vector to the sidereal zero point. The
// ayanamsa is measured from the mean equinox, so nutation is removed first.
func toSidereal(v astro.Vec3, jdTT float64, nut astro.Nutation) astro.Vec3 {
	return v.RotateZ(-astro.DegToRad(nut.Longitude + astro.LahiriAyanamsa(jdTT)))
}

// position returns the body vector in the requested frame, referred to the
// ecliptic and true equinox of date, in AU.
func (r reduction) position(jdUT, jdTT float64) (astro.Vec3, error) {
	var v astro.Vec3
	var err error

	if r.mode.Frame == flags.FrameHeliocentric {
		v, err = r.heliocentric(jdTT)
	} else {
		v, err = r.geocentric(jdTT)
	}
	if err != nil {
		return astro.Vec3{}, err
	}

	v = astro.PrecessEcliptic(v, jdTT)
	v = v.RotateZ(astro.DegToRad(astro.NutationAt(jdTT).Longitude))

	if r.mode.Frame == flags.FrameTopocentric {
		v = v.Sub(observerEcliptic(*r.obs, jdUT, jdTT))
	}
	return v, nil
}

func (r reduction) heliocentric(jdTT float64) (astro.Vec3, error) {
	v, err := r.src.Position(r.body, CenterSun, jdTT)
	if err != nil || !r.apparent {
		return v, err
	}
	for i := 0; i < lightTimeIterations; i++ {
		tau := v.Norm() * astro.LightDaysPerAU
		if v, err = r.src.Position(r.body, CenterSun, jdTT-tau); err != nil {
			return astro.Vec3{}, err
		}
	}
	return v, nil
}

func (r reduction) geocentric(jdTT float64) (astro.Vec3, error) {
	// Lunar points are geometric constructions; no light-time applies.
	if isLunarPoint(r.body) {
		return r.src.Position(r.body, CenterEarth, jdTT)
	}

	v, err := r.src.Position(r.body, CenterEarth, jdTT)
	if err != nil || !r.apparent {
		return v, err
	}

	earth, err := r.src.Position(catalog.Earth, CenterSun, jdTT)
	if err != nil {
		return astro.Vec3{}, err
	}

	for i := 0; i < lightTimeIterations; i++ {
		tau := v.Norm() * astro.LightDaysPerAU
		if r.body == catalog.Moon {
			v, err = r.src.Position(r.body, CenterEarth, jdTT-tau)
		} else {
			var b astro.Vec3
			b, err = r.src.Position(r.body, CenterSun, jdTT-tau)
			v = b.Sub(earth)
		}
		if err != nil {
			return astro.Vec3{}, err
		}
	}

	vel, err := r.earthVelocity(jdTT)
	if err != nil {
		return astro.Vec3{}, err
	}
	return aberrate(v, vel), nil
}

func (r reduction) earthVelocity(jdTT float64) (astro.Vec3, error) {
	const h = 0.01
	plus, err := r.src.Position(catalog.Earth, CenterSun, jdTT+h)
	if err != nil {
		return astro.Vec3{}, err
	}
	minus, err := r.src.Position(catalog.Earth, CenterSun, jdTT-h)
	if err != nil {
		return astro.Vec3{}, err
	}
	return plus.Sub(minus).Scale(1 / (2 * h)), nil
}

// aberrate applies annual aberration to first order in v/c.
func aberrate(v, earthVel astro.Vec3) astro.Vec3 {
	dist := v.Norm()
	if dist == 0 {
		return v
	}
	u := v.Scale(1 / dist).Add(earthVel.Scale(astro.LightDaysPerAU))
	return u.Normalized().Scale(dist)
}

// observerEcliptic returns the geocentric observer position in AU,
// ecliptic and true equinox of date.
func observerEcliptic(obs astro.Observer, jdUT, jdTT float64) astro.Vec3 {
	eci := satellite.LLAToECI(satellite.LatLong{
		Latitude:  astro.DegToRad(obs.LatDeg),
		Longitude: astro.DegToRad(obs.LonDeg),
	}, obs.AltMeters/1000, jdUT)

	eq := astro.Vec3{X: astro.KmToAU(eci.X), Y: astro.KmToAU(eci.Y), Z: astro.KmToAU(eci.Z)}
	return astro.EquatorialToEclipticAt(eq, astro.TrueObliquity(jdTT))
}

// dumpCall formats one primitive call with labelled outputs.
func dumpCall(body catalog.ID, jdUT float64, fl flags.Flags, out [6]float64) string {
	labels := valueLabels(fl.Representation())
	s := fmt.Sprintf("calc %s jd=%.6f flags=%s(%d)", body, jdUT, fl, uint32(fl))
	for i, v := range out {
		if math.Abs(v) < 1e-3 && v != 0 {
			s += fmt.Sprintf(" %s=%.6e", labels[i], v)
		} else {
			s += fmt.Sprintf(" %s=%.6f", labels[i], v)
		}
	}
	return s
}

func valueLabels(r flags.Representation) [6]string {
	switch r {
	case flags.ReprEquatorial:
		return [6]string{"ra", "dec", "dist", "dra", "ddec", "ddist"}
	case flags.ReprRectangular:
		return [6]string{"x", "y", "z", "dx", "dy", "dz"}
	default:
		return [6]string{"lon", "lat", "dist", "dlon", "dlat", "ddist"}
	}
}
