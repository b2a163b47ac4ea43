package ephem

import (
	"fmt"

	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/catalog"
	"github.com/litescript/ls-ephemeris/internal/flags"
)

// Coverage of the analytic theories, as Julian Days (TT).
const (
	AnalyticFirstJD = 625000.5
	AnalyticLastJD  = 2818000.5
)

// AnalyticSource computes positions from Keplerian elements and a truncated
// lunar theory. It needs no data files. Planet accuracy is best within
// 1800–2050 where the element rates were fitted.
type AnalyticSource struct {
	planets map[catalog.ID]astro.OrbitalElements
}

// NewAnalyticSource creates the built-in source.
func NewAnalyticSource() *AnalyticSource {
	return &AnalyticSource{
		planets: map[catalog.ID]astro.OrbitalElements{
			catalog.Mercury: astro.MercuryElements,
			catalog.Venus:   astro.VenusElements,
			catalog.Mars:    astro.MarsElements,
			catalog.Jupiter: astro.JupiterElements,
			catalog.Saturn:  astro.SaturnElements,
			catalog.Uranus:  astro.UranusElements,
			catalog.Neptune: astro.NeptuneElements,
			catalog.Pluto:   astro.PlutoElements,
			catalog.Chiron:  astro.ChironElements,
		},
	}
}

// Name implements Source.
func (s *AnalyticSource) Name() string {
	return "analytic"
}

// EngineFlag implements Source.
func (s *AnalyticSource) EngineFlag() flags.Flags {
	return flags.MoshierEph
}

// Close implements Source.
func (s *AnalyticSource) Close() error {
	return nil
}

// Position implements Source.
func (s *AnalyticSource) Position(body catalog.ID, center Center, jdTT float64) (astro.Vec3, error) {
	if jdTT < AnalyticFirstJD || jdTT > AnalyticLastJD {
		return astro.Vec3{}, fmt.Errorf("%w: JD %.1f not in [%.1f, %.1f]", ErrOutsideRange, jdTT, AnalyticFirstJD, AnalyticLastJD)
	}

	if body == catalog.Moon || isLunarPoint(body) {
		geo, err := s.lunar(body, jdTT)
		if err != nil {
			return astro.Vec3{}, err
		}
		if center == CenterEarth {
			return geo, nil
		}
		return s.earth(jdTT).Add(geo), nil
	}

	helio, err := s.heliocentric(body, jdTT)
	if err != nil {
		return astro.Vec3{}, err
	}
	if center == CenterSun {
		return helio, nil
	}
	return helio.Sub(s.earth(jdTT)), nil
}

func (s *AnalyticSource) heliocentric(body catalog.ID, jdTT float64) (astro.Vec3, error) {
	switch body {
	case catalog.Sun:
		return astro.Vec3{}, nil
	case catalog.Earth:
		return s.earth(jdTT), nil
	}
	el, ok := s.planets[body]
	if !ok {
		return astro.Vec3{}, fmt.Errorf("%w: %s", ErrUnsupportedBody, body)
	}
	return el.Position(jdTT), nil
}

// earth returns the heliocentric Earth, offset from the Earth-Moon
// barycenter by the Moon's share.
func (s *AnalyticSource) earth(jdTT float64) astro.Vec3 {
	emb := astro.EarthMoonBarycenterElements.Position(jdTT)
	moon := astro.UnprecessEcliptic(astro.MoonGeocentric(jdTT), jdTT)
	return emb.Sub(moon.Scale(1 / (1 + astro.EarthMoonMassRatio)))
}

// lunar returns the geocentric J2000 vector of the Moon or a lunar point.
func (s *AnalyticSource) lunar(body catalog.ID, jdTT float64) (astro.Vec3, error) {
	meanDist := astro.KmToAU(astro.MoonMeanDistanceKm)

	var ofDate astro.Vec3
	switch body {
	case catalog.Moon:
		ofDate = astro.MoonGeocentric(jdTT)
	case catalog.MeanNode:
		ofDate = astro.FromSpherical(astro.Spherical{LonDeg: astro.MeanLunarNode(jdTT), Dist: meanDist})
	case catalog.TrueNode:
		ofDate = astro.FromSpherical(astro.Spherical{LonDeg: astro.TrueLunarNode(jdTT), Dist: meanDist})
	case catalog.MeanApogee:
		ofDate = astro.MeanLunarApogee(jdTT)
	case catalog.OsculatingApogee:
		ofDate = astro.OsculatingLunarApogee(jdTT)
	case catalog.InterpolatedApogee:
		ofDate = astro.InterpolatedLunarApogee(jdTT)
	case catalog.InterpolatedPerigee:
		ofDate = astro.InterpolatedLunarPerigee(jdTT)
	default:
		return astro.Vec3{}, fmt.Errorf("%w: %s", ErrUnsupportedBody, body)
	}
	return astro.UnprecessEcliptic(ofDate, jdTT), nil
}
