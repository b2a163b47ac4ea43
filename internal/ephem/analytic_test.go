package ephem

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/catalog"
)

func TestAnalyticSource_CentersAreConsistent(t *testing.T) {
	src := NewAnalyticSource()
	jd := 2455000.5

	earth, err := src.Position(catalog.Earth, CenterSun, jd)
	require.NoError(t, err)

	for _, body := range []catalog.ID{catalog.Sun, catalog.Moon, catalog.Mars, catalog.Chiron, catalog.TrueNode} {
		helio, err := src.Position(body, CenterSun, jd)
		require.NoError(t, err)
		geo, err := src.Position(body, CenterEarth, jd)
		require.NoError(t, err)
		assert.InDelta(t, 0, helio.Sub(earth).Sub(geo).Norm(), 1e-12, "%s", body)
	}
}

func TestAnalyticSource_EarthMoonBarycenter(t *testing.T) {
	src := NewAnalyticSource()
	jd := 2455000.5

	earth, err := src.Position(catalog.Earth, CenterSun, jd)
	require.NoError(t, err)
	moon, err := src.Position(catalog.Moon, CenterSun, jd)
	require.NoError(t, err)

	// The mass-weighted mean of Earth and Moon is the barycenter.
	mu := 1 / (1 + astro.EarthMoonMassRatio)
	bary := earth.Scale(1 - mu).Add(moon.Scale(mu))
	emb := astro.EarthMoonBarycenterElements.Position(jd)
	assert.InDelta(t, 0, bary.Sub(emb).Norm(), 1e-12)
}

func TestAnalyticSource_Range(t *testing.T) {
	src := NewAnalyticSource()

	_, err := src.Position(catalog.Sun, CenterEarth, AnalyticFirstJD-1)
	assert.ErrorIs(t, err, ErrOutsideRange)
	_, err = src.Position(catalog.Sun, CenterEarth, AnalyticLastJD+1)
	assert.ErrorIs(t, err, ErrOutsideRange)
	_, err = src.Position(catalog.Sun, CenterEarth, AnalyticFirstJD)
	assert.NoError(t, err)
}

func TestAnalyticSource_UnsupportedBody(t *testing.T) {
	_, err := NewAnalyticSource().Position(catalog.ID(16), CenterSun, jd2000)
	assert.ErrorIs(t, err, ErrUnsupportedBody)
}

func TestOpen(t *testing.T) {
	e, err := Open(Config{Kind: KindAnalytic}, nil)
	require.NoError(t, err)
	assert.Equal(t, "analytic", e.Name())
	assert.NoError(t, e.Close())

	e, err = Open(Config{Kind: KindHorizons, HorizonsURL: "http://127.0.0.1:1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "horizons", e.Name())

	_, err = Open(Config{Kind: KindJPL, EphePath: t.TempDir(), JPLFile: "de440.bin"}, nil)
	assert.Error(t, err)
}

func TestOpenJPLSource_MissingFile(t *testing.T) {
	_, err := OpenJPLSource(filepath.Join(t.TempDir(), "missing.bin"), nil)
	assert.Error(t, err)
}
