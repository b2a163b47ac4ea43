package ephem

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/catalog"
)

// vectorResult renders a Horizons CSV vector table for a body moving on a
// straight line: pos = p0 + v*(jd-jd0).
func vectorResult(jd0 float64, p0, v astro.Vec3, n int, step float64) string {
	var b strings.Builder
	b.WriteString("*******\nTarget body name: Mars (499)\n$$SOE\n")
	for i := 0; i < n; i++ {
		jd := jd0 + float64(i)*step
		dt := jd - jd0
		fmt.Fprintf(&b, "%.9f, A.D. 2000-Jan-01 12:00:00.0000, %.15E, %.15E, %.15E, %.15E, %.15E, %.15E,\n",
			jd, p0.X+v.X*dt, p0.Y+v.Y*dt, p0.Z+v.Z*dt, v.X, v.Y, v.Z)
	}
	b.WriteString("$$EOE\n*******\n")
	return b.String()
}

func horizonsServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		q := r.URL.Query()
		assert.Equal(t, "VECTORS", q.Get("EPHEM_TYPE"))
		assert.Equal(t, "ECLIPTIC", q.Get("REF_PLANE"))

		var start float64
		_, err := fmt.Sscanf(q.Get("START_TIME"), "'JD %f'", &start)
		require.NoError(t, err)

		p0 := astro.Vec3{X: 1.2, Y: -0.4, Z: 0.03}
		v := astro.Vec3{X: 0.001, Y: 0.012, Z: -0.0002}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"signature": map[string]string{"version": "1.2", "source": "NASA/JPL Horizons API"},
			"result":    vectorResult(start, p0, v, 25, 1.0/12),
		})
	}))
}

func TestHorizonsSource_InterpolatesAndCaches(t *testing.T) {
	var calls int32
	srv := horizonsServer(t, &calls)
	defer srv.Close()

	src := NewHorizonsSource(NewAnalyticSource(), WithHorizonsURL(srv.URL))

	pos, err := src.Position(catalog.Mars, CenterSun, jd2000)
	require.NoError(t, err)
	// The table starts one day before the request.
	start := jd2000 - HorizonsWindow/2
	dt := jd2000 - start
	assert.InDelta(t, 1.2+0.001*dt, pos.X, 1e-9)
	assert.InDelta(t, -0.4+0.012*dt, pos.Y, 1e-9)
	assert.InDelta(t, 0.03-0.0002*dt, pos.Z, 1e-9)

	// Nearby dates come from the cached table.
	_, err = src.Position(catalog.Mars, CenterSun, jd2000+0.3)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// A different center is a different table.
	_, err = src.Position(catalog.Mars, CenterEarth, jd2000)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	src.InvalidateCache()
	_, err = src.Position(catalog.Mars, CenterSun, jd2000)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHorizonsSource_LunarPointsFallBack(t *testing.T) {
	var calls int32
	srv := horizonsServer(t, &calls)
	defer srv.Close()

	analytic := NewAnalyticSource()
	src := NewHorizonsSource(analytic, WithHorizonsURL(srv.URL))

	got, err := src.Position(catalog.MeanNode, CenterEarth, jd2000)
	require.NoError(t, err)
	want, err := analytic.Position(catalog.MeanNode, CenterEarth, jd2000)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Zero(t, atomic.LoadInt32(&calls))

	origin, err := src.Position(catalog.Sun, CenterSun, jd2000)
	require.NoError(t, err)
	assert.True(t, origin.IsZero())
}

func TestHorizonsSource_BreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := NewHorizonsSource(nil, WithHorizonsURL(srv.URL))
	for i := 0; i < 5; i++ {
		_, err := src.Position(catalog.Jupiter, CenterSun, jd2000+float64(i))
		require.Error(t, err)
	}
	// Three consecutive failures trip the breaker; later calls never reach
	// the server.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	_, err := src.Position(catalog.MeanNode, CenterEarth, jd2000)
	assert.ErrorIs(t, err, ErrUnsupportedBody)
}

func TestParseVectorResponse(t *testing.T) {
	body, err := json.Marshal(map[string]string{"result": vectorResult(jd2000, astro.Vec3{X: 1}, astro.Vec3{Y: 0.01}, 3, 0.5)})
	require.NoError(t, err)

	table, err := parseVectorResponse(body)
	require.NoError(t, err)
	require.Len(t, table.samples, 3)
	assert.Equal(t, jd2000+1, table.samples[2].jd)
	assert.InDelta(t, 0.01, table.samples[1].pos.Y, 1e-15)

	_, ok := table.interpolate(jd2000 + 1.5)
	assert.False(t, ok, "outside the table")

	errBody, _ := json.Marshal(map[string]string{"error": "No matches found."})
	_, err = parseVectorResponse(errBody)
	assert.ErrorContains(t, err, "No matches found")

	noMarkers, _ := json.Marshal(map[string]string{"result": "nothing here"})
	_, err = parseVectorResponse(noMarkers)
	assert.Error(t, err)
}

func TestParseVectorLine(t *testing.T) {
	s, err := parseVectorLine("2451545.000000000, A.D. 2000-Jan-01 12:00:00.0000, -1.771350992727098E-01,  9.672416867665306E-01, -4.085281582511366E-06, -1.720762506872895E-02, -3.158782144324866E-03,  1.049888009217075E-07,")
	require.NoError(t, err)
	assert.Equal(t, 2451545.0, s.jd)
	assert.InDelta(t, 0.9834, s.pos.Norm(), 1e-3)
	assert.InDelta(t, -1.720762506872895e-02, s.vel.X, 1e-18)

	_, err = parseVectorLine("invalid")
	assert.Error(t, err)
}

func TestFormatStepSize(t *testing.T) {
	assert.Equal(t, "2 h", formatStepSize(HorizonsStep))
	assert.Equal(t, "10 m", formatStepSize(600e9))
}
