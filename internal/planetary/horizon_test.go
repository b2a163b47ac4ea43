package planetary

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/catalog"
)

func TestHorizonWindow_SunAtLondon(t *testing.T) {
	s := newReadySession(t)
	require.NoError(t, s.SetObserverLocation(-0.1278, 51.5074, 11))

	day := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	w, err := s.HorizonWindow(context.Background(), catalog.Sun, day, 24*time.Hour, 0)
	require.NoError(t, err)

	assert.False(t, w.Circumpolar)
	assert.False(t, w.NeverRises)

	// Almanac: sunrise 03:43, transit 12:02, sunset 20:21 UTC.
	assert.WithinDuration(t, day.Add(3*time.Hour+43*time.Minute), w.Rise, 5*time.Minute)
	assert.WithinDuration(t, day.Add(12*time.Hour+2*time.Minute), w.Transit, 5*time.Minute)
	assert.WithinDuration(t, day.Add(20*time.Hour+21*time.Minute), w.Set, 5*time.Minute)
	assert.InDelta(t, 90-51.5074+23.44, w.MaxElevation, 0.5)
}

func TestHorizonWindow_MidnightSun(t *testing.T) {
	s := newReadySession(t)
	require.NoError(t, s.SetObserverLocation(18.9553, 69.6492, 0)) // Tromsø

	day := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	w, err := s.HorizonWindow(context.Background(), catalog.Sun, day, 24*time.Hour, 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, w.Circumpolar)
	assert.True(t, w.Rise.IsZero())
}

func TestHorizonWindow_Errors(t *testing.T) {
	s := newReadySession(t)
	day := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)

	_, err := s.HorizonWindow(context.Background(), catalog.Sun, day, 24*time.Hour, 0)
	assert.ErrorIs(t, err, ErrNoObserver)

	require.NoError(t, s.SetObserverLocation(0, 0, 0))

	_, err = s.HorizonWindow(context.Background(), catalog.Sun, day, 10*time.Minute, 0)
	assert.ErrorIs(t, err, astro.ErrInsufficientSamples)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.HorizonWindow(ctx, catalog.Sun, day, 24*time.Hour, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHorizonAltitude(t *testing.T) {
	assert.Equal(t, astro.HorizonSun, HorizonAltitude(catalog.Sun))
	assert.Equal(t, astro.HorizonMoon, HorizonAltitude(catalog.Moon))
	assert.Equal(t, astro.HorizonPlanet, HorizonAltitude(catalog.Jupiter))
}
