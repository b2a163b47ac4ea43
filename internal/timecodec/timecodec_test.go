package timecodec

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDayNumber(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want float64
	}{
		{"J2000", time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), 2451545.0},
		{"unix epoch", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 2440587.5},
		{"offset zone", time.Date(2000, 1, 1, 13, 0, 0, 0, time.FixedZone("CET", 3600)), 2451545.0},
		{"sub-second dropped", time.Date(2000, 1, 1, 12, 0, 0, 999_000_000, time.UTC), 2451545.0},
		{"before 1900 March", time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC), 2378496.5},
		{"after 2100 February", time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC), 2524593.5},
		{"start of 1900 window", time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC), 2415079.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToDayNumber(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-7)
		})
	}
}

func TestToDayNumber_RejectsNaiveInstants(t *testing.T) {
	_, err := ToDayNumber(time.Time{})
	assert.ErrorIs(t, err, ErrInvalidTimestamp)

	_, err = ToDayNumber(time.Date(2000, 1, 1, 12, 0, 0, 0, time.Local))
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestFromDayNumber(t *testing.T) {
	got, err := FromDayNumber(2451545.0, nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)), "got %v", got)
	assert.Equal(t, time.UTC, got.Location())

	tokyo := time.FixedZone("JST", 9*3600)
	got, err = FromDayNumber(2451545.0, tokyo)
	require.NoError(t, err)
	assert.Equal(t, 21, got.Hour())
	assert.Equal(t, tokyo, got.Location())

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FromDayNumber(bad, nil)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, "jd=%v", bad)
	}
}

func TestDayNumber_BeforeEpoch(t *testing.T) {
	// JD 0 is -4713-11-24 12:00 UT in the proleptic Gregorian calendar.
	origin, err := FromDayNumber(0, nil)
	require.NoError(t, err)
	assert.True(t, origin.Equal(time.Date(-4713, 11, 24, 12, 0, 0, 0, time.UTC)), "got %v", origin)

	tests := []struct {
		name string
		in   time.Time
		want float64
	}{
		{"23.5 days before JD 0", time.Date(-4713, 11, 1, 0, 0, 0, 0, time.UTC), -23.5},
		{"one year before", time.Date(-4714, 11, 24, 12, 0, 0, 0, time.UTC), -365},
		{"year -5000", time.Date(-5000, 3, 15, 6, 30, 15, 0, time.FixedZone("X", -3*3600)), math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jd, err := ToDayNumber(tt.in)
			require.NoError(t, err)
			require.Negative(t, jd)
			if !math.IsNaN(tt.want) {
				assert.InDelta(t, tt.want, jd, 1e-9)
			}

			back, err := FromDayNumber(jd, tt.in.Location())
			require.NoError(t, err)
			assert.WithinDuration(t, tt.in, back, Resolution)
			assert.Equal(t, tt.in.Location(), back.Location())
		})
	}

	back, err := FromDayNumber(-100.25, nil)
	require.NoError(t, err)
	assert.True(t, back.Equal(origin.Add(-100*24*time.Hour-6*time.Hour)), "got %v", back)
}

func TestFromDayNumber_MicrosecondResolution(t *testing.T) {
	got, err := FromDayNumber(2451545.0+0.25/86400, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Nanosecond()%int(time.Microsecond))
	assert.InDelta(t, 250_000, got.Nanosecond()/1000, 100)
}

func TestRoundTripWithinResolution(t *testing.T) {
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("IST", 5*3600+1800),
		time.FixedZone("HST", -10*3600),
	}
	start := time.Date(1969, 7, 20, 20, 17, 40, 123_456_789, time.UTC)

	for i := 0; i < 500; i++ {
		loc := zones[i%len(zones)]
		in := start.Add(time.Duration(i) * 7919 * time.Minute).Add(time.Duration(i) * 37 * time.Millisecond).In(loc)

		d, err := RoundTripError(in)
		require.NoError(t, err)
		if d < 0 {
			d = -d
		}
		require.Less(t, d, Resolution, "round trip of %v", in)
	}
}

func TestRoundTripPreservesZone(t *testing.T) {
	loc := time.FixedZone("NPT", 5*3600+45*60)
	in := time.Date(2024, 2, 29, 23, 59, 59, 0, loc)

	jd, err := ToDayNumber(in)
	require.NoError(t, err)
	out, err := FromDayNumber(jd, loc)
	require.NoError(t, err)

	assert.Equal(t, loc, out.Location())
	assert.WithinDuration(t, in, out, time.Millisecond)
}

func TestParseInstant(t *testing.T) {
	got, err := ParseInstant("2000-01-01T12:00:00Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)))

	got, err = ParseInstant(" 2000-01-01T13:30:00+01:30 ")
	require.NoError(t, err)
	_, offset := got.Zone()
	assert.Equal(t, 5400, offset)
	assert.NotEqual(t, time.Local, got.Location())

	got, err = ParseInstant("2024-03-20T04:06:00+01:00[Europe/Paris]")
	if err == nil {
		assert.Equal(t, "Europe/Paris", got.Location().String())
		assert.True(t, got.Equal(time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC)))
	} else {
		// Minimal containers may lack tzdata.
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	}

	for _, bad := range []string{"2000-01-01T12:00:00", "2000-01-01", "yesterday", ""} {
		_, err := ParseInstant(bad)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, "input %q", bad)
	}
}
