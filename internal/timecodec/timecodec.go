// Package timecodec converts between timezone-aware instants and Julian day
// numbers in Universal Time.
package timecodec

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/litescript/ls-ephemeris/internal/astro"
)

// ErrInvalidTimestamp is returned for instants without an explicit zone and
// for day numbers that cannot be represented as a calendar instant.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Resolution is the precision bound of a ToDayNumber/FromDayNumber round
// trip. The calendar-to-day-number step accepts whole seconds only.
const Resolution = time.Second

// ToDayNumber converts a timezone-aware instant into a Julian day number (UT).
// Sub-second precision is dropped.
func ToDayNumber(t time.Time) (float64, error) {
	if err := checkAware(t); err != nil {
		return 0, err
	}

	u := t.UTC().Truncate(time.Second)
	if u.After(jdayFirst) && u.Before(jdayLast) {
		return satellite.JDay(u.Year(), int(u.Month()), u.Day(), u.Hour(), u.Minute(), u.Second()), nil
	}
	return astro.JulianDate(u), nil
}

// satellite.JDay omits the Gregorian century rule, so it is only exact
// between these bounds.
var (
	jdayFirst = time.Date(1900, time.March, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	jdayLast  = time.Date(2100, time.March, 1, 0, 0, 0, 0, time.UTC)
)

// FromDayNumber converts a Julian day number (UT) into an instant in loc.
// A nil loc yields UTC. Seconds are truncated and the fractional residual is
// rounded to the microsecond.
func FromDayNumber(jd float64, loc *time.Location) (time.Time, error) {
	if math.IsNaN(jd) || math.IsInf(jd, 0) {
		return time.Time{}, fmt.Errorf("%w: day number %v", ErrInvalidTimestamp, jd)
	}
	if loc == nil {
		loc = time.UTC
	}

	cal := astro.CalendarFromJulian(jd)

	whole := math.Trunc(cal.Second)
	micros := int(math.Round((cal.Second - whole) * 1e6))
	sec := int(whole)
	if micros >= 1_000_000 {
		sec++
		micros -= 1_000_000
	}

	t := time.Date(cal.Year, cal.Month, cal.Day, cal.Hour, cal.Minute, sec, micros*int(time.Microsecond), time.UTC)
	return t.In(loc), nil
}

// RoundTripError reports how far t moves after a full conversion cycle.
// The magnitude is always below Resolution.
func RoundTripError(t time.Time) (time.Duration, error) {
	jd, err := ToDayNumber(t)
	if err != nil {
		return 0, err
	}
	back, err := FromDayNumber(jd, t.Location())
	if err != nil {
		return 0, err
	}
	return back.Sub(t), nil
}

// ParseInstant parses an RFC 3339 timestamp that carries an explicit offset.
// An IANA zone may be appended in brackets, as in
// "2024-03-20T04:06:00+01:00[Europe/Paris]"; the instant is then presented
// in that zone. Naive timestamps are rejected.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	var zone string
	if i := strings.IndexByte(s, '['); i >= 0 && strings.HasSuffix(s, "]") {
		zone = s[i+1 : len(s)-1]
		s = s[:i]
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q needs an RFC 3339 offset: %v", ErrInvalidTimestamp, s, err)
	}

	if zone != "" {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: zone %q: %v", ErrInvalidTimestamp, zone, err)
		}
		return t.In(loc), nil
	}
	if t.Location() == time.Local {
		// time.Parse reuses Local when the offset happens to match it.
		_, offset := t.Zone()
		t = t.In(time.FixedZone("", offset))
	}
	return t, nil
}

func checkAware(t time.Time) error {
	if t.IsZero() {
		return fmt.Errorf("%w: zero time", ErrInvalidTimestamp)
	}
	if t.Location() == time.Local {
		return fmt.Errorf("%w: %s has no explicit zone", ErrInvalidTimestamp, t.Format(time.DateTime))
	}
	return nil
}
