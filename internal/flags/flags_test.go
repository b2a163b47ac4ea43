package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBitmask(t *testing.T) {
	sess := Session{Engine: MoshierEph}

	tests := []struct {
		mode Mode
		want Flags
	}{
		{Mode{}, MoshierEph | Speed},
		{Mode{FrameTopocentric, ZodiacTropical, ReprEcliptical}, MoshierEph | Speed | Topocentric},
		{Mode{FrameHeliocentric, ZodiacSidereal, ReprRectangular}, MoshierEph | Speed | Heliocentric | Sidereal | XYZ},
		{Mode{FrameGeocentric, ZodiacSidereal, ReprEquatorial}, MoshierEph | Speed | Sidereal | Equatorial},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			got := ToBitmask(tt.mode, sess)
			assert.Equal(t, tt.want, got, "got %s", got)
			assert.Equal(t, tt.mode, got.Mode())
			assert.NoError(t, got.Validate())
		})
	}
}

func TestToBitmask_SessionBits(t *testing.T) {
	f := ToBitmask(Mode{}, Session{Engine: JPLEph, TruePositions: true, Radians: true})
	assert.True(t, f.Has(JPLEph|Speed|TruePosition|Radians))
	assert.Equal(t, JPLEph, f.Engine())
}

func TestAllModes(t *testing.T) {
	modes := AllModes()
	require.Len(t, modes, 18)

	assert.Equal(t, Mode{FrameGeocentric, ZodiacTropical, ReprEcliptical}, modes[0])
	assert.Equal(t, Mode{FrameGeocentric, ZodiacTropical, ReprEquatorial}, modes[1])
	assert.Equal(t, Mode{FrameGeocentric, ZodiacSidereal, ReprEcliptical}, modes[3])
	assert.Equal(t, Mode{FrameTopocentric, ZodiacTropical, ReprEcliptical}, modes[6])
	assert.Equal(t, Mode{FrameHeliocentric, ZodiacSidereal, ReprRectangular}, modes[17])

	seen := map[Flags]bool{}
	for _, m := range modes {
		seen[ToBitmask(m, Session{})] = true
	}
	assert.Len(t, seen, 18, "every mode must map to a distinct mask")
}

func TestRegistry_ZeroValue(t *testing.T) {
	var r Registry
	assert.Equal(t, Mode{}, r.Mode())
	assert.Equal(t, Speed, r.ComposedFlags())
	assert.Equal(t, AyanamsaNone, r.Ayanamsa())
}

func TestRegistry_FlagIsolation(t *testing.T) {
	r := NewRegistry(MoshierEph)

	r.SetReferenceFrame(FrameTopocentric)
	r.SetZodiac(ZodiacSidereal)
	r.SetCoordinateRepresentation(ReprEquatorial)
	require.True(t, r.ComposedFlags().Has(Topocentric|Sidereal|Equatorial))

	// Replacing one slot clears that group's previous bit and leaves the
	// other groups alone.
	r.SetReferenceFrame(FrameHeliocentric)
	f := r.ComposedFlags()
	assert.False(t, f.Has(Topocentric))
	assert.True(t, f.Has(Heliocentric|Sidereal|Equatorial))

	r.SetCoordinateRepresentation(ReprRectangular)
	f = r.ComposedFlags()
	assert.False(t, f.Has(Equatorial))
	assert.True(t, f.Has(XYZ|Heliocentric|Sidereal))

	r.SetZodiac(ZodiacTropical)
	r.SetReferenceFrame(FrameGeocentric)
	r.SetCoordinateRepresentation(ReprEcliptical)
	assert.Equal(t, MoshierEph|Speed, r.ComposedFlags())
}

func TestRegistry_ExhaustiveTransitions(t *testing.T) {
	r := NewRegistry(SwissEph)
	for _, from := range AllModes() {
		for _, to := range AllModes() {
			r.SetMode(from)
			r.SetMode(to)
			require.Equal(t, ToBitmask(to, Session{Engine: SwissEph}), r.ComposedFlags(), "%s -> %s", from, to)
		}
	}
}

func TestRegistry_SiderealPinsLahiri(t *testing.T) {
	r := NewRegistry(MoshierEph)
	r.SetZodiac(ZodiacSidereal)
	assert.Equal(t, AyanamsaLahiri, r.Ayanamsa())
	r.SetZodiac(ZodiacTropical)
	assert.Equal(t, AyanamsaLahiri, r.Ayanamsa())
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry(MoshierEph)
	r.SetTruePositions(true)
	r.SetMode(Mode{FrameHeliocentric, ZodiacSidereal, ReprRectangular})
	r.Reset()
	assert.Equal(t, Mode{}, r.Mode())
	assert.Equal(t, MoshierEph|Speed|TruePosition, r.ComposedFlags())
}

func TestFlagsValidate(t *testing.T) {
	assert.ErrorIs(t, (Heliocentric | Topocentric).Validate(), ErrConflictingFlags)
	assert.ErrorIs(t, (Equatorial | XYZ).Validate(), ErrConflictingFlags)
	assert.ErrorIs(t, (JPLEph | MoshierEph).Validate(), ErrConflictingFlags)
	assert.NoError(t, (MoshierEph | Speed | Sidereal).Validate())
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "0", Flags(0).String())
	assert.Equal(t, "MOSEPH|SPEED|EQUATORIAL", (MoshierEph | Speed | Equatorial).String())
	assert.Equal(t, "HELCTR|0x20", (Heliocentric | 32).String())
}

func TestParse(t *testing.T) {
	f, err := ParseFrame("Helio")
	require.NoError(t, err)
	assert.Equal(t, FrameHeliocentric, f)

	z, err := ParseZodiac("sidereal")
	require.NoError(t, err)
	assert.Equal(t, ZodiacSidereal, z)

	rep, err := ParseRepresentation("xyz")
	require.NoError(t, err)
	assert.Equal(t, ReprRectangular, rep)

	_, err = ParseFrame("barycentric")
	assert.Error(t, err)
	_, err = ParseZodiac("draconic")
	assert.Error(t, err)
	_, err = ParseRepresentation("polar")
	assert.Error(t, err)

	for _, fr := range AllFrames {
		back, err := ParseFrame(fr.String())
		require.NoError(t, err)
		assert.Equal(t, fr, back)
	}
}
