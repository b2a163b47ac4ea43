package astro

import "math"

// EarthMoonMassRatio is M(Earth)/M(Moon).
const EarthMoonMassRatio = 81.30056907

// MoonMeanDistanceKm is the semi-major axis of the lunar orbit.
const MoonMeanDistanceKm = 383397.8

// MoonEccentricity is the mean eccentricity of the lunar orbit.
const MoonEccentricity = 0.054900489

// MoonInclination is the mean inclination of the lunar orbit, degrees.
const MoonInclination = 5.1453964

// lunarArgs are the fundamental arguments of the lunar theory, in degrees.
type lunarArgs struct {
	Lp, D, M, Mp, F float64
	A1, A2, A3      float64
	E               float64
}

func lunarArgsAt(jdTT float64) lunarArgs {
	T := JulianCenturies(jdTT)
	T2, T3, T4 := T*T, T*T*T, T*T*T*T

	return lunarArgs{
		Lp: 218.3164477 + 481267.88123421*T - 0.0015786*T2 + T3/538841 - T4/65194000,
		D:  297.8501921 + 445267.1114034*T - 0.0018819*T2 + T3/545868 - T4/113065000,
		M:  357.5291092 + 35999.0502909*T - 0.0001536*T2 + T3/24490000,
		Mp: 134.9633964 + 477198.8675055*T + 0.0087414*T2 + T3/69699 - T4/14712000,
		F:  93.2720950 + 483202.0175233*T - 0.0036539*T2 - T3/3526000 + T4/863310000,
		A1: 119.75 + 131.849*T,
		A2: 53.09 + 479264.290*T,
		A3: 313.45 + 481266.484*T,
		E:  1 - 0.002516*T - 0.0000074*T2,
	}
}

// lunarTerm multiplies D, M, M', F; L is in 1e-6 degrees, R in metres.
type lunarTerm struct {
	D, M, Mp, F int
	L, R        float64
}

// Leading terms of the ELP-2000/82 truncation in Meeus, table 47.A.
var lunarLR = []lunarTerm{
	{0, 0, 1, 0, 6288774, -20905355},
	{2, 0, -1, 0, 1274027, -3699111},
	{2, 0, 0, 0, 658314, -2955968},
	{0, 0, 2, 0, 213618, -569925},
	{0, 1, 0, 0, -185116, 48888},
	{0, 0, 0, 2, -114332, -3149},
	{2, 0, -2, 0, 58793, 246158},
	{2, -1, -1, 0, 57066, -152138},
	{2, 0, 1, 0, 53322, -170733},
	{2, -1, 0, 0, 45758, -204586},
	{0, 1, -1, 0, -40923, -129620},
	{1, 0, 0, 0, -34720, 108743},
	{0, 1, 1, 0, -30383, 104755},
	{2, 0, 0, -2, 15327, 10321},
	{0, 0, 1, 2, -12528, 0},
	{0, 0, 1, -2, 10980, 79661},
	{4, 0, -1, 0, 10675, -34782},
	{0, 0, 3, 0, 10034, -23210},
	{4, 0, -2, 0, 8548, -21636},
	{2, 1, -1, 0, -7888, 24208},
	{2, 1, 0, 0, -6766, 30824},
	{1, 0, -1, 0, -5163, -8379},
	{1, 1, 0, 0, 4987, -16675},
	{2, -1, 1, 0, 4036, -12831},
	{2, 0, 2, 0, 3994, -10445},
	{4, 0, 0, 0, 3861, -11650},
	{2, 0, -3, 0, 3665, 14403},
	{0, 1, -2, 0, -2689, -7003},
	{2, 0, -1, 2, -2602, 0},
	{2, -1, -2, 0, 2390, 10056},
	{1, 0, 1, 0, -2348, 6322},
	{2, -2, 0, 0, 2236, -9884},
}

// Leading latitude terms (Meeus, table 47.B); B is in 1e-6 degrees.
var lunarB = []struct {
	D, M, Mp, F int
	B           float64
}{
	{0, 0, 0, 1, 5128122},
	{0, 0, 1, 1, 280602},
	{0, 0, 1, -1, 277693},
	{2, 0, 0, -1, 173237},
	{2, 0, -1, 1, 55413},
	{2, 0, -1, -1, 46271},
	{2, 0, 0, 1, 32573},
	{0, 0, 2, 1, 17198},
	{2, 0, 1, -1, 9266},
	{0, 0, 2, -1, 8822},
	{2, -1, 0, -1, 8216},
	{2, 0, -2, -1, 4324},
	{2, 0, 1, 1, 4200},
	{2, 1, 0, -1, -3359},
	{2, -1, -1, 1, 2463},
	{2, -1, 0, 1, 2211},
	{2, -1, -1, -1, 2065},
	{0, 1, -1, -1, -1870},
	{4, 0, -1, -1, 1828},
	{0, 1, 0, 1, -1794},
}

func eccentricityFactor(m int, e float64) float64 {
	switch m {
	case 1, -1:
		return e
	case 2, -2:
		return e * e
	default:
		return 1
	}
}

// MoonGeocentric returns the geometric geocentric position of the Moon
// referred to the mean ecliptic and equinox of date, in AU.
// Accuracy is roughly 10" in longitude and 4" in latitude.
func MoonGeocentric(jdTT float64) Vec3 {
	a := lunarArgsAt(jdTT)

	D, M, Mp, F := degToRad(a.D), degToRad(a.M), degToRad(a.Mp), degToRad(a.F)

	var sumL, sumR, sumB float64
	for _, t := range lunarLR {
		arg := float64(t.D)*D + float64(t.M)*M + float64(t.Mp)*Mp + float64(t.F)*F
		ef := eccentricityFactor(t.M, a.E)
		sumL += t.L * ef * math.Sin(arg)
		sumR += t.R * ef * math.Cos(arg)
	}
	for _, t := range lunarB {
		arg := float64(t.D)*D + float64(t.M)*M + float64(t.Mp)*Mp + float64(t.F)*F
		sumB += t.B * eccentricityFactor(t.M, a.E) * math.Sin(arg)
	}

	A1, A2, A3 := degToRad(a.A1), degToRad(a.A2), degToRad(a.A3)
	Lp := degToRad(a.Lp)

	sumL += 3958*math.Sin(A1) + 1962*math.Sin(Lp-F) + 318*math.Sin(A2)
	sumB += -2235*math.Sin(Lp) + 382*math.Sin(A3) + 175*math.Sin(A1-F) +
		175*math.Sin(A1+F) + 127*math.Sin(Lp-Mp) - 115*math.Sin(Lp+Mp)

	return FromSpherical(Spherical{
		LonDeg: NormalizeDegrees(a.Lp + sumL/1e6),
		LatDeg: sumB / 1e6,
		Dist:   KmToAU(385000.56 + sumR/1000),
	})
}

// MeanLunarNode returns the longitude of the mean ascending node of the
// lunar orbit, degrees, mean equinox of date.
func MeanLunarNode(jdTT float64) float64 {
	T := JulianCenturies(jdTT)
	return NormalizeDegrees(125.0445479 - 1934.1362891*T + 0.0020754*T*T +
		T*T*T/467441 - T*T*T*T/60616000)
}

// TrueLunarNode returns the longitude of the true ascending node, degrees,
// using the principal periodic terms added to the mean node.
func TrueLunarNode(jdTT float64) float64 {
	a := lunarArgsAt(jdTT)
	D, M, Mp, F := degToRad(a.D), degToRad(a.M), degToRad(a.Mp), degToRad(a.F)

	corr := -1.4979*math.Sin(2*(D-F)) - 0.1500*math.Sin(M) -
		0.1226*math.Sin(2*D) + 0.1176*math.Sin(2*F) - 0.0801*math.Sin(2*(Mp-F))

	return NormalizeDegrees(MeanLunarNode(jdTT) + corr)
}

// MeanLunarPerigee returns the longitude of the mean lunar perigee, degrees.
func MeanLunarPerigee(jdTT float64) float64 {
	T := JulianCenturies(jdTT)
	return NormalizeDegrees(83.3532465 + 4069.0137287*T - 0.0103200*T*T -
		T*T*T/80053 + T*T*T*T/18999000)
}

// PointOnLunarOrbit places a point given by its longitude measured in the
// orbital plane onto the ecliptic, using the mean node and inclination.
// The result is a vector of the given length (AU) in the ecliptic of date.
func PointOnLunarOrbit(orbitLonDeg, node, distAU float64) Vec3 {
	u := degToRad(orbitLonDeg - node)
	inc := degToRad(MoonInclination)
	v := Vec3{X: math.Cos(u), Y: math.Sin(u)}.
		RotateX(inc).
		RotateZ(degToRad(node))
	return v.Scale(distAU)
}

// MeanLunarApogee returns the mean apogee ("dark moon") of the lunar orbit
// as a geocentric ecliptic vector of date, in AU.
func MeanLunarApogee(jdTT float64) Vec3 {
	apogee := MeanLunarPerigee(jdTT) + 180
	dist := KmToAU(MoonMeanDistanceKm * (1 + MoonEccentricity))
	return PointOnLunarOrbit(apogee, MeanLunarNode(jdTT), dist)
}

// gmEarthMoon is G·(M_earth+M_moon) in AU³/day².
const gmEarthMoon = gaussK2 * (1 + 1/EarthMoonMassRatio) / 332946.0487

// OsculatingLunarApogee derives the apogee of the instantaneous Kepler
// ellipse fitted to the Moon's geocentric state at jdTT. Returns the apogee
// vector (ecliptic of date, AU).
func OsculatingLunarApogee(jdTT float64) Vec3 {
	const h = 0.01
	r := MoonGeocentric(jdTT)
	v := MoonGeocentric(jdTT + h).Sub(MoonGeocentric(jdTT - h)).Scale(1 / (2 * h))

	hVec := r.Cross(v)
	rn := r.Norm()
	// Eccentricity vector points to perigee.
	eVec := v.Cross(hVec).Scale(1 / gmEarthMoon).Sub(r.Scale(1 / rn))
	e := eVec.Norm()
	if e == 0 {
		return MeanLunarApogee(jdTT)
	}

	energy := v.Dot(v)/2 - gmEarthMoon/rn
	a := -gmEarthMoon / (2 * energy)
	return eVec.Normalized().Scale(-a * (1 + e))
}

// InterpolatedLunarApogee smooths the osculating apogee by averaging its
// direction across one anomalistic month centred on jdTT, which removes the
// spurious ±30° oscillation of the osculating ellipse.
func InterpolatedLunarApogee(jdTT float64) Vec3 {
	return smoothedApsis(jdTT, 1)
}

// InterpolatedLunarPerigee is the perigee counterpart of
// InterpolatedLunarApogee.
func InterpolatedLunarPerigee(jdTT float64) Vec3 {
	return smoothedApsis(jdTT, -1)
}

const anomalisticMonth = 27.554550

func smoothedApsis(jdTT float64, sign float64) Vec3 {
	const samples = 28
	var dir Vec3
	var dist float64
	for i := 0; i < samples; i++ {
		t := jdTT - anomalisticMonth/2 + anomalisticMonth*float64(i)/samples
		ap := OsculatingLunarApogee(t)
		dir = dir.Add(ap.Normalized())
		dist += ap.Norm()
	}
	dist /= samples

	a := dist / (1 + MoonEccentricity)
	if sign < 0 {
		return dir.Normalized().Scale(-a * (1 - MoonEccentricity))
	}
	return dir.Normalized().Scale(dist)
}
