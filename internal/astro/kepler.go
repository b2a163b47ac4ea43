package astro

import "math"

// OrbitalElements are osculating or mean Keplerian elements referred to the
// J2000 ecliptic and equinox. Angles are in degrees, A in AU.
//
// Rates are per Julian century. When Epoch is zero the mean longitude form
// (L, LongPeri) is used, as in the JPL approximate planetary tables;
// otherwise PeriTime gives the time of perihelion passage.
type OrbitalElements struct {
	A, ADot               float64
	E, EDot               float64
	I, IDot               float64
	L, LDot               float64 // mean longitude
	LongPeri, LongPeriDot float64 // longitude of perihelion ϖ
	Node, NodeDot         float64 // longitude of ascending node Ω

	PeriTime float64 // JD of perihelion; used instead of L when non-zero
}

// gaussK2 is the square of the Gaussian gravitational constant, AU³/day².
const gaussK2 = 0.01720209895 * 0.01720209895

// Position returns the heliocentric J2000 ecliptic position in AU at jdTT.
func (el OrbitalElements) Position(jdTT float64) Vec3 {
	T := JulianCenturies(jdTT)

	a := el.A + el.ADot*T
	e := el.E + el.EDot*T
	inc := degToRad(el.I + el.IDot*T)
	node := el.Node + el.NodeDot*T
	peri := el.LongPeri + el.LongPeriDot*T

	var meanAnomaly float64
	if el.PeriTime != 0 {
		n := radToDeg(math.Sqrt(gaussK2 / (a * a * a)))
		meanAnomaly = n * (jdTT - el.PeriTime)
	} else {
		meanAnomaly = el.L + el.LDot*T - peri
	}
	meanAnomaly = degToRad(NormalizeDegrees(meanAnomaly))

	E := SolveKepler(meanAnomaly, e)

	// Position in the orbital plane, x toward perihelion.
	xp := a * (math.Cos(E) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(E)

	argPeri := degToRad(peri - node)
	return Vec3{X: xp, Y: yp}.
		RotateZ(argPeri).
		RotateX(inc).
		RotateZ(degToRad(node))
}

// SolveKepler solves M = E - e·sin(E) for the eccentric anomaly E (radians)
// by Newton iteration.
func SolveKepler(M, e float64) float64 {
	E := M
	if e > 0.8 {
		E = math.Pi
	}
	for i := 0; i < 50; i++ {
		dE := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= dE
		if math.Abs(dE) < 1e-12 {
			break
		}
	}
	return E
}

// Planet element sets from "Keplerian Elements for Approximate Positions of
// the Major Planets" (Standish, JPL), valid 1800–2050.
var (
	MercuryElements = OrbitalElements{
		A: 0.38709927, ADot: 0.00000037,
		E: 0.20563593, EDot: 0.00001906,
		I: 7.00497902, IDot: -0.00594749,
		L: 252.25032350, LDot: 149472.67411175,
		LongPeri: 77.45779628, LongPeriDot: 0.16047689,
		Node: 48.33076593, NodeDot: -0.12534081,
	}
	VenusElements = OrbitalElements{
		A: 0.72333566, ADot: 0.00000390,
		E: 0.00677672, EDot: -0.00004107,
		I: 3.39467605, IDot: -0.00078890,
		L: 181.97909950, LDot: 58517.81538729,
		LongPeri: 131.60246718, LongPeriDot: 0.00268329,
		Node: 76.67984255, NodeDot: -0.27769418,
	}
	EarthMoonBarycenterElements = OrbitalElements{
		A: 1.00000261, ADot: 0.00000562,
		E: 0.01671123, EDot: -0.00004392,
		I: -0.00001531, IDot: -0.01294668,
		L: 100.46457166, LDot: 35999.37244981,
		LongPeri: 102.93768193, LongPeriDot: 0.32327364,
		Node: 0, NodeDot: 0,
	}
	MarsElements = OrbitalElements{
		A: 1.52371034, ADot: 0.00001847,
		E: 0.09339410, EDot: 0.00007882,
		I: 1.84969142, IDot: -0.00813131,
		L: -4.55343205, LDot: 19140.30268499,
		LongPeri: -23.94362959, LongPeriDot: 0.44441088,
		Node: 49.55953891, NodeDot: -0.29257343,
	}
	JupiterElements = OrbitalElements{
		A: 5.20288700, ADot: -0.00011607,
		E: 0.04838624, EDot: -0.00013253,
		I: 1.30439695, IDot: -0.00183714,
		L: 34.39644051, LDot: 3034.74612775,
		LongPeri: 14.72847983, LongPeriDot: 0.21252668,
		Node: 100.47390909, NodeDot: 0.20469106,
	}
	SaturnElements = OrbitalElements{
		A: 9.53667594, ADot: -0.00125060,
		E: 0.05386179, EDot: -0.00050991,
		I: 2.48599187, IDot: 0.00193609,
		L: 49.95424423, LDot: 1222.49362201,
		LongPeri: 92.59887831, LongPeriDot: -0.41897216,
		Node: 113.66242448, NodeDot: -0.28867794,
	}
	UranusElements = OrbitalElements{
		A: 19.18916464, ADot: -0.00196176,
		E: 0.04725744, EDot: -0.00004397,
		I: 0.77263783, IDot: -0.00242939,
		L: 313.23810451, LDot: 428.48202785,
		LongPeri: 170.95427630, LongPeriDot: 0.40805281,
		Node: 74.01692503, NodeDot: 0.04240589,
	}
	NeptuneElements = OrbitalElements{
		A: 30.06992276, ADot: 0.00026291,
		E: 0.00859048, EDot: 0.00005105,
		I: 1.77004347, IDot: 0.00035372,
		L: -55.12002969, LDot: 218.45945325,
		LongPeri: 44.96476227, LongPeriDot: -0.32241464,
		Node: 131.78422574, NodeDot: -0.00508664,
	}
	PlutoElements = OrbitalElements{
		A: 39.48211675, ADot: -0.00031596,
		E: 0.24882730, EDot: 0.00005170,
		I: 17.14001206, IDot: 0.00004818,
		L: 238.92903833, LDot: 145.20780515,
		LongPeri: 224.06891629, LongPeriDot: -0.04062942,
		Node: 110.30393684, NodeDot: -0.01183482,
	}

	// ChironElements are osculating elements near the 1996 perihelion.
	ChironElements = OrbitalElements{
		A:        13.648,
		E:        0.3789,
		I:        6.926,
		LongPeri: 209.30 + 339.25,
		Node:     209.30,
		PeriTime: 2450128.5,
	}
)
