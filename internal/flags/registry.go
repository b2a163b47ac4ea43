package flags

import "sync"

// Ayanamsa identifies the sidereal zodiac offset model.
type Ayanamsa int

const (
	AyanamsaNone   Ayanamsa = -1
	AyanamsaLahiri Ayanamsa = 1
)

// String returns the ayanamsa name.
func (a Ayanamsa) String() string {
	switch a {
	case AyanamsaLahiri:
		return "lahiri"
	case AyanamsaNone:
		return "none"
	default:
		return "unknown"
	}
}

// Registry holds the active mode and session bits of one session. Each
// setter replaces exactly one mode slot; ComposedFlags rebuilds the mask
// from the slots so a previous setting can never leak into the next.
//
// The zero value is geocentric, tropical and ecliptical.
type Registry struct {
	mu       sync.Mutex
	mode     Mode
	session  Session
	ayanamsa Ayanamsa
}

// NewRegistry returns a registry using the given engine bit.
func NewRegistry(engine Flags) *Registry {
	return &Registry{session: Session{Engine: engine}}
}

// SetReferenceFrame selects the frame slot.
func (r *Registry) SetReferenceFrame(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode.Frame = f
}

// SetZodiac selects the zodiac slot. Sidereal pins the Lahiri ayanamsa.
func (r *Registry) SetZodiac(z Zodiac) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode.Zodiac = z
	if z == ZodiacSidereal {
		r.ayanamsa = AyanamsaLahiri
	}
}

// SetCoordinateRepresentation selects the representation slot.
func (r *Registry) SetCoordinateRepresentation(rep Representation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode.Representation = rep
}

// SetMode sets all three slots at once.
func (r *Registry) SetMode(m Mode) {
	r.SetReferenceFrame(m.Frame)
	r.SetZodiac(m.Zodiac)
	r.SetCoordinateRepresentation(m.Representation)
}

// SetTruePositions toggles geometric positions for the whole session.
func (r *Registry) SetTruePositions(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session.TruePositions = on
}

// SetEngine selects the engine bit.
func (r *Registry) SetEngine(engine Flags) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session.Engine = engine & engineMask
}

// ComposedFlags returns the bitmask for the current slots.
func (r *Registry) ComposedFlags() Flags {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ToBitmask(r.mode, r.session)
}

// Mode returns the current mode descriptor.
func (r *Registry) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// Ayanamsa returns the pinned sidereal model, or AyanamsaNone if sidereal
// mode has never been selected.
func (r *Registry) Ayanamsa() Ayanamsa {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ayanamsa == 0 {
		return AyanamsaNone
	}
	return r.ayanamsa
}

// Reset restores the zero mode. Session bits are kept.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = Mode{}
}
