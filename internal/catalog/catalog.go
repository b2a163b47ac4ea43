// Package catalog maps engine body identifiers to display names.
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownBody is returned for identifiers and names outside the catalog.
var ErrUnknownBody = errors.New("unknown body")

// ID is the engine's integer body identifier.
type ID int

// Engine body identifiers.
const (
	Sun                 ID = 0
	Moon                ID = 1
	Mercury             ID = 2
	Venus               ID = 3
	Mars                ID = 4
	Jupiter             ID = 5
	Saturn              ID = 6
	Uranus              ID = 7
	Neptune             ID = 8
	Pluto               ID = 9
	MeanNode            ID = 10
	TrueNode            ID = 11
	MeanApogee          ID = 12
	OsculatingApogee    ID = 13
	Earth               ID = 14
	Chiron              ID = 15
	InterpolatedApogee  ID = 21
	InterpolatedPerigee ID = 22
)

// Kind groups bodies by how they are computed.
type Kind int

const (
	KindLuminary Kind = iota
	KindPlanet
	KindLunarPoint
	KindMinorBody
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLuminary:
		return "luminary"
	case KindPlanet:
		return "planet"
	case KindLunarPoint:
		return "lunar point"
	case KindMinorBody:
		return "minor body"
	default:
		return "unknown"
	}
}

// Body is one catalog entry.
type Body struct {
	ID         ID
	EngineName string // name reported by the engine
	Name       string // canonical display name
	Kind       Kind
}

// Bodies is the catalog in identifier order.
var Bodies = []Body{
	{ID: Sun, EngineName: "Sun", Name: "Sun", Kind: KindLuminary},
	{ID: Moon, EngineName: "Moon", Name: "Moon", Kind: KindLuminary},
	{ID: Mercury, EngineName: "Mercury", Name: "Mercury", Kind: KindPlanet},
	{ID: Venus, EngineName: "Venus", Name: "Venus", Kind: KindPlanet},
	{ID: Mars, EngineName: "Mars", Name: "Mars", Kind: KindPlanet},
	{ID: Jupiter, EngineName: "Jupiter", Name: "Jupiter", Kind: KindPlanet},
	{ID: Saturn, EngineName: "Saturn", Name: "Saturn", Kind: KindPlanet},
	{ID: Uranus, EngineName: "Uranus", Name: "Uranus", Kind: KindPlanet},
	{ID: Neptune, EngineName: "Neptune", Name: "Neptune", Kind: KindPlanet},
	{ID: Pluto, EngineName: "Pluto", Name: "Pluto", Kind: KindPlanet},
	{ID: MeanNode, EngineName: "mean Node", Name: "Mean North Node", Kind: KindLunarPoint},
	{ID: TrueNode, EngineName: "true Node", Name: "True North Node", Kind: KindLunarPoint},
	{ID: MeanApogee, EngineName: "mean Apogee", Name: "Mean Lunar Apogee", Kind: KindLunarPoint},
	{ID: OsculatingApogee, EngineName: "osc. Apogee", Name: "Osculating Lunar Apogee", Kind: KindLunarPoint},
	{ID: Earth, EngineName: "Earth", Name: "Earth", Kind: KindPlanet},
	{ID: Chiron, EngineName: "Chiron", Name: "Chiron", Kind: KindMinorBody},
	{ID: InterpolatedApogee, EngineName: "intp. Apogee", Name: "Interpolated Lunar Apogee", Kind: KindLunarPoint},
	{ID: InterpolatedPerigee, EngineName: "intp. Perigee", Name: "Interpolated Lunar Perigee", Kind: KindLunarPoint},
}

// BodiesByID maps identifiers to entries.
var BodiesByID = func() map[ID]Body {
	m := make(map[ID]Body, len(Bodies))
	for _, b := range Bodies {
		m[b.ID] = b
	}
	return m
}()

// BodiesByName maps lowercased canonical and engine names to entries.
var BodiesByName = func() map[string]Body {
	m := make(map[string]Body, len(Bodies)*2)
	for _, b := range Bodies {
		m[normalizeName(b.Name)] = b
		m[normalizeName(b.EngineName)] = b
	}
	// Common short forms
	addVariation := func(variation string, id ID) {
		m[normalizeName(variation)] = BodiesByID[id]
	}
	addVariation("north node", TrueNode)
	addVariation("rahu", TrueNode)
	addVariation("lilith", MeanApogee)
	addVariation("black moon", MeanApogee)
	return m
}()

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// String returns the canonical name.
func (id ID) String() string {
	if b, ok := BodiesByID[id]; ok {
		return b.Name
	}
	return fmt.Sprintf("body(%d)", int(id))
}

// NameForIdentifier returns the canonical display name of a body.
func NameForIdentifier(id ID) (string, error) {
	b, ok := BodiesByID[id]
	if !ok {
		return "", fmt.Errorf("%w: id %d", ErrUnknownBody, int(id))
	}
	return b.Name, nil
}

// Lookup returns the entry for an identifier.
func Lookup(id ID) (Body, bool) {
	b, ok := BodiesByID[id]
	return b, ok
}

// LookupByName resolves a canonical name, engine name, short form or
// numeric identifier, ignoring case.
func LookupByName(name string) (Body, error) {
	if b, ok := BodiesByName[normalizeName(name)]; ok {
		return b, nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(name)); err == nil {
		if b, ok := BodiesByID[ID(n)]; ok {
			return b, nil
		}
	}
	return Body{}, fmt.Errorf("%w: %q", ErrUnknownBody, name)
}

// All returns the identifiers of every catalog body in identifier order.
func All() []ID {
	ids := make([]ID, len(Bodies))
	for i, b := range Bodies {
		ids[i] = b.ID
	}
	return ids
}
