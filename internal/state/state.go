// Package state keeps the watch-mode record history and detects events
// between successive updates.
package state

import (
	"sync"
	"time"

	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/catalog"
	"github.com/litescript/ls-ephemeris/internal/planetary"
)

// EventType represents the type of detected event.
type EventType string

const (
	EventIngress  EventType = "INGRESS"
	EventStation  EventType = "STATION"
	EventNewMoon  EventType = "NEW_MOON"
	EventFullMoon EventType = "FULL_MOON"
)

// Event is something that happened between two updates. Timestamp is the
// instant of the record that revealed it.
type Event struct {
	// Seq numbers events from 1 in the order they were raised. It keeps
	// growing after the ring buffer wraps.
	Seq       uint64    `json:"seq"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Body      string    `json:"body"`
	OldSign   string    `json:"old_sign,omitempty"`
	NewSign   string    `json:"new_sign,omitempty"`
	Direction string    `json:"direction,omitempty"` // retrograde | direct
	Longitude float64   `json:"longitude"`
}

// HistoryEntry represents a single point in the history buffer.
type HistoryEntry struct {
	Timestamp time.Time
	Records   []planetary.Record
}

// TimeSeries is a single data point with timestamp.
type TimeSeries struct {
	Timestamp time.Time
	Value     float64
}

// BodyHistory tracks the geocentric tropical longitude and speed of a body.
type BodyHistory struct {
	ID               catalog.ID
	Name             string
	LongitudeHistory []TimeSeries
	SpeedHistory     []TimeSeries
}

// Manager handles watch state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current state
	current         []planetary.Record
	lastUpdate      time.Time
	lastError       error
	computeDuration time.Duration

	// Previous records for event detection
	prev map[catalog.ID]planetary.Record

	// History buffers
	history        []HistoryEntry
	maxHistoryLen  int
	bodyHistory    map[catalog.ID]*BodyHistory
	maxBodyHistory int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
	eventSeq     uint64
	onEvent      func(Event)

	refreshInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen   int
	MaxBodyHistory  int
	MaxEvents       int
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:   60,
		MaxBodyHistory:  120,
		MaxEvents:       50,
		RefreshInterval: 10 * time.Second,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		maxHistoryLen:   cfg.MaxHistoryLen,
		maxBodyHistory:  cfg.MaxBodyHistory,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
		bodyHistory:     make(map[catalog.ID]*BodyHistory),
		prev:            make(map[catalog.ID]planetary.Record),
	}
}

// OnEvent registers a hook called (under the manager lock) for each new
// event. It must not call back into the manager.
func (m *Manager) OnEvent(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvent = fn
}

// Update stores a new set of records. A non-nil err keeps the previous
// records and only records the failure.
func (m *Manager) Update(records []planetary.Record, computeDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastUpdate = time.Now()
	m.lastError = err
	m.computeDuration = computeDuration

	if err != nil || len(records) == 0 {
		return
	}

	m.detectEvents(records)

	m.current = records

	m.history = append(m.history, HistoryEntry{Timestamp: records[0].Time, Records: records})
	if m.maxHistoryLen > 0 && len(m.history) > m.maxHistoryLen {
		m.history = m.history[1:]
	}

	m.updateBodyHistory(records)

	for _, r := range records {
		m.prev[r.ID] = r
	}
}

// detectEvents compares new records with the previous ones.
func (m *Manager) detectEvents(records []planetary.Record) {
	for _, r := range records {
		old, ok := m.prev[r.ID]
		if !ok {
			continue
		}
		prevC, curC := old.Geocentric.Tropical, r.Geocentric.Tropical

		oldSign, newSign := planetary.SignOf(prevC.Longitude), planetary.SignOf(curC.Longitude)
		if oldSign != newSign {
			m.addEvent(Event{
				Type:      EventIngress,
				Timestamp: r.Time,
				Body:      r.Name,
				OldSign:   oldSign.String(),
				NewSign:   newSign.String(),
				Longitude: curC.Longitude,
			})
		}

		if prevC.LongitudeSpeed*curC.LongitudeSpeed < 0 {
			dir := "direct"
			if curC.LongitudeSpeed < 0 {
				dir = "retrograde"
			}
			m.addEvent(Event{
				Type:      EventStation,
				Timestamp: r.Time,
				Body:      r.Name,
				Direction: dir,
				Longitude: curC.Longitude,
			})
		}
	}

	m.detectLunation(records)
}

// detectLunation reports a new or full moon when the Moon-Sun elongation
// passes 0° or 180° between updates.
func (m *Manager) detectLunation(records []planetary.Record) {
	var sun, moon *planetary.Record
	for i := range records {
		switch records[i].ID {
		case catalog.Sun:
			sun = &records[i]
		case catalog.Moon:
			moon = &records[i]
		}
	}
	if sun == nil || moon == nil {
		return
	}
	prevSun, ok1 := m.prev[catalog.Sun]
	prevMoon, ok2 := m.prev[catalog.Moon]
	if !ok1 || !ok2 {
		return
	}

	before := Elongation(prevMoon, prevSun)
	after := Elongation(*moon, *sun)

	switch {
	case passes(before, after, 0):
		m.addEvent(Event{Type: EventNewMoon, Timestamp: moon.Time, Body: moon.Name, Longitude: moon.Geocentric.Tropical.Longitude})
	case passes(before, after, 180):
		m.addEvent(Event{Type: EventFullMoon, Timestamp: moon.Time, Body: moon.Name, Longitude: moon.Geocentric.Tropical.Longitude})
	}
}

// Elongation returns the geocentric tropical longitude of moon minus that of
// sun, in [0, 360).
func Elongation(moon, sun planetary.Record) float64 {
	return astro.NormalizeDegrees(moon.Geocentric.Tropical.Longitude - sun.Geocentric.Tropical.Longitude)
}

// passes reports whether target lies in the forward arc (before, after].
func passes(before, after, target float64) bool {
	step := astro.AngleDiff(after, before)
	if step <= 0 {
		return false
	}
	off := astro.NormalizeDegrees(target - before)
	return off > 0 && off <= step
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	m.eventSeq++
	e.Seq = m.eventSeq
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
	if m.onEvent != nil {
		m.onEvent(e)
	}
}

func (m *Manager) updateBodyHistory(records []planetary.Record) {
	for _, r := range records {
		hist, ok := m.bodyHistory[r.ID]
		if !ok {
			hist = &BodyHistory{
				ID:               r.ID,
				Name:             r.Name,
				LongitudeHistory: make([]TimeSeries, 0, m.maxBodyHistory),
				SpeedHistory:     make([]TimeSeries, 0, m.maxBodyHistory),
			}
			m.bodyHistory[r.ID] = hist
		}

		c := r.Geocentric.Tropical
		hist.LongitudeHistory = appendBounded(hist.LongitudeHistory, TimeSeries{Timestamp: r.Time, Value: c.Longitude}, m.maxBodyHistory)
		hist.SpeedHistory = appendBounded(hist.SpeedHistory, TimeSeries{Timestamp: r.Time, Value: c.LongitudeSpeed}, m.maxBodyHistory)
	}
}

func appendBounded(s []TimeSeries, p TimeSeries, max int) []TimeSeries {
	s = append(s, p)
	if max > 0 && len(s) > max {
		s = s[1:]
	}
	return s
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Records         []planetary.Record
	LastUpdate      time.Time
	LastError       error
	ComputeDuration time.Duration
	Events          []Event
	// EventCount is the number of events raised so far, including those
	// that have left the ring buffer.
	EventCount uint64
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := make([]planetary.Record, len(m.current))
	copy(recs, m.current)

	return Snapshot{
		Records:         recs,
		LastUpdate:      m.lastUpdate,
		LastError:       m.lastError,
		ComputeDuration: m.computeDuration,
		Events:          m.getEventsOrdered(),
		EventCount:      m.eventSeq,
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// GetBodyHistory returns a copy of the history of one body, or nil.
func (m *Manager) GetBodyHistory(id catalog.ID) *BodyHistory {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hist, ok := m.bodyHistory[id]
	if !ok {
		return nil
	}

	cp := &BodyHistory{
		ID:               hist.ID,
		Name:             hist.Name,
		LongitudeHistory: make([]TimeSeries, len(hist.LongitudeHistory)),
		SpeedHistory:     make([]TimeSeries, len(hist.SpeedHistory)),
	}
	copy(cp.LongitudeHistory, hist.LongitudeHistory)
	copy(cp.SpeedHistory, hist.SpeedHistory)
	return cp
}

// EstimateMotion returns the mean daily motion of a body, degrees per day,
// from its last two longitude samples. It is 0 with fewer than two samples.
func (m *Manager) EstimateMotion(id catalog.ID) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hist, ok := m.bodyHistory[id]
	if !ok || len(hist.LongitudeHistory) < 2 {
		return 0
	}

	n := len(hist.LongitudeHistory)
	p1, p2 := hist.LongitudeHistory[n-2], hist.LongitudeHistory[n-1]

	days := p2.Timestamp.Sub(p1.Timestamp).Hours() / 24
	if days <= 0 {
		return 0
	}
	return astro.AngleDiff(p2.Value, p1.Value) / days
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true once a successful update has been stored.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
