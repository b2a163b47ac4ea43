package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-ephemeris/internal/planetary"
	"github.com/litescript/ls-ephemeris/internal/state"
)

var eventColors = map[state.EventType]lipgloss.Color{
	state.EventIngress:  lipgloss.Color("39"),
	state.EventStation:  lipgloss.Color("#E84A27"),
	state.EventNewMoon:  lipgloss.Color("244"),
	state.EventFullMoon: lipgloss.Color("229"),
}

// EventsModel lists detected events, newest first.
type EventsModel struct {
	width  int
	height int
	events []state.Event
}

// NewEventsModel creates an empty events list.
func NewEventsModel() EventsModel {
	return EventsModel{}
}

// SetSize updates the viewport size.
func (m EventsModel) SetSize(width, height int) EventsModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m EventsModel) UpdateData(snapshot state.Snapshot) EventsModel {
	m.events = snapshot.Events
	return m
}

// View renders the events list.
func (m EventsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Events"))
	b.WriteString("\n")

	if len(m.events) == 0 {
		b.WriteString(mutedStyle.Render("  No events yet"))
		b.WriteString("\n")
		return b.String()
	}

	maxRows := m.height - 2
	if maxRows < 5 {
		maxRows = 5
	}

	shown := 0
	for i := len(m.events) - 1; i >= 0 && shown < maxRows; i-- {
		b.WriteString("  " + formatEvent(m.events[i]) + "\n")
		shown++
	}
	return b.String()
}

func formatEvent(e state.Event) string {
	color, ok := eventColors[e.Type]
	if !ok {
		color = lipgloss.Color("252")
	}
	tag := lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%-9s", e.Type))

	var detail string
	switch e.Type {
	case state.EventIngress:
		detail = fmt.Sprintf("%s enters %s (from %s)", e.Body, e.NewSign, e.OldSign)
	case state.EventStation:
		detail = fmt.Sprintf("%s turns %s at %s", e.Body, e.Direction, planetary.FormatLongitude(e.Longitude))
	default:
		detail = fmt.Sprintf("%s at %s", e.Body, planetary.FormatLongitude(e.Longitude))
	}

	ts := mutedStyle.Render(e.Timestamp.UTC().Format("2006-01-02 15:04"))
	return ts + " " + tag + " " + detail
}
