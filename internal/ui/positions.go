package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-ephemeris/internal/flags"
	"github.com/litescript/ls-ephemeris/internal/planetary"
	"github.com/litescript/ls-ephemeris/internal/state"
)

// Styles for the positions table
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	retrogradeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E84A27"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// PositionsModel is the table of current body positions for one frame and
// zodiac.
type PositionsModel struct {
	width    int
	height   int
	cursor   int
	frame    flags.Frame
	zodiac   flags.Zodiac
	snapshot state.Snapshot
	lastErr  error
}

// NewPositionsModel creates a positions table showing geocentric tropical
// coordinates.
func NewPositionsModel() PositionsModel {
	return PositionsModel{frame: flags.FrameGeocentric, zodiac: flags.ZodiacTropical}
}

// SetSize updates the viewport size.
func (m PositionsModel) SetSize(width, height int) PositionsModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m PositionsModel) UpdateData(snapshot state.Snapshot) PositionsModel {
	m.snapshot = snapshot
	if n := len(snapshot.Records); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if snapshot.LastError == nil {
		m.lastErr = nil
	}
	return m
}

// SetError sets the last error for display.
func (m PositionsModel) SetError(err error) PositionsModel {
	m.lastErr = err
	return m
}

// Frame returns the displayed reference frame.
func (m PositionsModel) Frame() flags.Frame { return m.frame }

// Zodiac returns the displayed zodiac.
func (m PositionsModel) Zodiac() flags.Zodiac { return m.zodiac }

// Update handles messages.
func (m PositionsModel) Update(msg tea.Msg) (PositionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		count := len(m.snapshot.Records)

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < count-1 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			if count > 0 {
				m.cursor = count - 1
			}
		case "f":
			m.frame = nextFrame(m.frame)
		case "z":
			m.zodiac = nextZodiac(m.zodiac)
		}
	}

	return m, nil
}

func nextFrame(f flags.Frame) flags.Frame {
	for i, x := range flags.AllFrames {
		if x == f {
			return flags.AllFrames[(i+1)%len(flags.AllFrames)]
		}
	}
	return flags.FrameGeocentric
}

func nextZodiac(z flags.Zodiac) flags.Zodiac {
	for i, x := range flags.AllZodiacs {
		if x == z {
			return flags.AllZodiacs[(i+1)%len(flags.AllZodiacs)]
		}
	}
	return flags.ZodiacTropical
}

// View renders the positions table.
func (m PositionsModel) View() string {
	var b strings.Builder

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("Error: " + m.lastErr.Error()))
		b.WriteString("\n\n")
	}

	if len(m.snapshot.Records) == 0 {
		if m.lastErr == nil {
			b.WriteString("Waiting for positions...\n")
		}
		return b.String()
	}

	title := fmt.Sprintf("Positions · %s %s · %s", m.frame, m.zodiac,
		m.snapshot.Records[0].Time.UTC().Format("2006-01-02 15:04:05 UTC"))
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	header := fmt.Sprintf("%-26s %-18s %9s %10s %12s %-12s",
		"Body", "Longitude", "Latitude", "Speed", "Distance", "Motion")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	records := m.snapshot.Records
	fastest := fastestSpeed(records, m.frame, m.zodiac)

	maxRows := m.height - 4
	if maxRows < 5 {
		maxRows = 5
	}
	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := min(startIdx+maxRows, len(records))

	for i := startIdx; i < endIdx; i++ {
		c := records[i].Frame(m.frame).Zodiac(m.zodiac)

		var ratio float64
		if fastest > 0 {
			ratio = math.Abs(c.LongitudeSpeed) / fastest
		}

		row := fmt.Sprintf("%-26s %-18s %+9.4f %+10.4f %12.6f ",
			truncate(records[i].Name, 26),
			planetary.FormatLongitude(c.Longitude),
			c.Latitude,
			c.LongitudeSpeed,
			c.Distance,
		)

		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString(m.renderMotionBar(ratio, 8))
		if c.LongitudeSpeed < 0 {
			b.WriteString(retrogradeStyle.Render(" R"))
		}
		b.WriteString("\n")
	}

	if len(records) > maxRows {
		b.WriteString(fmt.Sprintf("\n  Showing %d-%d of %d bodies", startIdx+1, endIdx, len(records)))
	}

	return b.String()
}

func fastestSpeed(records []planetary.Record, f flags.Frame, z flags.Zodiac) float64 {
	var fastest float64
	for _, r := range records {
		if s := math.Abs(r.Frame(f).Zodiac(z).LongitudeSpeed); s > fastest {
			fastest = s
		}
	}
	return fastest
}

// renderMotionBar draws |speed| relative to the fastest body in the table.
func (m PositionsModel) renderMotionBar(ratio float64, width int) string {
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD"))
	return "[" + style.Render(bar) + "]"
}

// SelectedRecord returns the record under the cursor, if any.
func (m PositionsModel) SelectedRecord() *planetary.Record {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Records) {
		return nil
	}
	rec := m.snapshot.Records[m.cursor]
	return &rec
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
