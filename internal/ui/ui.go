// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-ephemeris/internal/state"
	"github.com/litescript/ls-ephemeris/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewPositions ViewMode = iota
	ViewDetail
	ViewEvents
)

const viewCount = 3

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// DataUpdateMsg signals a freshly computed set of records.
	DataUpdateMsg struct {
		Snapshot state.Snapshot
	}

	// ErrorMsg signals a compute error.
	ErrorMsg struct {
		Error error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	state      *state.Manager
	engineName string

	viewMode ViewMode
	width    int
	height   int
	ready    bool
	animTick int

	positions PositionsModel
	detail    DetailModel
	events    EventsModel

	snapshot state.Snapshot
}

// New creates a new root UI model. engineName is shown in the header.
func New(stateMgr *state.Manager, engineName string) Model {
	return Model{
		state:      stateMgr,
		engineName: engineName,
		viewMode:   ViewPositions,
		positions:  NewPositionsModel(),
		detail:     NewDetailModel(),
		events:     NewEventsModel(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		animTickCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "p":
			m.viewMode = ViewPositions
		case "2", "enter":
			m.viewMode = ViewDetail
		case "3", "e":
			m.viewMode = ViewEvents

		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount

		default:
			// Navigation and frame keys always drive the positions table so
			// the detail view follows the cursor.
			var cmd tea.Cmd
			m.positions, cmd = m.positions.Update(msg)
			cmds = append(cmds, cmd)
		}
		m.syncDetail()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Header takes 5 lines, footer 2
		contentHeight := msg.Height - 7
		m.positions = m.positions.SetSize(msg.Width, contentHeight)
		m.detail = m.detail.SetSize(msg.Width, contentHeight)
		m.events = m.events.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		if m.state != nil {
			m.applySnapshot(m.state.Snapshot())
		}

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++
		m.detail = m.detail.SetAnimTick(m.animTick)

	case DataUpdateMsg:
		m.applySnapshot(msg.Snapshot)

	case ErrorMsg:
		m.positions = m.positions.SetError(msg.Error)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.positions = m.positions.UpdateData(snap)
	m.events = m.events.UpdateData(snap)
	m.syncDetail()
}

func (m *Model) syncDetail() {
	rec := m.positions.SelectedRecord()
	var hist *state.BodyHistory
	if rec != nil && m.state != nil {
		hist = m.state.GetBodyHistory(rec.ID)
	}
	m.detail = m.detail.SetRecord(rec, hist)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewPositions:
		content = m.positions.View()
	case ViewDetail:
		content = m.detail.View()
	case ViewEvents:
		content = m.events.View()
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

func (m Model) renderLogo() string {
	const logo = "  ✦ LS-EPHEMERIS ✦"

	var b strings.Builder
	b.WriteString("\n")

	runes := []rune(logo)
	for col, r := range runes {
		color := gradientColor(col, 0, len(runes), 1)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(string(r)))
	}
	b.WriteString("\n")

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	line := fmt.Sprintf("  Planetary positions · engine %s · v%s", m.engineName, version.Version)
	b.WriteString(muted.Render(line))
	b.WriteString("\n\n")

	return b.String()
}

// logoStops runs from deep indigo through violet to a warm solar gold.
var logoStops = [][3]float64{
	{72, 61, 199},
	{157, 78, 221},
	{240, 176, 72},
}

// gradientColor returns a hex color for a position in the logo gradient,
// fading towards the bottom rows.
func gradientColor(col, row, width, height int) string {
	x := float64(col) / float64(width)
	fade := 1.0 - 0.5*float64(row)/float64(height)

	seg := x * float64(len(logoStops)-1)
	i := int(seg)
	if i >= len(logoStops)-1 {
		i = len(logoStops) - 2
	}
	t := seg - float64(i)
	from, to := logoStops[i], logoStops[i+1]

	var c [3]int
	for k := range c {
		c[k] = clampByte((from[k] + t*(to[k]-from[k])) * fade)
	}
	return fmt.Sprintf("#%02X%02X%02X", c[0], c[1], c[2])
}

func clampByte(v float64) int {
	switch {
	case v > 255:
		return 255
	case v < 0:
		return 0
	default:
		return int(v)
	}
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Positions", "[2] Detail", "[3] Events"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.snapshot.LastError != nil:
		status = errStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case !m.snapshot.LastUpdate.IsZero():
		age := time.Since(m.snapshot.LastUpdate).Round(time.Second)
		status = accentStyle.Render(spinner) + dimStyle.Render(fmt.Sprintf(" updated %s ago", age))
		if m.snapshot.ComputeDuration > 0 {
			status += dimStyle.Render(" (" + m.snapshot.ComputeDuration.Round(time.Millisecond).String() + ")")
		}
	default:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Computing positions...")
	}

	var help string
	switch m.viewMode {
	case ViewPositions:
		help = "↑↓: select | f: frame | z: zodiac | enter: detail | tab: switch view"
	case ViewDetail:
		help = "↑↓: select body | tab: switch view"
	default:
		help = "tab: switch view | q: quit"
	}

	return "  " + status + "  " + dimStyle.Render("|") + "  " + dimStyle.Render(help)
}

// shimmerShades fade outward from the moving highlight, two runes per step.
var shimmerShades = []string{"#E6C98A", "#B9A0D8", "#8C78B4", "#5E5290"}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	pos := m.animTick % (len(runes) + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		shade := shimmerShades[len(shimmerShades)-1]
		if dist/2 < len(shimmerShades) {
			shade = shimmerShades[dist/2]
		}

		result.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(shade)).Render(string(r)))
	}

	return result.String()
}

// ViewMode returns the active view.
func (m Model) ViewMode() ViewMode {
	return m.viewMode
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// SendDataUpdate creates a command that sends a data update message.
func SendDataUpdate(snapshot state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return DataUpdateMsg{Snapshot: snapshot}
	}
}

// SendError creates a command that sends an error message.
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Error: err}
	}
}
