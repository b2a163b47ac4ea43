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

// SparklineWidth is the fixed width of the speed sparkline.
const SparklineWidth = 48

// sparklineBlocks are the Unicode block characters for sparkline (0 = lowest, 7 = highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// DetailModel shows every leaf of one record plus its recent speed history.
type DetailModel struct {
	width    int
	height   int
	record   *planetary.Record
	history  *state.BodyHistory
	animTick int
}

// NewDetailModel creates an empty detail view.
func NewDetailModel() DetailModel {
	return DetailModel{}
}

// SetSize updates the viewport size.
func (m DetailModel) SetSize(width, height int) DetailModel {
	m.width = width
	m.height = height
	return m
}

// SetAnimTick updates the animation tick for the loading shimmer.
func (m DetailModel) SetAnimTick(tick int) DetailModel {
	m.animTick = tick
	return m
}

// SetRecord selects the record to display along with its history.
func (m DetailModel) SetRecord(rec *planetary.Record, history *state.BodyHistory) DetailModel {
	m.record = rec
	m.history = history
	return m
}

// Update handles messages.
func (m DetailModel) Update(tea.Msg) (DetailModel, tea.Cmd) {
	return m, nil
}

// View renders the detail view.
func (m DetailModel) View() string {
	if m.record == nil {
		return "No body selected\n"
	}
	rec := *m.record

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (id %d) · JD %.6f", rec.Name, int(rec.ID), rec.DayNumber)))
	b.WriteString("\n\n")

	header := fmt.Sprintf("%-26s", "Field")
	for _, f := range flags.AllFrames {
		for _, z := range flags.AllZodiacs {
			header += fmt.Sprintf(" %15s", abbreviate(f, z))
		}
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	var columns [][planetary.FieldsPerZodiac]float64
	for _, f := range flags.AllFrames {
		for _, z := range flags.AllZodiacs {
			columns = append(columns, rec.Frame(f).Zodiac(z).Values())
		}
	}

	for i, name := range planetary.FieldNames {
		row := fmt.Sprintf("%-26s", name)
		for _, col := range columns {
			row += fmt.Sprintf(" %15.6f", col[i])
		}
		b.WriteString(rowStyle.Render(row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Speed "))
	b.WriteString(m.renderSpeedSparkline())
	b.WriteString("\n")

	return b.String()
}

func abbreviate(f flags.Frame, z flags.Zodiac) string {
	return fmt.Sprintf("%.4s/%.4s", f.String(), z.String())
}

// renderSpeedSparkline renders the geocentric tropical longitude speed
// history. Cells below zero are drawn in the retrograde colour.
func (m DetailModel) renderSpeedSparkline() string {
	if m.history == nil || len(m.history.SpeedHistory) < 2 {
		return m.renderShimmerSparkline("Collecting history...")
	}

	values := make([]float64, len(m.history.SpeedHistory))
	for i, p := range m.history.SpeedHistory {
		values[i] = p.Value
	}
	samples := resample(values, SparklineWidth)

	lo, hi := samples[0], samples[0]
	for _, v := range samples {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	var sb strings.Builder
	for _, v := range samples {
		t := 0.5
		if span > 0 {
			t = (v - lo) / span
		}
		blockIdx := int(t * 7.0)
		if blockIdx > 7 {
			blockIdx = 7
		}
		style := rowStyle
		if v < 0 {
			style = retrogradeStyle
		}
		sb.WriteString(style.Render(string(sparklineBlocks[blockIdx])))
	}

	last := samples[len(samples)-1]
	sb.WriteString(mutedStyle.Render(fmt.Sprintf(" now: %+.4f°/day", last)))
	return sb.String()
}

// resample picks width evenly spaced values; shorter inputs are returned
// unchanged.
func resample(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	out := make([]float64, width)
	step := float64(len(values)-1) / float64(width-1)
	for i := range out {
		out[i] = values[int(math.Round(float64(i)*step))]
	}
	return out
}

// renderShimmerSparkline renders a loading animation sparkline.
func (m DetailModel) renderShimmerSparkline(msg string) string {
	var sb strings.Builder

	offset := m.animTick % SparklineWidth
	for i := 0; i < SparklineWidth; i++ {
		dist := (i - offset + SparklineWidth) % SparklineWidth
		gray := 60
		if dist < 8 {
			gray = 60 + dist*8
		}
		color := fmt.Sprintf("#%02x%02x%02x", gray, gray, gray)
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("▄"))
	}

	sb.WriteString(" ")
	sb.WriteString(mutedStyle.Render(msg))
	return sb.String()
}
