package planetary

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/litescript/ls-ephemeris/internal/flags"
)

// Sign is one of the twelve 30° divisions of the zodiac.
type Sign int

var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// SignOf returns the sign containing the ecliptic longitude lonDeg.
func SignOf(lonDeg float64) Sign {
	lon := math.Mod(lonDeg, 360)
	if lon < 0 {
		lon += 360
	}
	return Sign(int(lon/30) % 12)
}

func (s Sign) String() string {
	if s < 0 || int(s) >= len(signNames) {
		return "unknown"
	}
	return signNames[s]
}

// FormatLongitude renders an ecliptic longitude as degrees and minutes
// within its sign, e.g. "10°22' Capricorn".
func FormatLongitude(lonDeg float64) string {
	lon := math.Mod(lonDeg, 360)
	if lon < 0 {
		lon += 360
	}
	within := math.Mod(lon, 30)
	deg := int(within)
	min := int((within - float64(deg)) * 60)
	return fmt.Sprintf("%2d°%02d' %s", deg, min, SignOf(lon))
}

// WriteJSON writes the record as indented JSON.
func (r Record) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteRecordsJSON writes several records as one JSON array.
func WriteRecordsJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteTable writes one frame and zodiac of each record as a text table.
func WriteTable(w io.Writer, records []Record, frame flags.Frame, zodiac flags.Zodiac) {
	var at time.Time
	if len(records) > 0 {
		at = records[0].Time
	}

	fmt.Fprintf(w, "%s %s @ %s\n", frame, zodiac, at.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 100))

	if len(records) == 0 {
		fmt.Fprintln(w, "No bodies")
		return
	}

	fmt.Fprintf(w, "%-26s %-17s %9s %11s %10s %9s %9s %9s\n",
		"Body", "Position", "Lat", "Dist (AU)", "Speed", "RA", "Dec", "Dist Δ")
	fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, r := range records {
		c := r.Frame(frame).Zodiac(zodiac)
		fmt.Fprintf(w, "%-26s %-17s %+9.4f %11.6f %+10.4f %9.4f %+9.4f %9.1e\n",
			truncateStr(r.Name, 26),
			FormatLongitude(c.Longitude),
			c.Latitude,
			c.Distance,
			c.LongitudeSpeed,
			c.Rectascension,
			c.Declination,
			math.Abs(c.Distance-c.EquatorialDistance),
		)
	}

	fmt.Fprintf(w, "\nTotal: %d bodies\n", len(records))
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
