package ephem

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/catalog"
	"github.com/litescript/ls-ephemeris/internal/flags"
	"github.com/litescript/ls-ephemeris/internal/logging"
)

const (
	// HorizonsAPIURL is the JPL Horizons JSON API endpoint.
	HorizonsAPIURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

	// HorizonsWindow is the span of each fetched state-vector table,
	// centred on the requested date.
	HorizonsWindow = 2.0 // days

	// HorizonsStep is the spacing of fetched table entries.
	HorizonsStep = 2 * time.Hour

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout = 30 * time.Second
)

// horizonsCommands maps catalog bodies to Horizons COMMAND values.
var horizonsCommands = map[catalog.ID]string{
	catalog.Sun:     "10",
	catalog.Moon:    "301",
	catalog.Mercury: "199",
	catalog.Venus:   "299",
	catalog.Earth:   "399",
	catalog.Mars:    "499",
	catalog.Jupiter: "599",
	catalog.Saturn:  "699",
	catalog.Uranus:  "799",
	catalog.Neptune: "899",
	catalog.Pluto:   "999",
	catalog.Chiron:  "2060;",
}

// HorizonsSource queries JPL Horizons for geometric state vectors and
// interpolates between table entries. Lunar points are delegated to a
// fallback source.
type HorizonsSource struct {
	client   *http.Client
	baseURL  string
	breaker  *gobreaker.CircuitBreaker[[]byte]
	fallback Source
	log      *logging.Logger

	// Table cache
	mu     sync.RWMutex
	tables map[tableKey]*stateTable
}

type tableKey struct {
	body   catalog.ID
	center Center
}

// stateSample is one Horizons table row.
type stateSample struct {
	jd  float64
	pos astro.Vec3
	vel astro.Vec3 // AU/day
}

// stateTable stores a fetched table, sorted by jd.
type stateTable struct {
	samples []stateSample
}

// HorizonsOption configures a HorizonsSource.
type HorizonsOption func(*HorizonsSource)

// WithHorizonsURL overrides the API endpoint.
func WithHorizonsURL(u string) HorizonsOption {
	return func(s *HorizonsSource) { s.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) HorizonsOption {
	return func(s *HorizonsSource) { s.client = c }
}

// WithHorizonsLogger sets the logger used for circuit breaker transitions.
func WithHorizonsLogger(l *logging.Logger) HorizonsOption {
	return func(s *HorizonsSource) { s.log = l }
}

// NewHorizonsSource creates a Horizons client.
func NewHorizonsSource(fallback Source, opts ...HorizonsOption) *HorizonsSource {
	s := &HorizonsSource{
		client: &http.Client{
			Timeout: RequestTimeout,
		},
		baseURL:  HorizonsAPIURL,
		fallback: fallback,
		log:      logging.Discard(),
		tables:   make(map[tableKey]*stateTable),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "horizons",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.log.Warn("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return s
}

// Name implements Source.
func (s *HorizonsSource) Name() string {
	return "horizons"
}

// EngineFlag implements Source. Horizons serves the JPL DE ephemerides.
func (s *HorizonsSource) EngineFlag() flags.Flags {
	return flags.JPLEph
}

// Close implements Source.
func (s *HorizonsSource) Close() error {
	s.InvalidateCache()
	if s.fallback != nil {
		return s.fallback.Close()
	}
	return nil
}

// InvalidateCache drops every fetched table.
func (s *HorizonsSource) InvalidateCache() {
	s.mu.Lock()
	s.tables = make(map[tableKey]*stateTable)
	s.mu.Unlock()
}

// Position implements Source.
// Returns an interpolated position from a cached table if one covers jdTT,
// otherwise fetches a fresh table.
func (s *HorizonsSource) Position(body catalog.ID, center Center, jdTT float64) (astro.Vec3, error) {
	if _, ok := horizonsCommands[body]; !ok {
		if s.fallback == nil {
			return astro.Vec3{}, fmt.Errorf("%w: %s", ErrUnsupportedBody, body)
		}
		return s.fallback.Position(body, center, jdTT)
	}
	if body == catalog.Sun && center == CenterSun || body == catalog.Earth && center == CenterEarth {
		return astro.Vec3{}, nil
	}

	key := tableKey{body: body, center: center}

	// Check cache
	s.mu.RLock()
	table, ok := s.tables[key]
	s.mu.RUnlock()

	if ok {
		if pos, ok := table.interpolate(jdTT); ok {
			return pos, nil
		}
	}

	// Query fresh data
	table, err := s.fetchTable(body, center, jdTT-HorizonsWindow/2, jdTT+HorizonsWindow/2)
	if err != nil {
		return astro.Vec3{}, err
	}

	// Cache result
	s.mu.Lock()
	s.tables[key] = table
	s.mu.Unlock()

	pos, ok := table.interpolate(jdTT)
	if !ok {
		return astro.Vec3{}, fmt.Errorf("%w: horizons table for %s does not cover JD %.5f", ErrOutsideRange, body, jdTT)
	}
	return pos, nil
}

// fetchTable makes a VECTORS request to the Horizons API.
func (s *HorizonsSource) fetchTable(body catalog.ID, center Center, startJD, stopJD float64) (*stateTable, error) {
	// Build request parameters - values must be quoted with single quotes
	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%s'", horizonsCommands[body]))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "VECTORS")
	params.Set("CENTER", fmt.Sprintf("'%s'", horizonsCenter(center)))
	params.Set("REF_PLANE", "ECLIPTIC")
	params.Set("REF_SYSTEM", "ICRF")
	params.Set("VEC_TABLE", "'2'") // Position and velocity
	params.Set("VEC_CORR", "'NONE'")
	params.Set("VEC_LABELS", "NO")
	params.Set("CSV_FORMAT", "YES")
	params.Set("OUT_UNITS", "'AU-D'")
	params.Set("TIME_TYPE", "TT")
	params.Set("START_TIME", fmt.Sprintf("'JD %.6f'", startJD))
	params.Set("STOP_TIME", fmt.Sprintf("'JD %.6f'", stopJD))
	params.Set("STEP_SIZE", fmt.Sprintf("'%s'", formatStepSize(HorizonsStep)))

	reqURL := s.baseURL + "?" + params.Encode()

	payload, err := s.breaker.Execute(func() ([]byte, error) {
		resp, err := s.client.Get(reqURL)
		if err != nil {
			return nil, fmt.Errorf("horizons request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("horizons returned status %d: %s", resp.StatusCode, string(msg))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		return data, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("horizons unavailable: %w", err)
	}
	if err != nil {
		return nil, err
	}

	return parseVectorResponse(payload)
}

func horizonsCenter(c Center) string {
	if c == CenterEarth {
		return "500@399"
	}
	return "500@10"
}

// horizonsResponse represents the JSON API response.
type horizonsResponse struct {
	Signature struct {
		Version string `json:"version"`
		Source  string `json:"source"`
	} `json:"signature"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

// parseVectorResponse parses the Horizons JSON response for vector data.
func parseVectorResponse(body []byte) (*stateTable, error) {
	var resp horizonsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("horizons error: %s", strings.TrimSpace(resp.Error))
	}

	// Find the data section between $$SOE and $$EOE markers
	soeIdx := strings.Index(resp.Result, "$$SOE")
	eoeIdx := strings.Index(resp.Result, "$$EOE")
	if soeIdx == -1 || eoeIdx == -1 || soeIdx >= eoeIdx {
		return nil, fmt.Errorf("could not find vector data markers")
	}

	var table stateTable
	for _, line := range strings.Split(resp.Result[soeIdx+5:eoeIdx], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sample, err := parseVectorLine(line)
		if err != nil {
			continue // Skip unparseable lines
		}
		table.samples = append(table.samples, sample)
	}
	if len(table.samples) < 2 {
		return nil, fmt.Errorf("could not parse vector data")
	}

	sort.Slice(table.samples, func(i, j int) bool { return table.samples[i].jd < table.samples[j].jd })
	return &table, nil
}

// parseVectorLine parses one CSV row (VEC_TABLE='2'):
// 2451545.000000000, A.D. 2000-Jan-01 12:00:00.0000, X, Y, Z, VX, VY, VZ,
func parseVectorLine(line string) (stateSample, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 8 {
		return stateSample{}, fmt.Errorf("insufficient fields: %d", len(fields))
	}

	var vals [7]float64
	for i, idx := range []int{0, 2, 3, 4, 5, 6, 7} {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[idx]), 64)
		if err != nil {
			return stateSample{}, fmt.Errorf("field %d: %w", idx, err)
		}
		vals[i] = v
	}

	return stateSample{
		jd:  vals[0],
		pos: astro.Vec3{X: vals[1], Y: vals[2], Z: vals[3]},
		vel: astro.Vec3{X: vals[4], Y: vals[5], Z: vals[6]},
	}, nil
}

// interpolate evaluates the cubic Hermite polynomial through the two
// samples bracketing jd.
func (t *stateTable) interpolate(jd float64) (astro.Vec3, bool) {
	n := len(t.samples)
	if n < 2 || jd < t.samples[0].jd || jd > t.samples[n-1].jd {
		return astro.Vec3{}, false
	}

	i := sort.Search(n, func(i int) bool { return t.samples[i].jd >= jd })
	if i == 0 {
		i = 1
	}
	a, b := t.samples[i-1], t.samples[i]

	h := b.jd - a.jd
	if h == 0 {
		return a.pos, true
	}
	u := (jd - a.jd) / h
	u2, u3 := u*u, u*u*u

	h00 := 2*u3 - 3*u2 + 1
	h10 := u3 - 2*u2 + u
	h01 := -2*u3 + 3*u2
	h11 := u3 - u2

	return a.pos.Scale(h00).
		Add(a.vel.Scale(h10 * h)).
		Add(b.pos.Scale(h01)).
		Add(b.vel.Scale(h11 * h)), true
}

// formatStepSize formats a duration as a Horizons step size.
func formatStepSize(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes >= 60 {
		hours := minutes / 60
		return fmt.Sprintf("%d h", hours)
	}
	return fmt.Sprintf("%d m", minutes)
}
