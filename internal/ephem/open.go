package ephem

import (
	"path/filepath"

	"github.com/litescript/ls-ephemeris/internal/logging"
)

// Config selects and configures the source behind a calculator.
type Config struct {
	Kind        Kind
	EphePath    string // directory holding ephemeris files
	JPLFile     string // DE file name, relative to EphePath unless absolute
	HorizonsURL string // overrides HorizonsAPIURL when set
}

// Open builds a calculator for cfg. The analytic source backs every other
// kind for bodies they cannot supply.
func Open(cfg Config, log *logging.Logger) (*Engine, error) {
	if log == nil {
		log = logging.Discard()
	}

	analytic := NewAnalyticSource()

	var src Source = analytic
	switch cfg.Kind {
	case KindJPL:
		path := cfg.JPLFile
		if !filepath.IsAbs(path) && cfg.EphePath != "" {
			path = filepath.Join(cfg.EphePath, path)
		}
		jpl, err := OpenJPLSource(path, analytic)
		if err != nil {
			return nil, err
		}
		first, last := jpl.Range()
		log.Info("opened %s (JD %.1f to %.1f)", jpl.Name(), first, last)
		src = jpl
	case KindHorizons:
		opts := []HorizonsOption{WithHorizonsLogger(log)}
		if cfg.HorizonsURL != "" {
			opts = append(opts, WithHorizonsURL(cfg.HorizonsURL))
		}
		src = NewHorizonsSource(analytic, opts...)
		log.Info("using JPL Horizons web service")
	default:
		log.Info("using built-in analytic ephemeris")
	}

	return NewEngine(src, WithLogger(log)), nil
}
