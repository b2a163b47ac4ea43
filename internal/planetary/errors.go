package planetary

import (
	"errors"
	"fmt"

	"github.com/litescript/ls-ephemeris/internal/catalog"
	"github.com/litescript/ls-ephemeris/internal/flags"
)

var (
	// ErrCalculationFailure matches every *CalculationError.
	ErrCalculationFailure = errors.New("calculation failed")

	// ErrNotInitialized is the panic value for use before Initialize.
	ErrNotInitialized = errors.New("planetary session not initialized")

	// ErrShutdown is the panic value for use after Shutdown.
	ErrShutdown = errors.New("planetary session shut down")

	// ErrInvalidObserver is returned for coordinates outside the valid
	// longitude/latitude ranges.
	ErrInvalidObserver = errors.New("invalid observer location")

	// ErrNoObserver is returned by horizon searches before an observer is set.
	ErrNoObserver = errors.New("no observer location set")
)

// CalculationError reports the primitive call that aborted a record.
type CalculationError struct {
	Body      catalog.ID
	DayNumber float64
	Mode      flags.Mode
	Flags     flags.Flags
	Err       error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("calculation failed for %s at JD %.6f (%s, flags %s): %v",
		e.Body, e.DayNumber, e.Mode, e.Flags, e.Err)
}

// Unwrap returns the engine error.
func (e *CalculationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrCalculationFailure) hold.
func (e *CalculationError) Is(target error) bool {
	return target == ErrCalculationFailure
}
