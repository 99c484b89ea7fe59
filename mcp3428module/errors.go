package mcp3428module

import "errors"

var (
	// ErrBus is matched by every transport failure; see BusError for the cause.
	ErrBus = errors.New("mcp3428: i2c bus error")
	// ErrVoltageTooHigh means the sample sat at the highest code of the resolution.
	ErrVoltageTooHigh = errors.New("mcp3428: voltage too high to be measured")
	// ErrVoltageTooLow means the sample sat at the lowest code of the resolution.
	ErrVoltageTooLow = errors.New("mcp3428: voltage too low to be measured")
	// ErrNotInitialized is returned by a continuous read issued before WriteConfig
	// succeeded for the current settings.
	ErrNotInitialized = errors.New("mcp3428: continuous mode read before configuration was written")
	// ErrNotReady names a stale result. It is never returned: polling faster than
	// the sample rate in continuous mode yields the previous result instead, and
	// the status byte cannot tell the two apart.
	ErrNotReady = errors.New("mcp3428: measurement not ready")
	// ErrTimeout is returned when the context ends while waiting for a conversion.
	ErrTimeout = errors.New("mcp3428: timed out waiting for conversion")
)

// BusError reports a failed write or read transaction.
type BusError struct {
	Op  string
	Err error
}

func (e *BusError) Error() string {
	return "mcp3428: i2c " + e.Op + ": " + e.Err.Error()
}

func (e *BusError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrBus) match any BusError.
func (e *BusError) Is(target error) bool { return target == ErrBus }

func busError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BusError{Op: op, Err: err}
}
