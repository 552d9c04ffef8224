package warp

import (
	"errors"
	"fmt"
)

// Severity classifies a diagnostic emitted on the Diagnostics channel.
type Severity int

const (
	// SeverityDebug is an informational message with no bearing on outcome.
	SeverityDebug Severity = iota
	// SeverityFailure accompanies an error returned to the caller.
	SeverityFailure
)

// Code classifies the failure kinds an Operation can return, per the error
// handling design: only success/failure outcomes exist, and every failure
// is tagged with exactly one Code.
type Code int

const (
	// ConfigInvalid indicates Options were missing or out of range.
	ConfigInvalid Code = iota
	// OutOfMemory indicates a buffer allocation failure.
	OutOfMemory
	// IOFailure indicates a raster read/write failure.
	IOFailure
	// TransformFailure indicates the transformer refused the whole batch,
	// or too many sample points failed to transform.
	TransformFailure
	// Aborted indicates the progress callback requested cancellation.
	Aborted
	// Internal indicates a programming error within the core itself.
	Internal
)

// String implements Stringer.
func (c Code) String() string {
	switch c {
	case ConfigInvalid:
		return "ConfigInvalid"
	case OutOfMemory:
		return "OutOfMemory"
	case IOFailure:
		return "IOFailure"
	case TransformFailure:
		return "TransformFailure"
	case Aborted:
		return "Aborted"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every warp operation. It carries a
// Code so callers can distinguish failure kinds with errors.As, and wraps
// an optional underlying cause.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, Err: cause}
}

func newErrorf(code Code, cause error, format string, args ...interface{}) *Error {
	return newError(code, fmt.Sprintf(format, args...), cause)
}

// CodeOf returns the Code carried by err if it (or something it wraps) is
// a *Error, and ok=false otherwise.
func CodeOf(err error) (Code, bool) {
	var werr *Error
	if errors.As(err, &werr) {
		return werr.Code, true
	}
	return 0, false
}

// WrapTransformFailure builds a TransformFailure *Error, for use by Kernel
// implementations that invoke the transformer collaborator directly.
func WrapTransformFailure(msg string) error {
	return newError(TransformFailure, msg, nil)
}

// WrapAborted builds an Aborted *Error, for use by Kernel implementations
// whose progress callback requested cancellation.
func WrapAborted(msg string) error {
	return newError(Aborted, msg, nil)
}

// Diagnostics receives one call per validation failure or debug note
// emitted by the core. A nil Diagnostics is treated as a no-op sink,
// mirroring godal's optional ErrorHandler.
type Diagnostics func(sev Severity, code Code, msg string)

func (d Diagnostics) emit(sev Severity, code Code, msg string) {
	if d != nil {
		d(sev, code, msg)
	}
}
