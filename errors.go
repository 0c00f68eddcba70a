package permit

import (
	"errors"
	"fmt"
)

// ErrUnsupportedOperation is returned by adapters that cannot perform a
// requested operation (for example batch writes on a file adapter). The
// engine propagates it to the caller instead of retrying row-by-row, so a
// partially applied batch is never hidden behind a silent fallback.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// ConfigurationError reports an inconsistency in the loaded model: a missing
// assertion, an unknown section or policy type, an unparseable matcher, or a
// function registered with the wrong shape. It is fatal to the call that
// surfaced it and never leaves the engine partially mutated.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

func configError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// EvaluationError reports a failure while evaluating a matcher expression at
// enforcement time, such as a custom function returning an error or a
// non-boolean result. It aborts only the current Enforce call.
type EvaluationError struct {
	Matcher string
	Err     error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error in matcher %q: %v", e.Matcher, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

func evalError(matcher string, err error) *EvaluationError {
	return &EvaluationError{Matcher: matcher, Err: err}
}
