package document

import (
	"fmt"
	"time"
)

// MissingInputError is returned when the HTML to convert is absent or empty.
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s is missing", e.Field)
}

// LaunchError indicates the headless engine could not be started.
type LaunchError struct {
	Cause error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch rendering engine: %v", e.Cause)
}

func (e *LaunchError) Unwrap() error {
	return e.Cause
}

// NetworkIdleError indicates a page did not finish loading within the idle timeout.
type NetworkIdleError struct {
	URL     string
	Timeout time.Duration
	Cause   error
}

func (e *NetworkIdleError) Error() string {
	return fmt.Sprintf("page %s did not reach network idle within %s: %v", e.URL, e.Timeout, e.Cause)
}

func (e *NetworkIdleError) Unwrap() error {
	return e.Cause
}

// MarkerTimeoutError indicates the preview marker never appeared on the page.
type MarkerTimeoutError struct {
	Marker  string
	Timeout time.Duration
}

func (e *MarkerTimeoutError) Error() string {
	return fmt.Sprintf("marker #%s did not appear within %s", e.Marker, e.Timeout)
}

// RenderError wraps any other failure of a rendering stage.
type RenderError struct {
	Stage string
	Cause error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed during %s: %v", e.Stage, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
