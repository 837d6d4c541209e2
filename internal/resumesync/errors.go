package resumesync

import (
	"fmt"
)

// NotFoundError is returned when a resume record does not exist or is not owned by the caller.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resume %d not found", e.ID)
}

// DeserializeError reports a persisted record whose data is not a valid resume.
// Hydration treats it as a recoverable failure: the store keeps its previous content.
type DeserializeError struct {
	RecordID int64
	Cause    error
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("failed to deserialize resume %d: %v", e.RecordID, e.Cause)
}

func (e *DeserializeError) Unwrap() error {
	return e.Cause
}

// APIError is a non-success response from the resume service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("resume service returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("resume service returned %d", e.StatusCode)
}
