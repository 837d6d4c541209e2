// Package server provides the HTTP API for building, previewing and exporting resumes.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cvmaker/internal/db"
	"github.com/jonathan/cvmaker/internal/document"
	"github.com/jonathan/cvmaker/internal/resumesync"
	"github.com/jonathan/cvmaker/internal/schemas"
	"github.com/jonathan/cvmaker/internal/store"
)

// Envelope status codes.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrPersistenceDisabled is returned when the server runs without a database.
var ErrPersistenceDisabled = errors.New("resume persistence is not configured")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation   *ErrValidation
		schemaErr    *schemas.ValidationError
		unknownField *store.UnknownFieldError
		fieldErr     *store.FieldError
		missing      *document.MissingInputError
		dbNotFound   *db.ResumeNotFoundError
		syncNotFound *resumesync.NotFoundError
		deserialize  *resumesync.DeserializeError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &schemaErr),
		errors.As(err, &unknownField), errors.As(err, &fieldErr),
		errors.As(err, &missing):
		return http.StatusBadRequest
	case errors.As(err, &dbNotFound), errors.As(err, &syncNotFound):
		return http.StatusNotFound
	case errors.As(err, &deserialize):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPersistenceDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// statusCode maps an HTTP status to the envelope status code.
func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusServiceUnavailable:
		return CodeUnavailable
	default:
		return CodeInternal
	}
}
