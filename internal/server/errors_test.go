package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/cvmaker/internal/db"
	"github.com/jonathan/cvmaker/internal/document"
	"github.com/jonathan/cvmaker/internal/resumesync"
	"github.com/jonathan/cvmaker/internal/schemas"
	"github.com/jonathan/cvmaker/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "id", Message: "bad"}, http.StatusBadRequest},
		{"schema", &schemas.ValidationError{}, http.StatusBadRequest},
		{"unknown field", &store.UnknownFieldError{Field: "nickname"}, http.StatusBadRequest},
		{"missing input", &document.MissingInputError{Field: "HTML content"}, http.StatusBadRequest},
		{"db not found", &db.ResumeNotFoundError{ID: 3}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get: %w", &resumesync.NotFoundError{ID: 3}), http.StatusNotFound},
		{"deserialize", &resumesync.DeserializeError{RecordID: 1, Cause: errors.New("bad json")}, http.StatusUnprocessableEntity},
		{"persistence disabled", ErrPersistenceDisabled, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, CodeValidation, statusCode(http.StatusBadRequest))
	assert.Equal(t, CodeValidation, statusCode(http.StatusUnprocessableEntity))
	assert.Equal(t, CodeNotFound, statusCode(http.StatusNotFound))
	assert.Equal(t, CodeUnauthorized, statusCode(http.StatusUnauthorized))
	assert.Equal(t, CodeUnavailable, statusCode(http.StatusServiceUnavailable))
	assert.Equal(t, CodeInternal, statusCode(http.StatusTeapot))
}
