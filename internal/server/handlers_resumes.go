package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/cvmaker/internal/schemas"
	"github.com/jonathan/cvmaker/internal/server/middleware"
	"github.com/jonathan/cvmaker/internal/types"
)

// maxResumeBody bounds an upsert body. Profile pictures travel inline as data URLs.
const maxResumeBody = 5 << 20

// resumeOwner resolves the caller and checks that persistence is available.
// It writes the error response itself and returns false when the request cannot proceed.
func (s *Server) resumeOwner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if s.resumes == nil {
		s.envelopeError(w, http.StatusServiceUnavailable, ErrPersistenceDisabled.Error())
		return uuid.Nil, false
	}
	owner, err := middleware.GetUserID(r)
	if err != nil {
		s.envelopeError(w, http.StatusUnauthorized, "Token does not identify a user")
		return uuid.Nil, false
	}
	return owner, true
}

func parseResumeID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &ErrValidation{Field: "id", Message: "must be a positive integer"}
	}
	return id, nil
}

// handleListResumes returns the caller's resumes, newest first
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.resumeOwner(w, r)
	if !ok {
		return
	}

	records, err := s.resumes.ListResumes(r.Context(), owner)
	if err != nil {
		log.Printf("[SERVER] failed to list resumes: %v", err)
		s.envelopeError(w, http.StatusInternalServerError, "Failed to list resumes")
		return
	}
	envelopeResponse(s, w, http.StatusOK, records)
}

// handleGetResume returns one of the caller's resumes
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.resumeOwner(w, r)
	if !ok {
		return
	}
	id, err := parseResumeID(r)
	if err != nil {
		s.envelopeError(w, HTTPStatus(err), err.Error())
		return
	}

	record, err := s.resumes.GetResume(r.Context(), owner, id)
	if err != nil {
		log.Printf("[SERVER] failed to get resume %d: %v", id, err)
		s.envelopeError(w, http.StatusInternalServerError, "Failed to get resume")
		return
	}
	if record == nil {
		s.envelopeError(w, http.StatusNotFound, "Resume not found with id: "+strconv.FormatInt(id, 10))
		return
	}
	envelopeResponse(s, w, http.StatusOK, record)
}

// handleUpsertResume saves the caller's resume, replacing the most recent one
func (s *Server) handleUpsertResume(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.resumeOwner(w, r)
	if !ok {
		return
	}

	var req types.UpsertResumeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxResumeBody)).Decode(&req); err != nil {
		s.envelopeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.envelopeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if err := schemas.ValidateResumeData(req.Data); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			s.envelopeError(w, http.StatusBadRequest, "Invalid resume data: "+ve.Summary())
			return
		}
		log.Printf("[SERVER] schema validation failed: %v", err)
		s.envelopeError(w, http.StatusInternalServerError, "Failed to validate resume data")
		return
	}
	if _, err := types.Deserialize(req.Data); err != nil {
		s.envelopeError(w, http.StatusBadRequest, resumeDataMessage(err))
		return
	}

	record, err := s.resumes.UpsertResume(r.Context(), owner, req.TemplateID, req.Data)
	if err != nil {
		log.Printf("[SERVER] failed to save resume: %v", err)
		s.envelopeError(w, http.StatusInternalServerError, "Failed to save resume")
		return
	}
	envelopeResponse(s, w, http.StatusCreated, record)
}

// handleDeleteResume removes one of the caller's resumes
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.resumeOwner(w, r)
	if !ok {
		return
	}
	id, err := parseResumeID(r)
	if err != nil {
		s.envelopeError(w, HTTPStatus(err), err.Error())
		return
	}

	if err := s.resumes.DeleteResume(r.Context(), owner, id); err != nil {
		status := HTTPStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("[SERVER] failed to delete resume %d: %v", id, err)
			s.envelopeError(w, status, "Failed to delete resume")
			return
		}
		s.envelopeError(w, status, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resumeDataMessage describes why a document is not valid ResumeData.
func resumeDataMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return validationMessage(verrs)
	}
	var de *types.DeserializeError
	if errors.As(err, &de) {
		return "Invalid resume data: " + de.Cause.Error()
	}
	return "Invalid resume data: " + err.Error()
}

// validationMessage flattens validator errors into one line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return "Validation failed: " + fe.Field() + " is " + fe.Tag()
	}
	return "Validation failed: " + err.Error()
}
