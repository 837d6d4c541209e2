package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/jonathan/cvmaker/internal/resumesync"
	"github.com/jonathan/cvmaker/internal/server/middleware"
	"github.com/jonathan/cvmaker/internal/store"
	"github.com/jonathan/cvmaker/internal/types"
)

// EditorState is the response of every editor endpoint.
type EditorState struct {
	Status   resumesync.Status     `json:"status"`
	Template types.TemplateVariant `json:"template"`
	Version  uint64                `json:"version"`
	Data     *types.ResumeData     `json:"data"`
	// EntryID is set by the endpoints that create an entry.
	EntryID string `json:"entryId,omitempty"`
}

type valueRequest struct {
	Value string `json:"value"`
}

type templateRequest struct {
	Template string `json:"template"`
}

type pictureRequest struct {
	Picture string `json:"picture"`
}

type entryUpdateRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type responsibilityRequest struct {
	Text string `json:"text"`
}

// editorSession resolves and hydrates the caller's session.
func (s *Server) editorSession(w http.ResponseWriter, r *http.Request) (*session, bool) {
	id, err := middleware.GetIdentity(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	sess := s.sessions.get(id)
	sess.hydrate(r.Context())
	return sess, true
}

func (s *Server) editorResponse(w http.ResponseWriter, status int, sess *session, entryID string) {
	snap := sess.store.Snapshot()
	s.jsonResponse(w, status, EditorState{
		Status:   sess.hydrator.Status(),
		Template: snap.Template,
		Version:  snap.Version,
		Data:     snap.Data,
		EntryID:  entryID,
	})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// handleEditorState returns the session's current resume
func (s *Server) handleEditorState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	s.editorResponse(w, http.StatusOK, sess, "")
}

func (s *Server) handleEditorSetField(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	var req valueRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := sess.store.SetField(r.PathValue("field"), req.Value); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.editorResponse(w, http.StatusOK, sess, "")
}

func (s *Server) handleEditorSetContact(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	var req valueRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := sess.store.SetContact(r.PathValue("channel"), req.Value); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.editorResponse(w, http.StatusOK, sess, "")
}

// handleEditorSetTemplate switches the layout. Unknown names select the default layout.
func (s *Server) handleEditorSetTemplate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	var req templateRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	sess.store.SetTemplate(types.ParseTemplateVariant(req.Template))
	s.editorResponse(w, http.StatusOK, sess, "")
}

func (s *Server) handleEditorSetPicture(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	var req pictureRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxResumeBody)).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Picture == "" {
		s.errorResponse(w, http.StatusBadRequest, "picture is required")
		return
	}
	sess.store.SetProfilePicture(req.Picture)
	s.editorResponse(w, http.StatusOK, sess, "")
}

func (s *Server) handleEditorRemovePicture(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	sess.store.RemoveProfilePicture()
	s.editorResponse(w, http.StatusOK, sess, "")
}

// handleEditorAddEntry appends an empty entry to a section
func (s *Server) handleEditorAddEntry(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	section, ok := store.ParseSection(r.PathValue("section"))
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Unknown section: "+r.PathValue("section"))
		return
	}
	id, err := sess.store.AddEntry(section)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	s.editorResponse(w, http.StatusCreated, sess, id)
}

// handleEditorUpdateEntry sets one field of an entry. Absent ids are ignored.
func (s *Server) handleEditorUpdateEntry(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	section, ok := store.ParseSection(r.PathValue("section"))
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Unknown section: "+r.PathValue("section"))
		return
	}
	var req entryUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := sess.store.UpdateEntry(section, r.PathValue("id"), req.Field, jsonValue(req.Value)); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.editorResponse(w, http.StatusOK, sess, "")
}

// handleEditorRemoveEntry deletes an entry. Absent ids are ignored.
func (s *Server) handleEditorRemoveEntry(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	section, ok := store.ParseSection(r.PathValue("section"))
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Unknown section: "+r.PathValue("section"))
		return
	}
	sess.store.RemoveEntry(section, r.PathValue("id"))
	s.editorResponse(w, http.StatusOK, sess, "")
}

func (s *Server) handleEditorAddResponsibility(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	sess.store.AddResponsibility(r.PathValue("id"))
	s.editorResponse(w, http.StatusOK, sess, "")
}

func (s *Server) handleEditorUpdateResponsibility(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	var req responsibilityRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	sess.store.UpdateResponsibility(r.PathValue("id"), index, req.Text)
	s.editorResponse(w, http.StatusOK, sess, "")
}

func (s *Server) handleEditorRemoveResponsibility(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	sess.store.RemoveResponsibility(r.PathValue("id"), index)
	s.editorResponse(w, http.StatusOK, sess, "")
}

// handleEditorSave persists the session's resume
func (s *Server) handleEditorSave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	record, err := sess.hydrator.Save(r.Context())
	if err != nil {
		status := HTTPStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("[SYNC] save failed: %v", err)
			s.errorResponse(w, status, "Failed to save resume")
			return
		}
		s.errorResponse(w, status, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, record)
}

// handleEditorLoad replaces the session's resume with a persisted one
func (s *Server) handleEditorLoad(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}
	id, err := parseResumeID(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := sess.hydrator.LoadRecord(r.Context(), id); err != nil {
		status := HTTPStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("[SYNC] load of resume %d failed: %v", id, err)
			s.errorResponse(w, status, "Failed to load resume")
			return
		}
		var de *resumesync.DeserializeError
		if errors.As(err, &de) {
			s.errorResponse(w, status, "Stored resume data is invalid")
			return
		}
		s.errorResponse(w, status, err.Error())
		return
	}
	s.editorResponse(w, http.StatusOK, sess, "")
}

// jsonValue converts decoded JSON arrays of strings into []string so list fields
// can be set from request bodies.
func jsonValue(v any) any {
	items, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return v
		}
		out = append(out, s)
	}
	return out
}
