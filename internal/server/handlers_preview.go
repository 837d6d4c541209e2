package server

import (
	"bytes"
	"log"
	"net/http"

	"github.com/jonathan/cvmaker/internal/rendering"
	"github.com/jonathan/cvmaker/internal/resumesync"
)

// previewState maps the session's sync status onto what the preview shows.
func previewState(sess *session) rendering.PreviewState {
	status := sess.hydrator.Status()
	switch status.Phase {
	case resumesync.PhaseError:
		return rendering.PreviewState{State: rendering.StateError, Message: status.Message}
	case resumesync.PhaseLoading:
		return rendering.PreviewState{State: rendering.StateLoading}
	}
	snap := sess.store.Snapshot()
	return rendering.PreviewState{
		State:    rendering.StateReady,
		Data:     snap.Data,
		Template: snap.Template,
	}
}

// handlePreviewPage serves the live preview page that snapshot exports print
func (s *Server) handlePreviewPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := rendering.RenderPage(&buf, previewState(sess), rendering.PageOptions{
		StylesheetURL: s.cfg.StylesheetURL,
	})
	if err != nil {
		log.Printf("[RENDER] failed to render preview page: %v", err)
		http.Error(w, "Failed to render preview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// handleEditorDocument returns the standalone HTML document of the session's
// resume, ready to be submitted to POST /api/generate-pdf.
func (s *Server) handleEditorDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.editorSession(w, r)
	if !ok {
		return
	}

	snap := sess.store.Snapshot()
	doc, err := rendering.RenderDocument(snap.Data, snap.Template, s.cfg.StylesheetURL)
	if err != nil {
		log.Printf("[RENDER] failed to render document: %v", err)
		http.Error(w, "Failed to render document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}
