package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/cvmaker/internal/auth"
	"github.com/jonathan/cvmaker/internal/document"
	"github.com/jonathan/cvmaker/internal/types"
)

// Plain text bodies of the export endpoints.
const (
	msgHTMLMissing     = "HTML content is missing"
	msgGenerateFailure = "Failed to generate PDF"
)

// maxHTMLBody bounds the size of a submitted document.
const maxHTMLBody = 10 << 20

// handleExportSnapshot prints the live preview page. Cookies of the caller are
// forwarded so the page renders that caller's resume.
func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Snapshot(r.Context(), document.SnapshotRequest{
		URL:     s.cfg.PreviewURL,
		Cookies: s.forwardedCookies(r),
	})
	if err != nil {
		s.exportFailed(w, "snapshot", err)
		return
	}
	s.metrics.export("snapshot", outcomeSuccess)
	writeDocument(w, doc)
}

// forwardedCookies returns the caller's cookies for the preview fetch. A caller
// authenticated by bearer header gets its token replayed as the auth cookie,
// since the browser cannot send the header.
func (s *Server) forwardedCookies(r *http.Request) []*http.Cookie {
	cookies := r.Cookies()
	if c, err := r.Cookie(s.cfg.CookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return cookies
	}
	token, err := auth.TokenFromRequest(r, s.cfg.CookieName)
	if err != nil {
		return cookies
	}
	return append(cookies, &http.Cookie{Name: s.cfg.CookieName, Value: token})
}

// handleExportHTML prints a submitted HTML document.
func (s *Server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	var req types.GeneratePDFRequest
	body := http.MaxBytesReader(w, r.Body, maxHTMLBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("[EXPORT] invalid request body: %v", err)
		s.metrics.export("html", outcomeInvalid)
		plainText(w, http.StatusBadRequest, msgHTMLMissing)
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		s.metrics.export("html", outcomeInvalid)
		plainText(w, http.StatusBadRequest, msgHTMLMissing)
		return
	}

	doc, err := s.documents.FromHTML(r.Context(), req.HTML)
	if err != nil {
		s.exportFailed(w, "html", err)
		return
	}
	s.metrics.export("html", outcomeSuccess)
	writeDocument(w, doc)
}

func (s *Server) exportFailed(w http.ResponseWriter, mode string, err error) {
	var missing *document.MissingInputError
	if errors.As(err, &missing) {
		s.metrics.export(mode, outcomeInvalid)
		plainText(w, http.StatusBadRequest, missing.Error())
		return
	}
	log.Printf("[EXPORT] %s export failed: %v", mode, err)
	s.metrics.export(mode, outcomeFailure)
	plainText(w, http.StatusInternalServerError, msgGenerateFailure)
}

// plainText writes msg as the whole body, without the trailing newline http.Error adds.
func plainText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

func writeDocument(w http.ResponseWriter, doc *document.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		log.Printf("[EXPORT] failed to write document: %v", err)
	}
}
