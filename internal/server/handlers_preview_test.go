package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestPreviewPage_RendersSessionResume(t *testing.T) {
	repo := newMemRepo()
	ts := newTestServer(t, repo)
	owner := uuid.New()
	repo.seed(owner, "ui3", serialized(t, sampleResume("Jane")))

	w := ts.do(t, http.MethodGet, "/profile/cvmaker", "", tokenFor(t, owner))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	doc := parseHTML(t, w.Body.String())
	marker := doc.Find("#cv-preview")
	require.Equal(t, 1, marker.Length())
	state, _ := marker.Attr("data-state")
	assert.Equal(t, "ready", state)
	assert.Equal(t, 1, marker.Find(`[data-template="ui3"]`).Length())
	assert.Contains(t, marker.Text(), "Jane")

	src, _ := doc.Find("head script").Attr("src")
	assert.Equal(t, "https://cdn.example.com/tw.js", src)
}

func TestPreviewPage_ErrorState(t *testing.T) {
	repo := newMemRepo()
	repo.listErr = errBackendDown
	ts := newTestServer(t, repo)

	w := ts.do(t, http.MethodGet, "/profile/cvmaker", "", tokenFor(t, uuid.New()))
	require.Equal(t, http.StatusOK, w.Code)

	marker := parseHTML(t, w.Body.String()).Find("#cv-preview")
	state, _ := marker.Attr("data-state")
	assert.Equal(t, "error", state)
	assert.Contains(t, marker.Text(), "Failed to load resume data. Please refresh the page.")
}

func TestPreviewPage_RequiresToken(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/profile/cvmaker", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEditorDocument(t *testing.T) {
	ts := newTestServer(t, nil)
	token := tokenFor(t, uuid.New())
	ts.do(t, http.MethodPut, "/editor/fields/firstName", `{"value":"Jane"}`, token)
	ts.do(t, http.MethodPut, "/editor/template", `{"template":"ui2"}`, token)

	w := ts.do(t, http.MethodGet, "/editor/document", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "<!DOCTYPE html>"))

	doc := parseHTML(t, w.Body.String())
	assert.Equal(t, 1, doc.Find(`[data-template="ui2"]`).Length())
	assert.Contains(t, doc.Find("body").Text(), "Jane")
}
