package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/cvmaker/internal/config"
	"github.com/jonathan/cvmaker/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_ExportOverHTTP(t *testing.T) {
	ts := newTestServer(t, newMemRepo())
	srv := httptest.NewServer(ts.httpServer.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/generate-pdf")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, err = http.Post(srv.URL+"/api/generate-pdf", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "HTML content is missing", string(body))
}

func lookupChrome(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if p := os.Getenv("CHROME_PATH"); p != "" {
		return p
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skip("no Chrome installation found")
	return ""
}

// The browser loads the preview page from the same server with the caller's
// cookie, so the PDF contains that caller's resume.
func TestE2E_SnapshotWithChrome(t *testing.T) {
	chrome := lookupChrome(t)
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	repo := newMemRepo()
	owner := uuid.New()
	repo.seed(owner, "ui2", serialized(t, sampleResume("Jane")))

	cfg := &config.ServerConfig{
		JWT:        &config.JWTConfig{},
		CookieName: "token",
	}
	s, err := NewWithDeps(cfg, Deps{Resumes: repo, Engine: document.NewChromeEngine(chrome)})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	srv := httptest.NewServer(s.httpServer.Handler)
	defer srv.Close()
	cfg.PreviewURL = srv.URL + "/profile/cvmaker"
	// keep the page off the network
	cfg.StylesheetURL = srv.URL + "/health"

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/generate-pdf", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, owner)})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}
