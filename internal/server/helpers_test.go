package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/cvmaker/internal/config"
	"github.com/jonathan/cvmaker/internal/db"
	"github.com/jonathan/cvmaker/internal/document"
	"github.com/jonathan/cvmaker/internal/types"
	"github.com/stretchr/testify/require"
)

// fakeEngine hands out instances that print a fixed document.
type fakeEngine struct {
	mu        sync.Mutex
	fail      error
	instances []*fakeInstance
}

func (e *fakeEngine) Acquire(_ context.Context) (document.Instance, error) {
	inst := &fakeInstance{fail: e.fail}
	e.mu.Lock()
	e.instances = append(e.instances, inst)
	e.mu.Unlock()
	return inst, nil
}

func (e *fakeEngine) last() *fakeInstance {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.instances) == 0 {
		return nil
	}
	return e.instances[len(e.instances)-1]
}

type fakeInstance struct {
	fail    error
	url     string
	cookies []*http.Cookie
	content string
	closed  bool
}

func (f *fakeInstance) Navigate(_ context.Context, url string, cookies []*http.Cookie) error {
	f.url = url
	f.cookies = cookies
	return f.fail
}

func (f *fakeInstance) SetContent(_ context.Context, html string) error {
	f.content = html
	return f.fail
}

func (f *fakeInstance) WaitMarker(context.Context, string) error { return nil }

func (f *fakeInstance) IsolateMarker(context.Context, string, int, int) error { return nil }

func (f *fakeInstance) Print(context.Context, document.PrintOptions) ([]byte, error) {
	return []byte("%PDF-1.4 test document"), nil
}

func (f *fakeInstance) Close() error {
	f.closed = true
	return nil
}

// memRepo is an in-memory ResumeRepository.
type memRepo struct {
	mu      sync.Mutex
	nextID  int64
	records map[uuid.UUID][]types.ResumeRecord
	listErr error
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[uuid.UUID][]types.ResumeRecord)}
}

// seed stores a record directly, newest last.
func (m *memRepo) seed(owner uuid.UUID, templateID, data string) types.ResumeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := time.Now().Add(time.Duration(m.nextID) * time.Second)
	rec := types.ResumeRecord{ID: m.nextID, OwnerID: owner, TemplateID: templateID, Data: data, CreatedAt: now, UpdatedAt: now}
	m.records[owner] = append(m.records[owner], rec)
	return rec
}

func (m *memRepo) ListResumes(_ context.Context, owner uuid.UUID) ([]types.ResumeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := slices.Clone(m.records[owner])
	slices.Reverse(out)
	if out == nil {
		out = []types.ResumeRecord{}
	}
	return out, nil
}

func (m *memRepo) GetResume(_ context.Context, owner uuid.UUID, id int64) (*types.ResumeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records[owner] {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memRepo) UpsertResume(_ context.Context, owner uuid.UUID, templateID, data string) (*types.ResumeRecord, error) {
	m.mu.Lock()
	recs := m.records[owner]
	if n := len(recs); n > 0 {
		recs[n-1].TemplateID = templateID
		recs[n-1].Data = data
		recs[n-1].UpdatedAt = time.Now()
		rec := recs[n-1]
		m.mu.Unlock()
		return &rec, nil
	}
	m.mu.Unlock()
	rec := m.seed(owner, templateID, data)
	return &rec, nil
}

func (m *memRepo) DeleteResume(_ context.Context, owner uuid.UUID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.records[owner]
	i := slices.IndexFunc(recs, func(r types.ResumeRecord) bool { return r.ID == id })
	if i < 0 {
		return &db.ResumeNotFoundError{OwnerID: owner, ID: id}
	}
	m.records[owner] = slices.Delete(recs, i, i+1)
	return nil
}

type testServer struct {
	*Server
	engine *fakeEngine
	repo   *memRepo
}

// newTestServer builds a server with a fake engine. A nil repo disables persistence.
func newTestServer(t *testing.T, repo *memRepo) *testServer {
	t.Helper()
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg := &config.ServerConfig{
		Port:          8080,
		JWT:           &config.JWTConfig{},
		PreviewURL:    "http://localhost:8080/profile/cvmaker",
		StylesheetURL: "https://cdn.example.com/tw.js",
		CookieName:    "token",
	}
	engine := &fakeEngine{}
	deps := Deps{Engine: engine}
	if repo != nil {
		deps.Resumes = repo
	}
	s, err := NewWithDeps(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return &testServer{Server: s, engine: engine, repo: repo}
}

// tokenFor returns a token for a user. The test server does not verify signatures.
func tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	return signClaims(t, map[string]any{
		"sub":       userID.String(),
		"profileId": userID.String()[:8],
		"email":     "jane@example.com",
		"roles":     []string{"ROLE_APPLICANT"},
	})
}

func signClaims(t *testing.T, claims map[string]any) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString([]byte("issuer-secret"))
	require.NoError(t, err)
	return token
}

// do sends a request through the full middleware chain. A non-empty token is sent as cookie.
func (ts *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	w := httptest.NewRecorder()
	ts.httpServer.Handler.ServeHTTP(w, req)
	return w
}

func sampleResume(first string) *types.ResumeData {
	d := types.NewResumeData()
	d.FirstName = first
	d.LastName = "Doe"
	d.JobTitle = "Engineer"
	d.Contact.Email = "jane@example.com"
	d.Skills = []types.Skill{{ID: "s1", Name: "Go", Level: 90}}
	d.WorkExperience = []types.WorkExperience{{
		ID: "w1", JobTitle: "Developer", Company: "Acme", StartDate: "2020", EndDate: "2024",
		Responsibilities: []string{"Built things"},
	}}
	return d
}

func serialized(t *testing.T, d *types.ResumeData) string {
	t.Helper()
	s, err := types.Serialize(d)
	require.NoError(t, err)
	return s
}

var errBackendDown = errors.New("connection refused")
