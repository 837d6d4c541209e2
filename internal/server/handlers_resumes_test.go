package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/cvmaker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordEnvelope struct {
	Data   types.ResumeRecord `json:"data"`
	Status types.Status       `json:"status"`
}

type listEnvelope struct {
	Data   []types.ResumeRecord `json:"data"`
	Status types.Status         `json:"status"`
}

func upsertBody(t *testing.T, templateID string, d *types.ResumeData) string {
	t.Helper()
	b, err := json.Marshal(types.UpsertResumeRequest{TemplateID: templateID, Data: serialized(t, d)})
	require.NoError(t, err)
	return string(b)
}

func TestResumes_RequireToken(t *testing.T) {
	ts := newTestServer(t, newMemRepo())

	w := ts.do(t, http.MethodGet, "/resumes", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/resumes", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResumes_PersistenceDisabled(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/resumes", "", tokenFor(t, uuid.New()))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var env types.Envelope[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, CodeUnavailable, env.Status.Code)
}

func TestUpsertResume_CreatesThenReplaces(t *testing.T) {
	repo := newMemRepo()
	ts := newTestServer(t, repo)
	token := tokenFor(t, uuid.New())

	w := ts.do(t, http.MethodPost, "/resumes", upsertBody(t, "ui2", sampleResume("Jane")), token)
	require.Equal(t, http.StatusCreated, w.Code)

	var created recordEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, types.StatusSuccess, created.Status.Code)
	assert.Equal(t, "Request processed successfully", created.Status.Message)
	assert.Equal(t, "ui2", created.Data.TemplateID)

	w = ts.do(t, http.MethodPost, "/resumes", upsertBody(t, "ui4", sampleResume("Janet")), token)
	require.Equal(t, http.StatusCreated, w.Code)

	var replaced recordEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &replaced))
	assert.Equal(t, created.Data.ID, replaced.Data.ID)
	assert.Equal(t, "ui4", replaced.Data.TemplateID)

	data, err := types.Deserialize(replaced.Data.Data)
	require.NoError(t, err)
	assert.Equal(t, "Janet", data.FirstName)
}

func TestUpsertResume_Invalid(t *testing.T) {
	ts := newTestServer(t, newMemRepo())
	token := tokenFor(t, uuid.New())

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"templateId":`},
		{"missing template", `{"data":"{}"}`},
		{"missing data", `{"templateId":"ui1"}`},
		{"data not a resume", `{"templateId":"ui1","data":"{\"firstName\":\"Jane\"}"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/resumes", tt.body, token)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var env types.Envelope[any]
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.Equal(t, CodeValidation, env.Status.Code)
			assert.Nil(t, env.Data)
		})
	}
}

func TestUpsertResume_RejectsBrokenInvariants(t *testing.T) {
	repo := newMemRepo()
	ts := newTestServer(t, repo)
	owner := uuid.New()
	token := tokenFor(t, owner)

	dup := sampleResume("Jane")
	dup.Skills = []types.Skill{{ID: "s1", Name: "Go", Level: 80}, {ID: "s1", Name: "Rust", Level: 70}}

	w := ts.do(t, http.MethodPost, "/resumes", upsertBody(t, "ui1", dup), token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env types.Envelope[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, CodeValidation, env.Status.Code)
	assert.Contains(t, env.Status.Message, `duplicate id "s1" in skills`)

	high := sampleResume("Jane")
	high.Skills = []types.Skill{{ID: "a", Name: "Go", Level: 500}}
	w = ts.do(t, http.MethodPost, "/resumes", upsertBody(t, "ui1", high), token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/resumes", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var list listEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Data, "nothing is stored")
}

func TestListResumes_NewestFirst(t *testing.T) {
	repo := newMemRepo()
	ts := newTestServer(t, repo)
	owner := uuid.New()
	older := repo.seed(owner, "ui1", serialized(t, sampleResume("Old")))
	newer := repo.seed(owner, "ui3", serialized(t, sampleResume("New")))

	w := ts.do(t, http.MethodGet, "/resumes", "", tokenFor(t, owner))
	require.Equal(t, http.StatusOK, w.Code)

	var env listEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, newer.ID, env.Data[0].ID)
	assert.Equal(t, older.ID, env.Data[1].ID)
	assert.Equal(t, owner, env.Data[0].OwnerID)
}

func TestListResumes_EmptyIsArray(t *testing.T) {
	ts := newTestServer(t, newMemRepo())

	w := ts.do(t, http.MethodGet, "/resumes", "", tokenFor(t, uuid.New()))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"status":{"code":"SUCCESS","message":"Request processed successfully"}}`, w.Body.String())
}

func TestGetResume(t *testing.T) {
	repo := newMemRepo()
	ts := newTestServer(t, repo)
	owner := uuid.New()
	rec := repo.seed(owner, "ui5", serialized(t, sampleResume("Jane")))

	w := ts.do(t, http.MethodGet, fmt.Sprintf("/resumes/%d", rec.ID), "", tokenFor(t, owner))
	require.Equal(t, http.StatusOK, w.Code)

	var env recordEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "ui5", env.Data.TemplateID)

	w = ts.do(t, http.MethodGet, "/resumes/999", "", tokenFor(t, owner))
	require.Equal(t, http.StatusNotFound, w.Code)
	var missing types.Envelope[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &missing))
	assert.Equal(t, CodeNotFound, missing.Status.Code)
	assert.Equal(t, "Resume not found with id: 999", missing.Status.Message)
}

func TestResumes_ScopedToOwner(t *testing.T) {
	repo := newMemRepo()
	ts := newTestServer(t, repo)
	owner := uuid.New()
	rec := repo.seed(owner, "ui1", serialized(t, sampleResume("Jane")))
	other := tokenFor(t, uuid.New())

	w := ts.do(t, http.MethodGet, fmt.Sprintf("/resumes/%d", rec.ID), "", other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/resumes/%d", rec.ID), "", other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/resumes", "", other)
	assert.JSONEq(t, `[]`, mustData(t, w.Body.Bytes()))
}

func TestDeleteResume(t *testing.T) {
	repo := newMemRepo()
	ts := newTestServer(t, repo)
	owner := uuid.New()
	rec := repo.seed(owner, "ui1", serialized(t, sampleResume("Jane")))
	token := tokenFor(t, owner)
	path := fmt.Sprintf("/resumes/%d", rec.ID)

	w := ts.do(t, http.MethodDelete, path, "", token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = ts.do(t, http.MethodDelete, path, "", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResumes_BadID(t *testing.T) {
	ts := newTestServer(t, newMemRepo())
	token := tokenFor(t, uuid.New())

	for _, id := range []string{"abc", "0", "-4"} {
		w := ts.do(t, http.MethodGet, "/resumes/"+id, "", token)
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
	}
}

func TestResumes_VersionedPrefix(t *testing.T) {
	repo := newMemRepo()
	ts := newTestServer(t, repo)
	token := tokenFor(t, uuid.New())

	w := ts.do(t, http.MethodPost, "/api/v1/resumes", upsertBody(t, "ui1", sampleResume("Jane")), token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/resumes", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	var env listEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Len(t, env.Data, 1)
}

func TestResumes_TokenWithoutUserSubject(t *testing.T) {
	ts := newTestServer(t, newMemRepo())
	token := signClaims(t, map[string]any{"profileId": 42})

	w := ts.do(t, http.MethodGet, "/resumes", "", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func mustData(t *testing.T, body []byte) string {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	return string(env.Data)
}
