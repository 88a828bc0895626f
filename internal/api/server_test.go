package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/eduindia/internal/agents"
	"github.com/abhisek/eduindia/internal/dispatch"
	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/lesson"
	"github.com/abhisek/eduindia/internal/llm"
	"github.com/abhisek/eduindia/internal/revision"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, p llm.Provider) http.Handler {
	t.Helper()
	return newTestAPI(t, p, 0).Routes()
}

func newTestAPI(t *testing.T, p llm.Provider, ttl time.Duration) *Server {
	t.Helper()
	st, err := learner.NewStore(learner.DefaultSeeds())
	require.NoError(t, err)

	cfg := agents.DefaultConfig()
	questions := agents.NewQuestionSetter(p, cfg, nil)
	d := dispatch.New(dispatch.Deps{
		Store: st,
		Lessons: lesson.NewOrchestrator(agents.NewExplainer(p, cfg, nil),
			agents.NewLocalizer(p, cfg, nil), questions, nil),
		Scheduler: revision.NewScheduler(p, cfg, 0, nil),
		Questions: questions,
		Grader:    agents.NewGrader(p, cfg, nil),
	})
	return NewServer(d, ttl, nil)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, h http.Handler, body any) sessionResponse {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/sessions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp
}

func TestHealthzAndProfiles(t *testing.T) {
	h := newTestServer(t, llm.NewMockProvider())

	w := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/api/profiles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profiles []learner.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profiles))
	require.Len(t, profiles, 2)
	assert.Equal(t, "Kannada", profiles[0].Language)
}

func TestQuizOverHTTP(t *testing.T) {
	p := llm.NewScriptedProvider().
		On(llm.PurposeQuestion, llm.JSONReply(`{"question":"Why rotate crops?","answer":"To keep soil fertile."}`)).
		On(llm.PurposeGrade, llm.JSONReply(`{"score":3,"feedback":"Spot on.","mastery_increment":3}`))
	h := newTestServer(t, p)

	sess := createSession(t, h, map[string]string{"profile_id": "rural-maharashtra"})
	assert.Equal(t, "rural-maharashtra", sess.Profile.ID)
	base := "/api/sessions/" + sess.SessionID

	w := do(t, h, http.MethodPost, base+"/messages", messageRequest{Query: "test me on crop rotation"})
	require.Equal(t, http.StatusOK, w.Code)
	var res dispatch.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Contains(t, res.Response, "Why rotate crops?")
	assert.NotContains(t, w.Body.String(), "keep soil fertile", "the expected answer never leaves the server")
	assert.NotEmpty(t, res.Trace)

	w = do(t, h, http.MethodGet, base+"/profile", nil)
	var snap learner.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.True(t, snap.AwaitingAnswer)
	assert.Equal(t, "crop rotation", snap.PendingConcept)

	w = do(t, h, http.MethodPost, base+"/messages", messageRequest{Query: "It keeps the soil healthy"})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, dispatch.IntentLabelAnswer, res.Intent)
	assert.Contains(t, res.Response, "MASTERY LEVEL UP")

	w = do(t, h, http.MethodGet, base+"/profile", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 4, snap.MasteryScore)
	assert.False(t, snap.AwaitingAnswer)
}

func TestSelectProfile(t *testing.T) {
	h := newTestServer(t, llm.NewMockProvider())
	sess := createSession(t, h, nil)
	assert.Equal(t, "urban-bengaluru", sess.Profile.ID)
	path := "/api/sessions/" + sess.SessionID + "/profile"

	w := do(t, h, http.MethodPut, path, selectProfileRequest{ProfileID: "nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPut, path, selectProfileRequest{ProfileID: "rual"})
	require.Equal(t, http.StatusNotFound, w.Code)
	var notFound struct {
		Error       string   `json:"error"`
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notFound))
	assert.Equal(t, []string{"rural-maharashtra"}, notFound.Suggestions)
	assert.Contains(t, notFound.Error, "did you mean rural-maharashtra?")

	w = do(t, h, http.MethodPut, path, selectProfileRequest{ProfileID: "rural-maharashtra"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp selectProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rural-maharashtra", resp.Profile.ID)
	assert.True(t, resp.ResetTranscript)
}

func TestErrors(t *testing.T) {
	h := newTestServer(t, llm.NewMockProvider())

	w := do(t, h, http.MethodPost, "/api/sessions/unknown/messages", messageRequest{Query: "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/api/sessions", map[string]string{"profile_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	sess := createSession(t, h, nil)
	w = do(t, h, http.MethodPost, "/api/sessions/"+sess.SessionID+"/messages", messageRequest{Query: "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodDelete, "/api/sessions/"+sess.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodGet, "/api/sessions/"+sess.SessionID+"/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionsExpireWhenIdle(t *testing.T) {
	srv := newTestAPI(t, llm.NewMockProvider(), time.Hour)
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return clock }
	h := srv.Routes()

	idle := createSession(t, h, map[string]string{"profile_id": "rural-maharashtra"})
	busy := createSession(t, h, nil)

	clock = clock.Add(50 * time.Minute)
	w := do(t, h, http.MethodGet, "/api/sessions/"+busy.SessionID+"/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	clock = clock.Add(20 * time.Minute)
	assert.Equal(t, 1, srv.Sweep())
	assert.Equal(t, 0, srv.Sweep())

	w = do(t, h, http.MethodGet, "/api/sessions/"+idle.SessionID+"/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "urban-bengaluru", srv.dispatcher.Store().ActiveID(idle.SessionID),
		"the expired session's profile selection is forgotten")

	w = do(t, h, http.MethodGet, "/api/sessions/"+busy.SessionID+"/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExpiredSessionRejectedBeforeSweep(t *testing.T) {
	srv := newTestAPI(t, llm.NewMockProvider(), time.Minute)
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return clock }
	h := srv.Routes()

	sess := createSession(t, h, nil)
	clock = clock.Add(2 * time.Minute)

	w := do(t, h, http.MethodPost, "/api/sessions/"+sess.SessionID+"/messages", map[string]string{"query": "hello"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
