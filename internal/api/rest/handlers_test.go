package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/jirabridge/internal/auth"
	"github.com/clintrovert/jirabridge/internal/jira"
	"github.com/clintrovert/jirabridge/internal/store"
	"github.com/clintrovert/jirabridge/internal/usersync"
	"github.com/clintrovert/jirabridge/pkg/types"
)

// fakeJira serves just enough of the upstream API for the surface tests:
// basic-auth checked /myself, an admin user lookup, and a forbidden project
// list.
func fakeJira(t *testing.T) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/api/2/myself":
			username, password, ok := r.BasicAuth()
			valid := ok && ((username == "alice" && password == "s3cret") ||
				(username == "svc" && password == "token"))
			if !valid {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"name":"svc","displayName":"Service","active":true}`)
		case "/rest/api/2/user":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"name":"alice","displayName":"Alice Doe","emailAddress":"alice@example.com","active":true}`)
		case "/rest/api/2/project":
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	return ts
}

type testEnv struct {
	api    *httptest.Server
	tokens *auth.TokenService
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	upstream := fakeJira(t)
	logger := zap.NewNop()

	gateway, err := jira.NewClient(upstream.URL, types.Credential{Identifier: "svc", Secret: "token"}, logger)
	require.NoError(t, err)

	users := store.NewMemoryLocalUsers()
	mirror := store.NewMemoryMirror()
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	validator := jira.NewValidator(upstream.URL, logger)
	orchestrator := auth.NewOrchestrator(validator, gateway, users, tokens, logger)
	syncService := usersync.NewService(users, mirror, logger)

	handler := NewHandler(orchestrator, gateway, syncService, mirror, tokens, logger)

	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})

	api := httptest.NewServer(router)
	t.Cleanup(api.Close)

	return testEnv{api: api, tokens: tokens}
}

func (e testEnv) postJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(e.api.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func (e testEnv) getAuthed(t *testing.T, path, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, e.api.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestJiraLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/login", LoginRequest{Identifier: "alice", Secret: "wrongpass"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	require.Equal(t, "invalid credentials", body["error"])
	require.Empty(t, body["token"])
}

func TestJiraLoginIssuesVerifiableToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/login", LoginRequest{Identifier: "alice", Secret: "s3cret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body LoginResponse
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)

	subject, err := env.tokens.Verify(body.Token)
	require.NoError(t, err)
	require.Equal(t, "Alice Doe", subject)
}

func TestSignupThenLocalLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/signup", SignupRequest{
		Email:    "bob@example.com",
		Username: "bob",
		Password: "hunter2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created SignupResponse
	decodeBody(t, resp, &created)
	require.True(t, created.Success)
	require.Equal(t, "bob", created.Name)

	resp = env.postJSON(t, "/api/v1/local/login", LoginRequest{Identifier: "bob@example.com", Secret: "hunter2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login LoginResponse
	decodeBody(t, resp, &login)

	subject, err := env.tokens.Verify(login.Token)
	require.NoError(t, err)
	require.Equal(t, "bob", subject)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/signup", SignupRequest{Email: "bob@example.com", Username: "bob", Password: "x"})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.postJSON(t, "/api/v1/signup", SignupRequest{Email: "bob@example.com", Username: "bob2", Password: "y"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body SignupResponse
	decodeBody(t, resp, &body)
	require.False(t, body.Success)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.getAuthed(t, "/api/v1/jira/projects", "")
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.getAuthed(t, "/api/v1/jira/projects", "not-a-real-token")
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListProjectsForbiddenUpstreamYieldsEmptyList(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.tokens.Issue("alice")
	require.NoError(t, err)

	resp := env.getAuthed(t, "/api/v1/jira/projects", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var projects []types.Project
	decodeBody(t, resp, &projects)
	require.NotNil(t, projects)
	require.Empty(t, projects)
}

func TestSyncEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, user := range []SignupRequest{
		{Email: "a@example.com", Username: "a", Password: "pw"},
		{Email: "b@example.com", Username: "b", Password: "pw"},
	} {
		resp := env.postJSON(t, "/api/v1/signup", user)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	token, err := env.tokens.Issue("admin")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, env.api.URL+"/api/v1/sync/mirror", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var mirrored SyncResponse
	decodeBody(t, resp, &mirrored)
	require.Equal(t, 2, mirrored.Count)

	// The mirror listing reflects the sync.
	resp = env.getAuthed(t, "/api/v1/users", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var mirrors []types.JiraUserMirror
	decodeBody(t, resp, &mirrors)
	require.Len(t, mirrors, 2)

	req, err = http.NewRequest(http.MethodPost, env.api.URL+"/api/v1/sync/import", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)

	var imported SyncResponse
	decodeBody(t, resp, &imported)
	require.Equal(t, 2, imported.Count)
}

func TestLookupUserRequiresUsername(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.tokens.Issue("alice")
	require.NoError(t, err)

	resp := env.getAuthed(t, "/api/v1/jira/users", token)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.getAuthed(t, "/api/v1/jira/users?username=alice", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user types.JiraUser
	decodeBody(t, resp, &user)
	require.Equal(t, "Alice Doe", user.DisplayName)
}
