package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clintrovert/jirabridge/internal/auth"
	"github.com/clintrovert/jirabridge/internal/jira"
	"github.com/clintrovert/jirabridge/internal/store"
	"github.com/clintrovert/jirabridge/internal/usersync"
)

// Handler handles REST API requests.
type Handler struct {
	orchestrator *auth.Orchestrator
	gateway      *jira.Client
	syncService  *usersync.Service
	mirror       store.MirrorRepository
	tokens       *auth.TokenService
	logger       *zap.Logger
}

// NewHandler creates a new REST handler.
func NewHandler(
	orchestrator *auth.Orchestrator,
	gateway *jira.Client,
	syncService *usersync.Service,
	mirror store.MirrorRepository,
	tokens *auth.TokenService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		gateway:      gateway,
		syncService:  syncService,
		mirror:       mirror,
		tokens:       tokens,
		logger:       logger,
	}
}

// RegisterRoutes registers REST API routes. Everything except login and
// signup requires a valid bearer token.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.LoginJira)
	r.Post("/local/login", h.LoginLocal)
	r.Post("/signup", h.Signup)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.tokens, h.logger))

		r.Route("/jira", func(r chi.Router) {
			r.Get("/projects", h.ListProjects)
			r.Get("/projects/{projectKey}", h.GetProject)
			r.Get("/issues", h.ListIssues)
			r.Get("/issues/search", h.SearchIssues)
			r.Get("/issues/{issueKey}", h.GetIssue)
			r.Get("/users", h.LookupUser)
			r.Get("/users/search", h.SearchUsers)
			r.Get("/status", h.Status)
			r.Get("/server-info", h.ServerInfo)
		})

		r.Get("/users", h.ListMirrorUsers)
		r.Post("/sync/mirror", h.SyncMirror)
		r.Post("/sync/import", h.SyncImport)
	})
}

// ListProjects handles GET /jira/projects. A search parameter narrows the
// list by key or name.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	cred := callerCredential(r)

	if term := r.URL.Query().Get("search"); term != "" {
		writeJSON(w, http.StatusOK, h.gateway.SearchProjects(term, cred))
		return
	}

	writeJSON(w, http.StatusOK, h.gateway.ListProjects(cred))
}

// GetProject handles GET /jira/projects/{projectKey}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "projectKey")

	project, err := h.gateway.GetProject(key, callerCredential(r))
	if err != nil {
		if errors.Is(err, jira.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "upstream error")
		return
	}

	writeJSON(w, http.StatusOK, project)
}

// ListIssues handles GET /jira/issues with optional startAt/maxResults.
func (h *Handler) ListIssues(w http.ResponseWriter, r *http.Request) {
	startAt := queryInt(r, "startAt", 0)
	maxResults := queryInt(r, "maxResults", 50)
	writeJSON(w, http.StatusOK, h.gateway.ListIssues(startAt, maxResults))
}

// SearchIssues handles GET /jira/issues/search. A raw jql parameter wins;
// project, assignee, status, and text are convenience filters.
func (h *Handler) SearchIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	switch {
	case q.Get("jql") != "":
		writeJSON(w, http.StatusOK, h.gateway.SearchIssues(q.Get("jql")))
	case q.Get("project") != "":
		writeJSON(w, http.StatusOK, h.gateway.IssuesByProject(q.Get("project")))
	case q.Get("assignee") != "":
		writeJSON(w, http.StatusOK, h.gateway.IssuesByAssignee(q.Get("assignee")))
	case q.Get("status") != "":
		writeJSON(w, http.StatusOK, h.gateway.IssuesByStatus(q.Get("status")))
	default:
		writeJSON(w, http.StatusOK, h.gateway.SearchIssuesByText(q.Get("text")))
	}
}

// GetIssue handles GET /jira/issues/{issueKey}.
func (h *Handler) GetIssue(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "issueKey")

	issue, err := h.gateway.GetIssue(key)
	if err != nil {
		if errors.Is(err, jira.ErrNotFound) {
			writeError(w, http.StatusNotFound, "issue not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "upstream error")
		return
	}

	writeJSON(w, http.StatusOK, issue)
}

// LookupUser handles GET /jira/users?username=.
func (h *Handler) LookupUser(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	user, err := h.gateway.UserByName(username)
	if err != nil {
		if errors.Is(err, jira.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "upstream error")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// SearchUsers handles GET /jira/users/search?query=.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	user, err := h.gateway.UserByEmail(query)
	if err != nil {
		if errors.Is(err, jira.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "upstream error")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// StatusResponse reports upstream connectivity.
type StatusResponse struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}

// Status handles GET /jira/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	connected := h.gateway.TestConnection()

	message := "jira connection failed"
	if connected {
		message = "jira connection successful"
	}

	writeJSON(w, http.StatusOK, StatusResponse{Connected: connected, Message: message})
}

// ServerInfo handles GET /jira/server-info.
func (h *Handler) ServerInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.gateway.ServerInfo()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "upstream error")
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// ListMirrorUsers handles GET /users.
func (h *Handler) ListMirrorUsers(w http.ResponseWriter, r *http.Request) {
	mirrors, err := h.mirror.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list mirror users", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, mirrors)
}

// SyncResponse reports the row count a sync direction touched.
type SyncResponse struct {
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// SyncMirror handles POST /sync/mirror.
func (h *Handler) SyncMirror(w http.ResponseWriter, r *http.Request) {
	count, err := h.syncService.MirrorToJira(r.Context())
	if err != nil {
		h.logger.Error("mirror sync failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, SyncResponse{
		Count:   count,
		Message: "mirror sync completed",
	})
}

// SyncImport handles POST /sync/import.
func (h *Handler) SyncImport(w http.ResponseWriter, r *http.Request) {
	count, err := h.syncService.ImportFromJira(r.Context())
	if err != nil {
		h.logger.Error("import sync failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, SyncResponse{
		Count:   count,
		Message: "user sync completed",
	})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func trimmedBearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
