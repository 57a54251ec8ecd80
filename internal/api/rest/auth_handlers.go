package rest

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/clintrovert/jirabridge/internal/auth"
	"github.com/clintrovert/jirabridge/pkg/types"
)

// LoginRequest carries a credential for either authentication path.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// LoginResponse carries the minted session token.
type LoginResponse struct {
	Token string `json:"token"`
}

// SignupRequest carries the registration fields for a local user.
type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupResponse reports the outcome of a registration attempt.
type SignupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Name    string `json:"name,omitempty"`
}

// LoginJira handles POST /login: Jira-delegated authentication.
func (h *Handler) LoginJira(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogin(w, r)
	if !ok {
		return
	}

	token, err := h.orchestrator.LoginJira(r.Context(), req.Identifier, req.Secret)
	if err != nil {
		h.writeLoginFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// LoginLocal handles POST /local/login: local-store authentication. The
// identifier is the registered email.
func (h *Handler) LoginLocal(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogin(w, r)
	if !ok {
		return
	}

	token, err := h.orchestrator.LoginLocal(r.Context(), req.Identifier, req.Secret)
	if err != nil {
		h.writeLoginFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// Signup handles POST /signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email, username, and password are required")
		return
	}

	user, err := h.orchestrator.Signup(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeJSON(w, http.StatusBadRequest, SignupResponse{
				Success: false,
				Message: "failed to create user",
			})
			return
		}
		h.logger.Error("signup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, SignupResponse{
		Success: true,
		Message: "user created successfully",
		Name:    user.Username,
	})
}

func decodeLogin(w http.ResponseWriter, r *http.Request) (LoginRequest, bool) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return LoginRequest{}, false
	}
	if req.Identifier == "" || req.Secret == "" {
		writeError(w, http.StatusBadRequest, "identifier and secret are required")
		return LoginRequest{}, false
	}
	return req, true
}

// writeLoginFailure maps authentication errors to responses without leaking
// the cause.
func (h *Handler) writeLoginFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	h.logger.Error("login failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// callerCredential extracts an optional pass-through Jira credential from the
// X-Jira-Authorization header. A missing or malformed header means the call
// runs under the service account.
func callerCredential(r *http.Request) *types.Credential {
	header := r.Header.Get("X-Jira-Authorization")

	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return nil
	}

	identifier, secret, ok := strings.Cut(string(raw), ":")
	if !ok {
		return nil
	}

	return &types.Credential{Identifier: identifier, Secret: secret}
}
