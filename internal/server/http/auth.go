package http

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/wsauth/internal/server/users"
)

type tokenResponse struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Sent bool `json:"sent"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in users.RegisterRequest
	if err := decodeStrict(w, r, &in); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := h.auth.Register(r.Context(), in); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in users.LoginRequest
	if err := decodeStrict(w, r, &in); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	token, err := h.auth.Login(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *Handlers) SendVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token, ok := requireBearer(w, r)
	if !ok {
		return
	}

	sent, err := h.auth.SendVerifyEmail(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{Sent: sent})
}

// Logout revokes the caller's bearer token.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := requireBearer(w, r)
	if !ok {
		return
	}

	if err := h.auth.Logout(r.Context(), token); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// requireBearer answers 401 when the Authorization header is absent and 400
// when it is not a bearer token.
func requireBearer(w http.ResponseWriter, r *http.Request) (string, bool) {
	header, ok := r.Header["Authorization"]
	if !ok || len(header) == 0 {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Authorization header missing", Code: "unauthorized"})
		return "", false
	}
	token, ok := bearerToken(header[0])
	if !ok {
		writeBadRequest(w, "malformed Authorization header")
		return "", false
	}
	return token, true
}

// bearerToken extracts the token of a "Bearer <token>" header value. The
// value must be printable ASCII.
func bearerToken(v string) (string, bool) {
	for i := 0; i < len(v); i++ {
		if v[i] < 0x20 || v[i] > 0x7e {
			return "", false
		}
	}
	scheme, token, found := strings.Cut(strings.TrimSpace(v), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
