// Package http exposes the account workflows and the service health over a
// chi router.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/wsauth/internal/dbclient"
	"github.com/dmitrijs2005/wsauth/internal/logging"
	"github.com/dmitrijs2005/wsauth/internal/server/users"
)

// maxBodyBytes bounds request bodies; the largest legal one is a few hundred bytes.
const maxBodyBytes = 64 << 10

type AuthService interface {
	Register(ctx context.Context, req users.RegisterRequest) error
	Login(ctx context.Context, req users.LoginRequest) (string, error)
	SendVerifyEmail(ctx context.Context, token string) (bool, error)
	Logout(ctx context.Context, token string) error
}

// StateSource reports the database actor connection state.
type StateSource interface {
	State() dbclient.State
}

type Handlers struct {
	auth   AuthService
	db     StateSource
	logger logging.Logger
}

func NewHandlers(auth AuthService, db StateSource, logger logging.Logger) *Handlers {
	return &Handlers{auth: auth, db: db, logger: logger.With("module", "http")}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if value != nil {
		_ = json.NewEncoder(w).Encode(value)
	}
}

// decodeStrict rejects unknown fields and trailing data.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}
