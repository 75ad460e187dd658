package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wsauth/internal/dbclient"
	"github.com/dmitrijs2005/wsauth/internal/logging"
	"github.com/dmitrijs2005/wsauth/internal/metrics"
	"github.com/dmitrijs2005/wsauth/internal/server/auth"
	"github.com/dmitrijs2005/wsauth/internal/server/config"
	"github.com/dmitrijs2005/wsauth/internal/server/repositories/repomanager"
	tokensrepo "github.com/dmitrijs2005/wsauth/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/wsauth/internal/server/tokens"
	"github.com/dmitrijs2005/wsauth/internal/server/users"
	"github.com/dmitrijs2005/wsauth/internal/testutil/actorstub"
)

func newLiveRouter(t *testing.T) (http.Handler, *prometheus.Registry) {
	t.Helper()
	var cfg config.Config
	cfg.LoadDefaults()

	actor := actorstub.New(actorstub.ModeTables, nil)
	issuer := tokens.NewIssuer(tokensrepo.NewActorRepository(actor), []byte("k"))
	hasher := auth.NewArgon2Hasher(auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

	reg := prometheus.NewRegistry()
	mtr := metrics.New(reg)
	svc := users.NewService(actor, repomanager.NewActorRepositoryManager(), hasher, issuer, users.NewLogMailer(logging.Discard()), &cfg, logging.Discard(), mtr)

	h := NewHandlers(svc, fixedState(dbclient.Connected), logging.Discard())
	return NewRouter(h, Options{Metrics: mtr, Gatherer: reg}), reg
}

func TestRouter_Workflows(t *testing.T) {
	h, _ := newLiveRouter(t)

	rec := do(t, h, http.MethodPost, "/auth/register", `{"email":"a@b.com","username":"a","password":"p1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/register", `{"email":"a@b.com","username":"a","password":"p1"}`, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/login", `{"identifier":"a@b.com","password":"bad"}`, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/login", `{"username":"nobody","password":"p1"}`, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/login", `{"username":"a","password":"p1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tok tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.Token)

	rec = do(t, h, http.MethodPost, "/auth/send_verify_email", "", http.Header{"Authorization": {"Bearer " + tok.Token}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sent":true}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/auth/send_verify_email", "", http.Header{"Authorization": {"Bearer " + tok.Token + "x"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	bearer := http.Header{"Authorization": {"Bearer " + tok.Token}}
	rec = do(t, h, http.MethodPost, "/auth/logout", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPost, "/auth/send_verify_email", "", bearer)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	h, _ := newLiveRouter(t)

	do(t, h, http.MethodGet, "/health", "", nil)
	rec := do(t, h, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/health"`)
}
