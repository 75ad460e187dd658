package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wsauth/internal/dbclient"
	"github.com/dmitrijs2005/wsauth/internal/logging"
)

func TestIPLimiter_Burst(t *testing.T) {
	l := newIPLimiter(1, 2, time.Minute)
	now := time.Now()

	assert.True(t, l.Allow("10.0.0.1", now))
	assert.True(t, l.Allow("10.0.0.1", now))
	assert.False(t, l.Allow("10.0.0.1", now))
	// Other clients have their own bucket.
	assert.True(t, l.Allow("10.0.0.2", now))
	// One token refills after a second.
	assert.True(t, l.Allow("10.0.0.1", now.Add(time.Second)))
}

func TestIPLimiter_EvictsIdle(t *testing.T) {
	l := newIPLimiter(100, 1, time.Minute)
	now := time.Now()
	for i := 0; i < 511; i++ {
		l.Allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256), now)
	}
	require.Equal(t, 511, l.size())

	l.Allow("10.9.9.9", now.Add(2*time.Minute))
	assert.Equal(t, 1, l.size())
}

func TestIPLimiter_Disabled(t *testing.T) {
	l := newIPLimiter(0, 0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow("k", time.Now()))
	}
}

func TestRouter_RateLimitsAuthOnly(t *testing.T) {
	h := NewRouter(NewHandlers(&fakeAuth{}, fixedState(dbclient.Connected), logging.Discard()), Options{RateLimit: 0.001, RateBurst: 1})

	send := func(path, method string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("/auth/register", http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, send("/auth/login", http.MethodPost))
	assert.Equal(t, http.StatusOK, send("/health", http.MethodGet))
}
