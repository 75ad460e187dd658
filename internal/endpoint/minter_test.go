package endpoint

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMinter_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewMinter("http://db:9000/ws", []byte("k"), time.Hour)
	assert.Error(t, err)

	_, err = NewMinter("ws://db:9000/ws", nil, time.Hour)
	assert.Error(t, err)

	m, err := NewMinter("wss://db:9000/ws", []byte("k"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, m.ttl)
}

func TestMinter_Endpoint(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	m, err := NewMinter("ws://db:9000/ws?tenant=a", secret, time.Hour)
	require.NoError(t, err)

	issued := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return issued }

	raw, err := m.Endpoint()
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "ws", u.Scheme)
	assert.Equal(t, "db:9000", u.Host)
	assert.Equal(t, "/ws", u.Path)
	assert.Equal(t, "a", u.Query().Get("tenant"))

	token := u.Query().Get("token")
	require.NotEmpty(t, token)

	// The fixed clock is in the past, so validation must skip expiry.
	m.now = time.Now
	fresh, err := m.Endpoint()
	require.NoError(t, err)
	fu, _ := url.Parse(fresh)
	claims, err := ParseToken(fu.Query().Get("token"), secret)
	require.NoError(t, err)
	assert.Equal(t, claims.ExpiresAt.Unix()-claims.Timestamp, int64(time.Hour/time.Second))
}

func TestMinter_TokensDifferPerCycle(t *testing.T) {
	t.Parallel()

	m, err := NewMinter("ws://db/ws", []byte("k"), time.Hour)
	require.NoError(t, err)

	tick := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { tick = tick.Add(time.Second); return tick }

	a, err := m.Endpoint()
	require.NoError(t, err)
	b, err := m.Endpoint()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	m, err := NewMinter("ws://db/ws", []byte("right"), time.Hour)
	require.NoError(t, err)
	raw, err := m.Endpoint()
	require.NoError(t, err)
	u, _ := url.Parse(raw)

	_, err = ParseToken(u.Query().Get("token"), []byte("wrong"))
	assert.Error(t, err)
}

func TestCheckSchedule(t *testing.T) {
	t.Parallel()

	m, err := NewMinter("ws://db/ws", []byte("k"), DefaultTokenTTL)
	require.NoError(t, err)

	assert.NoError(t, m.CheckSchedule(360*time.Second))
	err = m.CheckSchedule(2 * time.Hour)
	assert.True(t, errors.Is(err, ErrScheduleTooLong))
}

func TestRedact(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ws://db/ws?token=REDACTED", Redact("ws://db/ws?token=abc.def.ghi"))
	assert.Equal(t, "ws://db/ws", Redact("ws://db/ws"))
}
