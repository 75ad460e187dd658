// Package endpoint builds the URL used to (re)connect to the database actor:
// the configured base URL with a short-lived HS256 token in the "token"
// query parameter.
package endpoint

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of a connection token.
const DefaultTokenTTL = 3600 * time.Second

var ErrScheduleTooLong = errors.New("endpoint token expires before the next scheduled reconnect")

// Claims is the payload the database actor validates on connect.
type Claims struct {
	Timestamp int64 `json:"timestamp"`
	jwt.RegisteredClaims
}

type Minter struct {
	base   *url.URL
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewMinter(baseURL string, secret []byte, ttl time.Duration) (*Minter, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("database url must use ws or wss, got %q", u.Scheme)
	}
	if len(secret) == 0 {
		return nil, errors.New("signing key is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Minter{base: u, secret: secret, ttl: ttl, now: time.Now}, nil
}

// CheckSchedule verifies that a token minted now outlives the interval until
// the next reconnect mints a new one.
func (m *Minter) CheckSchedule(reconnectInterval time.Duration) error {
	if m.ttl <= reconnectInterval {
		return fmt.Errorf("%w: ttl %s, reconnect every %s", ErrScheduleTooLong, m.ttl, reconnectInterval)
	}
	return nil
}

// Endpoint mints a new token and returns base?token=<jwt>.
func (m *Minter) Endpoint() (string, error) {
	now := m.now()
	claims := Claims{
		Timestamp: now.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign endpoint token: %w", err)
	}

	u := *m.base
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseToken validates an endpoint token; it is what the actor side does.
func ParseToken(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Redact strips the token from an endpoint URL so it can be logged.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	q := u.Query()
	if q.Has("token") {
		q.Set("token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
