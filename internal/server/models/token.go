package models

import "time"

// IssuedToken records a bearer token handed out at login. Times are unix seconds.
type IssuedToken struct {
	JTI       string `json:"jti"`
	UID       string `json:"uid"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}

func (t *IssuedToken) Expired(now time.Time) bool {
	return now.Unix() >= t.ExpiresAt
}
