package models

import "time"

// EmailVerification is a pending confirmation code sent to an account's email.
type EmailVerification struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expires_at"`
}

func NewEmailVerification(uid, email, code string, now time.Time, ttl time.Duration) *EmailVerification {
	return &EmailVerification{
		UID:       uid,
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(ttl).Unix(),
	}
}
