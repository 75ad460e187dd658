// Package models defines the records stored by the database actor.
package models

// AuthUser holds the credentials of an account. PasswordHash is empty until
// explicitly set.
type AuthUser struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	EmailVerified bool   `json:"email_verified"`
	PasswordHash  string `json:"password_hash"`
}

// User is the public profile created next to an AuthUser with the same UID.
type User struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	EmailVerified bool   `json:"email_verified"`
	Owner         bool   `json:"owner"`
}

// Profile derives the profile record of a freshly registered account.
func (u *AuthUser) Profile() *User {
	return &User{
		UID:           u.UID,
		Email:         u.Email,
		Username:      u.Username,
		EmailVerified: u.EmailVerified,
	}
}
