package client

import (
	"context"
)

type Client interface {
	Register(ctx context.Context, email, username string, password []byte) error
	Login(ctx context.Context, identifier string, password []byte) error
	SendVerifyEmail(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error
	// Revoke asks the server to invalidate the token, then forgets it.
	Revoke(ctx context.Context) error
	Logout()
	LoggedIn() bool
}
