// Package tokens declares the repository contract for issued bearer tokens.
package tokens

import (
	"context"

	"github.com/dmitrijs2005/wsauth/internal/server/models"
)

// Repository stores the record of every token handed out at login.
type Repository interface {
	Create(ctx context.Context, token *models.IssuedToken) error

	// Find looks up a token by its jti. It returns common.ErrorNotFound when
	// the token was never issued or has been revoked.
	Find(ctx context.Context, jti string) (*models.IssuedToken, error)

	// Delete revokes a token. Deleting an unknown jti is not an error.
	Delete(ctx context.Context, jti string) error
}
