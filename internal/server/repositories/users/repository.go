// Package users declares the repository contract for account records: the
// credential row in auth_users and the profile row in users.
package users

import (
	"context"

	"github.com/dmitrijs2005/wsauth/internal/server/models"
)

type Repository interface {
	// FindByIdentity returns every auth user whose email or username matches.
	FindByIdentity(ctx context.Context, email, username string) ([]models.AuthUser, error)

	// FindAuthUser returns the first auth user matching all fields of by, or
	// common.ErrorNotFound.
	FindAuthUser(ctx context.Context, by map[string]any) (*models.AuthUser, error)

	CreateAuthUser(ctx context.Context, user *models.AuthUser) error
	DeleteAuthUser(ctx context.Context, uid string) error

	FindProfile(ctx context.Context, uid string) (*models.User, error)
	CreateProfile(ctx context.Context, user *models.User) error
}
