// Package verifications stores pending email confirmation codes.
package verifications

import (
	"context"

	"github.com/dmitrijs2005/wsauth/internal/server/models"
)

type Repository interface {
	// Replace drops any pending code for v.UID and stores v.
	Replace(ctx context.Context, v *models.EmailVerification) error
}
