// Package tokens issues and verifies user bearer tokens. Every issued token is
// recorded through the database actor so it can be checked later.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/wsauth/internal/common"
	"github.com/dmitrijs2005/wsauth/internal/server/auth"
	"github.com/dmitrijs2005/wsauth/internal/server/models"
	tokensrepo "github.com/dmitrijs2005/wsauth/internal/server/repositories/tokens"
)

type Issuer struct {
	repo   tokensrepo.Repository
	secret []byte
	now    func() time.Time
}

func NewIssuer(repo tokensrepo.Repository, secret []byte) *Issuer {
	return &Issuer{repo: repo, secret: secret, now: time.Now}
}

// Issue signs a token for subject expiring exactly ttl after issuance and
// records it.
func (i *Issuer) Issue(ctx context.Context, subject string, ttl time.Duration) (string, error) {
	issued := i.now().Truncate(time.Second)
	jti := uuid.NewString()

	token, err := auth.GenerateToken(subject, jti, i.secret, issued, ttl)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	rec := &models.IssuedToken{
		JTI:       jti,
		UID:       subject,
		IssuedAt:  issued.Unix(),
		ExpiresAt: issued.Add(ttl).Unix(),
	}
	if err := i.repo.Create(ctx, rec); err != nil {
		return "", err
	}
	return token, nil
}

// Verify checks signature, expiry and the issued-token record.
func (i *Issuer) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, i.secret)
	if err != nil {
		return nil, err
	}

	rec, err := i.repo.Find(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: token not issued by this service", common.ErrInvalidToken)
		}
		return nil, err
	}
	if rec.UID != claims.Subject {
		return nil, fmt.Errorf("%w: subject mismatch", common.ErrInvalidToken)
	}
	if rec.Expired(i.now()) {
		return nil, common.ErrTokenExpired
	}
	return claims, nil
}

// Revoke verifies token and deletes its record, so later Verify calls fail.
func (i *Issuer) Revoke(ctx context.Context, token string) error {
	claims, err := i.Verify(ctx, token)
	if err != nil {
		return err
	}
	return i.repo.Delete(ctx, claims.ID)
}
