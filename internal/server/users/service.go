// Package users implements the account workflows: registration, login and
// sending the email verification code. Each workflow is an ordered sequence
// of single-table exchanges with the database actor; there is no transaction
// spanning them, so uniqueness is guarded by per-identity locks and a failed
// second insert is compensated.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/wsauth/internal/common"
	"github.com/dmitrijs2005/wsauth/internal/dbclient"
	"github.com/dmitrijs2005/wsauth/internal/logging"
	"github.com/dmitrijs2005/wsauth/internal/metrics"
	"github.com/dmitrijs2005/wsauth/internal/server/auth"
	"github.com/dmitrijs2005/wsauth/internal/server/config"
	"github.com/dmitrijs2005/wsauth/internal/server/models"
	"github.com/dmitrijs2005/wsauth/internal/server/repositories/repomanager"
)

// TokenIssuer issues and checks bearer tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, subject string, ttl time.Duration) (string, error)
	Verify(ctx context.Context, token string) (*auth.Claims, error)
	Revoke(ctx context.Context, token string) error
}

type Service struct {
	ex              dbclient.Executor
	repomanager     repomanager.RepositoryManager
	hasher          auth.PasswordHasher
	issuer          TokenIssuer
	mailer          Mailer
	logger          logging.Logger
	metrics         *metrics.Metrics
	locks           *keyedLocks
	tokenTTL        time.Duration
	verificationTTL time.Duration
	now             func() time.Time
}

func NewService(
	ex dbclient.Executor,
	m repomanager.RepositoryManager,
	hasher auth.PasswordHasher,
	issuer TokenIssuer,
	mailer Mailer,
	cfg *config.Config,
	logger logging.Logger,
	mtr *metrics.Metrics,
) *Service {
	return &Service{
		ex:              ex,
		repomanager:     m,
		hasher:          hasher,
		issuer:          issuer,
		mailer:          mailer,
		logger:          logger.With("module", "users"),
		metrics:         mtr,
		locks:           newKeyedLocks(),
		tokenTTL:        cfg.UserTokenTTL,
		verificationTTL: cfg.VerificationTTL,
		now:             time.Now,
	}
}

func internalError(step string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrorInternal, step, err)
}

// Register creates the AuthUser and User records of a new account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (err error) {
	defer func() { s.metrics.ObserveWorkflow("register", outcome(err)) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	user := &models.AuthUser{
		UID:      uuid.NewString(),
		Email:    req.Email,
		Username: req.Username,
	}

	// Check-then-insert must not interleave with another registration
	// claiming the same email or username.
	unlock := s.locks.Lock("email:"+user.Email, "username:"+user.Username)
	defer unlock()

	repo := s.repomanager.Users(s.ex)

	existing, err := repo.FindByIdentity(ctx, user.Email, user.Username)
	if err != nil {
		return internalError("lookup identity", err)
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: a user with this email or username already exists", common.ErrorConflict)
	}

	user.PasswordHash, err = s.hasher.Hash(req.Password)
	if err != nil {
		return internalError("hash password", err)
	}

	if err := repo.CreateAuthUser(ctx, user); err != nil {
		return internalError("insert auth user", err)
	}

	if err := repo.CreateProfile(ctx, user.Profile()); err != nil {
		s.compensate(ctx, user.UID, err)
		return internalError("insert profile", err)
	}

	s.logger.Info(ctx, "user registered", "uid", user.UID)
	return nil
}

// compensate removes the AuthUser row left behind by a failed profile insert.
func (s *Service) compensate(ctx context.Context, uid string, cause error) {
	// The original ctx may be the reason the insert failed.
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.repomanager.Users(s.ex).DeleteAuthUser(cctx, uid); err != nil {
		s.logger.Error(ctx, "compensation failed, auth user orphaned", "uid", uid, "cause", cause, "error", err)
		return
	}
	s.logger.Warn(ctx, "profile insert failed, auth user removed", "uid", uid, "cause", cause)
}

// Login checks the credentials and returns a bearer token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (token string, err error) {
	defer func() { s.metrics.ObserveWorkflow("login", outcome(err)) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", err
	}
	by := req.filter()

	user, err := s.repomanager.Users(s.ex).FindAuthUser(ctx, by)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("%w: no user exists with this email or username", common.ErrorNotFound)
		}
		return "", internalError("lookup user", err)
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return "", internalError("verify password", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: incorrect password", common.ErrorForbidden)
	}

	token, err = s.issuer.Issue(ctx, user.UID, s.tokenTTL)
	if err != nil {
		return "", internalError("issue token", err)
	}
	return token, nil
}

// SendVerifyEmail verifies the bearer token and, unless the account is
// already verified, stores a fresh code and mails it. It reports whether a
// code was sent.
func (s *Service) SendVerifyEmail(ctx context.Context, token string) (sent bool, err error) {
	defer func() { s.metrics.ObserveWorkflow("send_verify_email", outcome(err)) }()

	claims, err := s.issuer.Verify(ctx, token)
	if err != nil {
		return false, tokenError(err)
	}

	user, err := s.repomanager.Users(s.ex).FindProfile(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, fmt.Errorf("%w: account no longer exists", common.ErrorUnauthorized)
		}
		return false, internalError("lookup profile", err)
	}
	if user.EmailVerified {
		return false, nil
	}

	code, err := common.MakeRandHexString(16)
	if err != nil {
		return false, internalError("generate code", err)
	}
	v := models.NewEmailVerification(user.UID, user.Email, code, s.now(), s.verificationTTL)
	if err := s.repomanager.Verifications(s.ex).Replace(ctx, v); err != nil {
		return false, internalError("store verification", err)
	}
	if err := s.mailer.SendVerification(ctx, user.Email, code); err != nil {
		return false, internalError("send verification", err)
	}
	return true, nil
}

// Logout revokes the bearer token so it is no longer accepted.
func (s *Service) Logout(ctx context.Context, token string) (err error) {
	defer func() { s.metrics.ObserveWorkflow("logout", outcome(err)) }()

	if err := s.issuer.Revoke(ctx, token); err != nil {
		return tokenError(err)
	}
	return nil
}

// tokenError maps a token check failure to Unauthorized, or Internal when the
// database could not be consulted.
func tokenError(err error) error {
	if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrTokenExpired) {
		return fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}
	return internalError("verify token", err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrorValidation):
		return "invalid"
	case errors.Is(err, common.ErrorConflict):
		return "conflict"
	case errors.Is(err, common.ErrorNotFound):
		return "not_found"
	case errors.Is(err, common.ErrorForbidden), errors.Is(err, common.ErrorUnauthorized):
		return "denied"
	default:
		return "error"
	}
}
