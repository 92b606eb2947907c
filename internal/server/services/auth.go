// Package services contains server-side business logic. This file implements
// AuthService: registration, login, email confirmation and password reset.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/server/auth"
	"github.com/dmitrijs2005/contactkeeper/internal/server/avatar"
	"github.com/dmitrijs2005/contactkeeper/internal/server/config"
	"github.com/dmitrijs2005/contactkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/contactkeeper/internal/server/models"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/repomanager"
)

// Result messages of the account flows.
const (
	MessageEmailConfirmed        = "Email confirmed"
	MessageEmailAlreadyConfirmed = "Your email is already confirmed"
	MessageCheckYourEmail        = "Check your email for confirmation"
	MessagePasswordChanged       = "Password changed successfully"
)

// dummyHash is compared against when the user does not exist so that a login
// for an unknown username costs as much as one with a wrong password.
const dummyHash = "$2a$10$abcdefghijklmnopqrstuuABCDEFGHIJKLMNOPQRSTUVWXYZ01234"

// Notifier sends account flow emails in the background. Implementations never
// report delivery failures.
type Notifier interface {
	SendConfirmation(ctx context.Context, to, username, host, token string)
	SendPasswordReset(ctx context.Context, to, username, host, token string)
}

// AuthService drives the account lifecycle:
// - Register: create an unconfirmed user and mail a confirmation link
// - Login: verify credentials and mint an access token
// - ConfirmEmail / RequestEmail: confirmation flow
// - RequestPasswordReset / ConfirmPasswordReset: reset flow
// - Authenticate: resolve the user behind an access token
type AuthService struct {
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	hasher      auth.PasswordHasher
	notifier    Notifier
	metrics     *metrics.Metrics
	logger      logging.Logger

	baseURL   string
	accessTTL time.Duration
	emailTTL  time.Duration
	resetTTL  time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(m repomanager.RepositoryManager, tokens *auth.TokenService, hasher auth.PasswordHasher,
	notifier Notifier, cfg *config.Config, logger logging.Logger, mt *metrics.Metrics) *AuthService {
	return &AuthService{
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		notifier:    notifier,
		metrics:     mt,
		logger:      logger.With("module", "auth"),
		baseURL:     cfg.BaseURL,
		accessTTL:   cfg.AccessTokenValidityDuration,
		emailTTL:    cfg.EmailTokenValidityDuration,
		resetTTL:    cfg.ResetTokenValidityDuration,
	}
}

// Register creates an unconfirmed user with the USER role and dispatches a
// confirmation email. A taken email is reported before a taken username.
func (s *AuthService) Register(ctx context.Context, in models.NewUser) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.repomanager.Conn())

	if _, err := repo.GetByEmail(ctx, in.Email); err == nil {
		s.metrics.RecordAuthEvent("register", metrics.ResultFailure)
		return nil, common.ErrDuplicateEmail
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if _, err := repo.GetByUsername(ctx, in.Username); err == nil {
		s.metrics.RecordAuthEvent("register", metrics.ResultFailure)
		return nil, common.ErrDuplicateUsername
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hash,
		Role:           models.RoleUser,
		Avatar:         avatar.GravatarURL(in.Email),
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) || errors.Is(err, common.ErrDuplicateUsername) {
			s.metrics.RecordAuthEvent("register", metrics.ResultFailure)
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.metrics.RecordAuthEvent("register", metrics.ResultSuccess)
	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	s.sendConfirmation(ctx, user)

	return user, nil
}

// Login verifies credentials and returns an access token. Unknown usernames
// and wrong passwords both yield common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	repo := s.repomanager.Users(s.repomanager.Conn())

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("error searching user: %w", err)
		}
		s.hasher.Verify(password, dummyHash)
		s.metrics.RecordAuthEvent("login", metrics.ResultFailure)
		return "", common.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		s.metrics.RecordAuthEvent("login", metrics.ResultFailure)
		return "", common.ErrInvalidCredentials
	}

	if !user.Confirmed {
		s.metrics.RecordAuthEvent("login", metrics.ResultFailure)
		return "", common.ErrNotConfirmed
	}

	token, err := s.tokens.IssueAccess(user.Username, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("error issuing token: %w", err)
	}

	s.metrics.RecordAuthEvent("login", metrics.ResultSuccess)
	return token, nil
}

// ConfirmEmail marks the account behind a confirmation token as confirmed.
// Confirming twice is not an error.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (string, error) {
	email, ok := s.tokens.SubjectOf(token, auth.ScopeEmail)
	if !ok {
		return "", common.ErrVerification
	}

	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrVerification
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	if user.Confirmed {
		return MessageEmailAlreadyConfirmed, nil
	}

	if err := repo.ConfirmEmail(ctx, email); err != nil {
		return "", fmt.Errorf("error confirming email: %w", err)
	}

	s.metrics.RecordAuthEvent("confirm_email", metrics.ResultSuccess)
	return MessageEmailConfirmed, nil
}

// RequestEmail re-sends the confirmation link of an unconfirmed account. The
// answer does not reveal whether email belongs to an account.
func (s *AuthService) RequestEmail(ctx context.Context, email string) (string, error) {
	repo := s.repomanager.Users(s.repomanager.Conn())

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return MessageCheckYourEmail, nil
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	if user.Confirmed {
		return MessageEmailAlreadyConfirmed, nil
	}

	s.sendConfirmation(ctx, user)
	return MessageCheckYourEmail, nil
}

// RequestPasswordReset mails a link that applies password once followed. The
// new password is hashed now and travels only inside the reset token.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, password string) (string, error) {
	if err := models.ValidatePassword(password); err != nil {
		return "", err
	}

	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return MessageCheckYourEmail, nil
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	if !user.Confirmed {
		return "", common.ErrEmailNotConfirmed
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.IssueReset(user.Email, hash, user.HashedPassword, s.resetTTL)
	if err != nil {
		return "", fmt.Errorf("error issuing token: %w", err)
	}

	s.notifier.SendPasswordReset(ctx, user.Email, user.Username, s.baseURL, token)
	s.metrics.RecordAuthEvent("reset_request", metrics.ResultSuccess)
	return MessageCheckYourEmail, nil
}

// ConfirmPasswordReset applies the password carried by a reset token. A token
// stops working as soon as the password it was issued against changes.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Verify(token, auth.ScopeReset)
	if err != nil || claims.Password == "" {
		return "", common.ErrInvalidOrExpiredToken
	}

	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err := repo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrUserNotFound
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	if claims.Fingerprint != auth.Fingerprint(user.HashedPassword) {
		s.metrics.RecordAuthEvent("reset_confirm", metrics.ResultFailure)
		return "", common.ErrInvalidOrExpiredToken
	}

	if err := repo.UpdatePassword(ctx, user.ID, claims.Password); err != nil {
		return "", fmt.Errorf("error updating password: %w", err)
	}

	s.metrics.RecordAuthEvent("reset_confirm", metrics.ResultSuccess)
	s.logger.Info(ctx, "password changed", "user_id", user.ID)
	return MessagePasswordChanged, nil
}

// Authenticate returns the user an access token was issued to.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	username, ok := s.tokens.SubjectOf(token, auth.ScopeAccess)
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, user *models.User) {
	token, err := s.tokens.IssueEmailConfirmation(user.Email, s.emailTTL)
	if err != nil {
		s.logger.Error(ctx, "error issuing confirmation token", "user_id", user.ID, "error", err)
		return
	}
	s.notifier.SendConfirmation(ctx, user.Email, user.Username, s.baseURL, token)
}
