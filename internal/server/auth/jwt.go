// Package auth issues and verifies signed tokens and hashes passwords.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Scope tells which flow a token was issued for.
type Scope string

const (
	ScopeAccess Scope = "access_token"
	ScopeEmail  Scope = "email_token"
	ScopeReset  Scope = "reset_token"
)

// Claims is the payload of every token. Subject holds the username for access
// tokens and the email address for confirmation and reset tokens.
type Claims struct {
	jwt.RegisteredClaims
	Scope Scope `json:"scope"`
	// Password is the pending password hash carried by reset tokens.
	Password string `json:"password,omitempty"`
	// Fingerprint identifies the password hash the account had when a reset
	// token was issued.
	Fingerprint string `json:"pfp,omitempty"`
}

// TokenService signs tokens with a process-wide HMAC secret.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService returns a TokenService. A nil now uses time.Now.
func NewTokenService(secret []byte, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}
	return &TokenService{secret: secret, now: now}
}

// Issue stamps claims with issued-at and expiry and signs them with HS256.
func (s *TokenService) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature, expiry and scope. Every failure is reported as
// common.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string, scope Scope) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	if claims.Scope != scope {
		return nil, fmt.Errorf("%w: scope %q", common.ErrInvalidToken, claims.Scope)
	}

	return claims, nil
}

// SubjectOf returns the token subject, or false when the token does not verify.
func (s *TokenService) SubjectOf(tokenString string, scope Scope) (string, bool) {
	claims, err := s.Verify(tokenString, scope)
	if err != nil {
		return "", false
	}
	return claims.Subject, true
}

// AuxiliaryClaimOf returns the pending password hash of a reset token, or false
// when the token does not verify or carries none.
func (s *TokenService) AuxiliaryClaimOf(tokenString string) (string, bool) {
	claims, err := s.Verify(tokenString, ScopeReset)
	if err != nil || claims.Password == "" {
		return "", false
	}
	return claims.Password, true
}

// IssueAccess issues a session token for username.
func (s *TokenService) IssueAccess(username string, ttl time.Duration) (string, error) {
	return s.Issue(Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: username},
		Scope:            ScopeAccess,
	}, ttl)
}

// IssueEmailConfirmation issues a token confirming ownership of email.
func (s *TokenService) IssueEmailConfirmation(email string, ttl time.Duration) (string, error) {
	return s.Issue(Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: email},
		Scope:            ScopeEmail,
	}, ttl)
}

// IssueReset issues a token that, once confirmed, replaces the password hash of
// email with newHash. currentHash binds the token to the password in force now.
func (s *TokenService) IssueReset(email, newHash, currentHash string, ttl time.Duration) (string, error) {
	return s.Issue(Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: email},
		Scope:            ScopeReset,
		Password:         newHash,
		Fingerprint:      Fingerprint(currentHash),
	}, ttl)
}

// Fingerprint returns a short digest of a password hash.
func Fingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
