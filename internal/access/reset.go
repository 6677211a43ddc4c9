package access

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"

	"github.com/askhq/ask/internal"
	"github.com/askhq/ask/internal/logging"
	"github.com/askhq/ask/internal/server/email"
	"github.com/askhq/ask/internal/validate"
)

const (
	resetKeySalt       = "recover-key"
	resetTokenAudience = "password-reset"
)

// ResetTokens issues and verifies signed password reset tokens. A token
// carries the email address it was issued for and the time it was issued.
// Nothing is stored, so a token cannot be revoked before it expires.
type ResetTokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewResetTokens(secret string, ttl time.Duration, now func() time.Time) *ResetTokens {
	if now == nil {
		now = time.Now
	}
	key := sha256.Sum256([]byte(resetKeySalt + secret))
	return &ResetTokens{key: key[:], ttl: ttl, now: now}
}

// Issue returns a token for emailAddr. It does not check that a user with
// that email exists.
func (r *ResetTokens) Issue(emailAddr string) (string, error) {
	if err := validateEmail(emailAddr); err != nil {
		return "", err
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: r.key},
		(&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", fmt.Errorf("create signer: %w", err)
	}

	claims := jwt.Claims{
		Subject:  emailAddr,
		Audience: jwt.Audience{resetTokenAudience},
		IssuedAt: jwt.NewNumericDate(r.now()),
	}
	return jwt.Signed(signer).Claims(claims).CompactSerialize()
}

// Verify returns the email address token was issued for. It fails with
// ErrInvalidToken when the token was not signed by this service, and with
// ErrExpiredToken when more than the TTL has passed since it was issued.
func (r *ResetTokens) Verify(token string) (string, error) {
	if err := checkEncoding(token); err != nil {
		return "", err
	}

	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if len(parsed.Headers) != 1 || parsed.Headers[0].Algorithm != string(jose.HS256) {
		return "", fmt.Errorf("%w: unexpected signature algorithm", ErrInvalidToken)
	}

	var claims jwt.Claims
	if err := parsed.Claims(r.key, &claims); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	switch {
	case !claims.Audience.Contains(resetTokenAudience):
		return "", fmt.Errorf("%w: wrong audience", ErrInvalidToken)
	case claims.Subject == "":
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	case claims.IssuedAt == nil:
		return "", fmt.Errorf("%w: missing issued at", ErrInvalidToken)
	}

	age := r.now().Unix() - claims.IssuedAt.Time().Unix()
	switch {
	case age < 0:
		return "", fmt.Errorf("%w: issued in the future", ErrInvalidToken)
	case age > int64(r.ttl/time.Second):
		return "", ErrExpiredToken
	}
	return claims.Subject, nil
}

func validateEmail(emailAddr string) error {
	rules := []validate.ValidationRule{
		validate.Required("email", emailAddr),
		validate.Email("email", emailAddr),
	}
	for _, rule := range rules {
		if failure := rule.Validate(); failure != nil {
			return validate.Error{failure.Name: failure.Problems}
		}
	}
	return nil
}

// checkEncoding rejects tokens with a segment that is not canonical
// base64url. The decoder used by jwt.ParseSigned ignores the unused bits of
// the last character, so a token that differs only in those bits would
// otherwise verify.
func checkEncoding(token string) error {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return fmt.Errorf("%w: expected 3 segments, got %d", ErrInvalidToken, len(segments))
	}
	for _, segment := range segments {
		if _, err := base64.RawURLEncoding.Strict().DecodeString(segment); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	return nil
}

// VerifyResetToken returns the email address a reset token was issued for.
func (a *Authenticator) VerifyResetToken(token string) (string, error) {
	return a.tokens.Verify(token)
}

// RequestReset emails a reset link to the user with emailAddr. The result is
// the same whether or not such a user exists. Failure to deliver the email is
// logged and not returned.
func (a *Authenticator) RequestReset(ctx context.Context, emailAddr string) error {
	user, err := a.users.FindByEmail(ctx, emailAddr)
	switch {
	case errors.Is(err, internal.ErrNotFound):
		logging.Debugf("password reset requested for unknown email")
		return nil
	case err != nil:
		return err
	}

	token, err := a.tokens.Issue(user.Email)
	if err != nil {
		logging.Errorf("issue reset token for user %v: %s", user.ID, err)
		return nil
	}

	msg, err := email.Render(email.EmailTemplatePasswordReset, user.Username, user.Email, email.PasswordResetData{
		Username: user.Username,
		Link:     a.config.BaseURL + "/reset/" + token,
	})
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}

	if err := a.mailer.Send(ctx, msg); err != nil {
		logging.Errorf("sending password reset email to user %v: %s", user.ID, err)
	}
	return nil
}

// CompleteReset sets a new password for the user the token was issued for
// and ends all of that user's sessions.
func (a *Authenticator) CompleteReset(ctx context.Context, token, newPassword string) error {
	emailAddr, err := a.tokens.Verify(token)
	if err != nil {
		return err
	}

	if !IsValidPassword(newPassword) {
		return ErrWeakPassword
	}

	user, err := a.users.FindByEmail(ctx, emailAddr)
	switch {
	case errors.Is(err, internal.ErrNotFound):
		return fmt.Errorf("%w: no user with that email", ErrInvalidToken)
	case err != nil:
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), a.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := a.users.UpdatePasswordHash(ctx, user, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := a.sessions.DeleteForUser(ctx, user.ID); err != nil {
		logging.Errorf("ending sessions of user %v after password reset: %s", user.ID, err)
	}
	return nil
}
