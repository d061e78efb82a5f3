package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/models"
	"gorm.io/gorm"
)

const (
	purposeSession = "session"
	purposeReset   = "reset_password"
)

var errTokenPurpose = errors.New("token issued for another purpose")

type tokenClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 signed tokens for sessions and password resets
type Tokens struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

// NewTokens creates a token issuer signing with secret
func NewTokens(secret string, sessionTTL, resetTTL time.Duration) *Tokens {
	return &Tokens{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
		now:        time.Now,
	}
}

// WithClock returns a copy of t reading the time from now
func (t *Tokens) WithClock(now func() time.Time) *Tokens {
	clone := *t
	clone.now = now
	return &clone
}

// IssueSession returns a bearer token for userID
func (t *Tokens) IssueSession(userID uint64) (string, error) {
	return t.issue(userID, purposeSession, t.sessionTTL)
}

// SessionUser returns the user id carried by a session token
func (t *Tokens) SessionUser(token string) (uint64, error) {
	userID, err := t.parse(token, purposeSession)
	if err != nil {
		return 0, ErrUnauthorized
	}
	return userID, nil
}

// IssueReset returns a password reset token for userID
func (t *Tokens) IssueReset(userID uint64) (string, error) {
	return t.issue(userID, purposeReset, t.resetTTL)
}

// VerifyReset returns the user a reset token was issued for.
// Every failure is reported as ErrNoResetSession.
func (t *Tokens) VerifyReset(ctx context.Context, st *database.Store, token string) (*models.User, error) {
	userID, err := t.parse(token, purposeReset)
	if err != nil {
		return nil, ErrNoResetSession
	}

	user, err := GetUser(ctx, st, userID)
	if err != nil {
		return nil, ErrNoResetSession
	}
	return user, nil
}

func (t *Tokens) issue(userID uint64, purpose string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := tokenClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) parse(token, purpose string) (uint64, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return 0, err
	}
	if claims.Purpose != purpose || claims.ExpiresAt == nil {
		return 0, errTokenPurpose
	}
	return strconv.ParseUint(claims.Subject, 10, 64)
}

// RequestPasswordReset mails a reset token to the owner of email.
// Unknown addresses and mail failures are not reported to the caller.
func RequestPasswordReset(ctx context.Context, st *database.Store, tokens *Tokens, mailer Mailer, email string) error {
	var users []models.User
	if err := st.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Limit(1).Find(&users).Error; err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	token, err := tokens.IssueReset(users[0].UserID)
	if err != nil {
		return err
	}

	if err := mailer.SendPasswordReset(ctx, &users[0], token); err != nil {
		st.Log.WithError(err).WithField("user_id", users[0].UserID).Warn("password reset mail failed")
	}
	return nil
}

// ResetPassword sets a new password for the user a reset token was issued for
func ResetPassword(ctx context.Context, st *database.Store, tokens *Tokens, token, password string) error {
	user, err := tokens.VerifyReset(ctx, st, token)
	if err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}

	return st.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Model(&models.User{}).
			Where("user_id = ?", user.UserID).
			UpdateColumn("password_hash", user.PasswordHash).Error
	})
}
