package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/buildnet/internal/access"
	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/services"
	"github.com/localnerve/buildnet/internal/types"
)

const principalKey = "principal"

// RequireUser rejects requests without a valid bearer session token
func RequireUser(st *database.Store, tokens *services.Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authenticate(c, st, tokens, true)
	}
}

// OptionalUser resolves the principal when a bearer token is present and
// continues as an anonymous visitor otherwise
func OptionalUser(st *database.Store, tokens *services.Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authenticate(c, st, tokens, false)
	}
}

// Principal returns the principal resolved for the request
func Principal(c *fiber.Ctx) access.Principal {
	if p, ok := c.Locals(principalKey).(access.Principal); ok {
		return p
	}
	return access.Anonymous
}

func authenticate(c *fiber.Ctx, st *database.Store, tokens *services.Tokens, required bool) error {
	token := bearerToken(c)
	if token == "" {
		if required {
			return unauthorized("Authorization bearer token not found")
		}
		c.Locals(principalKey, access.Anonymous)
		return c.Next()
	}

	userID, err := tokens.SessionUser(token)
	if err != nil {
		return unauthorized("Invalid session")
	}

	p, err := services.LoadPrincipal(c.UserContext(), st, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return unauthorized("Session user no longer exists")
		}
		return err
	}

	if err := services.TouchLastSeen(c.UserContext(), st, userID); err != nil {
		st.Log.WithError(err).WithField("user_id", userID).Warn("failed to record last seen")
	}

	c.Locals(principalKey, p)
	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(message string) error {
	return &types.CustomError{
		Code:    fiber.StatusUnauthorized,
		Message: message,
		Type:    types.ErrorTypeAuth,
	}
}
