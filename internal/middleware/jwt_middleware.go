package middleware

import (
	"strings"

	"blogapi/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

const (
	// TokenCookie is the cookie carrying the session token.
	TokenCookie = "token"
	// UserIDKey is the Locals key holding the authenticated user's ID.
	UserIDKey = "user_id"
)

// TokenValidator resolves a token to the user ID it was issued for.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token. The
// token is read from the token cookie, falling back to a Bearer header.
func AuthRequired(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(TokenCookie)
		if tokenString == "" {
			tokenString = bearerToken(c.Get(fiber.HeaderAuthorization))
		}
		if tokenString == "" {
			return apperrors.Unauthorized("Please login to access this resource", nil)
		}

		userID, err := tokens.Validate(tokenString)
		if err != nil {
			return err
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user's ID set by AuthRequired.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

// Expected format: "Bearer <token>"
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
