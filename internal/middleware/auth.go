package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/utils"
)

const userContextKey = "currentUserID"

// AccessTokenCookie and RefreshTokenCookie name the session cookies.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// AuthMiddleware validates the access token, taken from the accessToken
// cookie or else the Authorization header, and loads the user ID into context.
// The user record itself is not looked up.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(AccessTokenCookie)
		if token == "" {
			token = BearerToken(c)
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Provide token")
		}

		userID, err := utils.ParseToken(cfg.AccessTokenSecret, token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized access")
		}

		c.Locals(userContextKey, userID)
		return c.Next()
	}
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header,
// or "" when the header is absent or uses another scheme.
func BearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}
