package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/services"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	auth *services.AuthService
	cfg  *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, cfg: cfg}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new, unverified user account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.auth.Register(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, "User register successfully", user)
}

type verifyEmailRequest struct {
	Code string `json:"code"`
}

// VerifyEmail marks the account identified by the emailed code as verified.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.auth.VerifyEmail(c.UserContext(), req.Code); err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, "Verify email done", nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user, sets both session cookies and returns the
// tokens in the body as well.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	tokens, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setCookie(c, middleware.AccessTokenCookie, tokens.AccessToken, h.cfg.AccessTokenTTL)
	h.setCookie(c, middleware.RefreshTokenCookie, tokens.RefreshToken, h.cfg.RefreshTokenTTL)

	return respond(c, fiber.StatusOK, "Login successfully", tokens)
}

// Logout clears both session cookies and the stored refresh token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.auth.Logout(c.UserContext(), userID); err != nil {
		return err
	}

	h.clearCookie(c, middleware.AccessTokenCookie)
	h.clearCookie(c, middleware.RefreshTokenCookie)

	return respond(c, fiber.StatusOK, "Logout successfully", nil)
}

// RefreshToken issues a new access token from the refresh token found in the
// refreshToken cookie or the Authorization header.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	token := c.Cookies(middleware.RefreshTokenCookie)
	if token == "" {
		token = middleware.BearerToken(c)
	}

	accessToken, err := h.auth.RefreshAccessToken(c.UserContext(), token)
	if err != nil {
		return err
	}

	h.setCookie(c, middleware.AccessTokenCookie, accessToken, h.cfg.AccessTokenTTL)

	return respond(c, fiber.StatusOK, "New Access token generated", fiber.Map{
		"accessToken": accessToken,
	})
}

// setCookie writes an httpOnly session cookie. Secure deployments use
// SameSite=None so the frontend origin can send it; local runs without TLS
// fall back to Lax.
func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(h.sessionCookie(name, value, time.Now().Add(ttl)))
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(h.sessionCookie(name, "", time.Unix(0, 0)))
}

func (h *AuthHandler) sessionCookie(name, value string, expires time.Time) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if h.cfg.CookieSecure {
		cookie.SameSite = fiber.CookieSameSiteNoneMode
	}
	return cookie
}
