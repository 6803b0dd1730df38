package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/services"
)

// PasswordResetHandler manages forgot-password endpoints.
type PasswordResetHandler struct {
	auth *services.AuthService
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(auth *services.AuthService) *PasswordResetHandler {
	return &PasswordResetHandler{auth: auth}
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword emails a one-time code to the account owner.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, "check your email", nil)
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyForgotPasswordOTP consumes the emailed code and opens the reset window.
func (h *PasswordResetHandler) VerifyForgotPasswordOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.auth.VerifyForgotPasswordOTP(c.UserContext(), req.Email, req.OTP); err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, "Verify otp successfully", nil)
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetPassword sets a new password after a successful OTP verification.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	err := h.auth.ResetPassword(c.UserContext(), services.ResetPasswordInput{
		Email:           req.Email,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, "Password updated successfully.", nil)
}
