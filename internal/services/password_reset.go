package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

// ResetWindow is how long after a successful OTP verification the password
// may be reset.
const ResetWindow = 15 * time.Minute

// ForgotPassword issues a fresh OTP for the account with the given email and
// mails it. Any previously issued OTP or open reset window is discarded.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return newError(KindValidation, "Provide email")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return newError(KindNotFound, "Email is not available")
		}
		return s.storeError("FindByEmail", err)
	}

	otp, err := utils.GenerateOTP(s.cfg.OTPLength)
	if err != nil {
		return wrapError(KindInternal, "Failed to generate otp", err)
	}

	expiry := s.now().Add(s.cfg.OTPTTL)
	if err := s.users.Update(ctx, user.ID, models.UserUpdate{
		PasswordReset: &models.PasswordResetState{OTP: otp, Expiry: &expiry},
	}); err != nil {
		return s.storeError("Update", err)
	}

	msg, err := ForgotPasswordMessage(user.Email, user.Name, otp, s.cfg.OTPTTL)
	if err != nil {
		return wrapError(KindInternal, "Failed to prepare the otp email", err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return wrapError(KindUpstream, "Failed to send the otp email", err)
	}

	s.logger.InfoContext(ctx, "password reset otp issued", "user_id", user.ID.String())
	return nil
}

// VerifyForgotPasswordOTP checks otp against the pending OTP of the account.
// On success the OTP is consumed and a reset window of ResetWindow opens.
func (s *AuthService) VerifyForgotPasswordOTP(ctx context.Context, email, otp string) error {
	if email == "" || otp == "" {
		return newError(KindValidation, "Provide required field email, otp.")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return newError(KindNotFound, "Email is not available")
		}
		return s.storeError("FindByEmail", err)
	}

	if user.ForgotPasswordOTP == "" || user.ForgotPasswordExpiry == nil {
		return newError(KindInvalidOTP, "Invalid otp")
	}

	now := s.now()
	if now.After(*user.ForgotPasswordExpiry) {
		return newError(KindExpired, "Otp is expired")
	}

	if subtle.ConstantTimeCompare([]byte(user.ForgotPasswordOTP), []byte(otp)) != 1 {
		return newError(KindInvalidOTP, "Invalid otp")
	}

	allowedUntil := now.Add(ResetWindow)
	if err := s.users.Update(ctx, user.ID, models.UserUpdate{
		PasswordReset: &models.PasswordResetState{AllowedUntil: &allowedUntil},
	}); err != nil {
		return s.storeError("Update", err)
	}
	return nil
}

// ResetPasswordInput is the payload of ResetPassword.
type ResetPasswordInput struct {
	Email           string
	NewPassword     string
	ConfirmPassword string
}

// ResetPassword replaces the password of an account whose OTP was verified
// within the last ResetWindow, then closes the window.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if in.Email == "" || in.NewPassword == "" || in.ConfirmPassword == "" {
		return newError(KindValidation, "provide required fields email, newPassword, confirmPassword")
	}
	if in.NewPassword != in.ConfirmPassword {
		return newError(KindValidation, "newPassword and confirmPassword must be same.")
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return newError(KindNotFound, "Email is not available")
		}
		return s.storeError("FindByEmail", err)
	}

	if user.PasswordResetAllowedUntil == nil || s.now().After(*user.PasswordResetAllowedUntil) {
		return newError(KindOTPNotVerified, "Verify the otp before resetting your password")
	}

	hash, err := s.hashPassword(in.NewPassword)
	if err != nil {
		return err
	}

	if err := s.users.Update(ctx, user.ID, models.UserUpdate{
		PasswordHash:  &hash,
		PasswordReset: &models.PasswordResetState{},
	}); err != nil {
		return s.storeError("Update", err)
	}

	s.invalidateProfile(ctx, user.ID)
	s.logger.InfoContext(ctx, "password reset", "user_id", user.ID.String())
	return nil
}
