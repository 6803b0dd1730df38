package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestUserUpdate_ColumnsOnlySetFields(t *testing.T) {
	upd := UserUpdate{Name: strPtr("Alice"), Mobile: strPtr("")}

	cols := upd.Columns()
	assert.Equal(t, map[string]interface{}{"name": "Alice", "mobile": ""}, cols)
	assert.False(t, upd.IsEmpty())
	assert.True(t, UserUpdate{}.IsEmpty())
}

func TestUserUpdate_PasswordResetWritesAllColumns(t *testing.T) {
	cols := UserUpdate{PasswordReset: &PasswordResetState{}}.Columns()

	assert.Len(t, cols, 3)
	assert.Equal(t, "", cols["forgot_password_otp"])
	assert.Nil(t, cols["forgot_password_expiry"])
	assert.Nil(t, cols["password_reset_allowed_until"])
}

func TestUserUpdate_Apply(t *testing.T) {
	expiry := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	user := &User{Name: "Old", Email: "a@x.com", ForgotPasswordOTP: "111111", ForgotPasswordExpiry: &expiry}

	verified := true
	UserUpdate{
		Name:          strPtr("New"),
		VerifyEmail:   &verified,
		PasswordReset: &PasswordResetState{},
	}.Apply(user)

	assert.Equal(t, "New", user.Name)
	assert.Equal(t, "a@x.com", user.Email)
	assert.True(t, user.VerifyEmail)
	assert.Empty(t, user.ForgotPasswordOTP)
	assert.Nil(t, user.ForgotPasswordExpiry)
}

func TestUserUpdate_ApplyCopiesTimes(t *testing.T) {
	expiry := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	user := &User{}

	UserUpdate{PasswordReset: &PasswordResetState{OTP: "123456", Expiry: &expiry}}.Apply(user)
	expiry = expiry.Add(time.Hour)

	assert.Equal(t, "123456", user.ForgotPasswordOTP)
	assert.Equal(t, 12, user.ForgotPasswordExpiry.Hour())
}

func TestUser_IsActive(t *testing.T) {
	assert.True(t, (&User{Status: StatusActive}).IsActive())
	assert.False(t, (&User{Status: StatusSuspended}).IsActive())
	assert.False(t, (&User{}).IsActive())
}

func TestUser_Sanitized(t *testing.T) {
	expiry := time.Now()
	user := &User{Name: "Alice", PasswordHash: "hash", RefreshToken: "rt", ForgotPasswordOTP: "123456", ForgotPasswordExpiry: &expiry}

	clean := user.Sanitized()

	assert.Equal(t, "Alice", clean.Name)
	assert.Empty(t, clean.PasswordHash)
	assert.Empty(t, clean.RefreshToken)
	assert.Empty(t, clean.ForgotPasswordOTP)
	assert.Nil(t, clean.ForgotPasswordExpiry)
	assert.Equal(t, "hash", user.PasswordHash)
}
