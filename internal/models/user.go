package models

import (
	"time"
)

// UserStatus gates whether an account may log in.
type UserStatus string

const (
	StatusActive    UserStatus = "Active"
	StatusInactive  UserStatus = "Inactive"
	StatusSuspended UserStatus = "Suspended"
)

// UserRole distinguishes shop administrators from customers.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// User represents a registered customer account.
type User struct {
	BaseModel
	Name          string     `gorm:"not null" json:"name"`
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string     `gorm:"not null" json:"-"`
	Avatar        string     `json:"avatar"`
	Mobile        string     `json:"mobile"`
	RefreshToken  string     `json:"-"`
	VerifyEmail   bool       `json:"verify_email"`
	LastLoginDate *time.Time `json:"last_login_date"`
	Status        UserStatus `gorm:"size:16" json:"status"`
	Role          UserRole   `gorm:"size:16" json:"role"`

	ForgotPasswordOTP         string     `gorm:"column:forgot_password_otp" json:"-"`
	ForgotPasswordExpiry      *time.Time `gorm:"column:forgot_password_expiry" json:"-"`
	PasswordResetAllowedUntil *time.Time `gorm:"column:password_reset_allowed_until" json:"-"`
}

// IsActive reports whether the account may log in.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// PasswordResetState is the forgot-password bookkeeping of a user. The OTP
// and its expiry are always written together; the zero value clears all of it.
type PasswordResetState struct {
	OTP          string
	Expiry       *time.Time
	AllowedUntil *time.Time
}

// UserUpdate lists the user columns to change. Nil fields are left untouched.
type UserUpdate struct {
	Name          *string
	Email         *string
	Mobile        *string
	PasswordHash  *string
	Avatar        *string
	RefreshToken  *string
	VerifyEmail   *bool
	LastLoginDate *time.Time
	PasswordReset *PasswordResetState
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return len(u.Columns()) == 0
}

// Columns returns the update as a column map for gorm's Updates.
func (u UserUpdate) Columns() map[string]interface{} {
	updates := map[string]interface{}{}
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Email != nil {
		updates["email"] = *u.Email
	}
	if u.Mobile != nil {
		updates["mobile"] = *u.Mobile
	}
	if u.PasswordHash != nil {
		updates["password_hash"] = *u.PasswordHash
	}
	if u.Avatar != nil {
		updates["avatar"] = *u.Avatar
	}
	if u.RefreshToken != nil {
		updates["refresh_token"] = *u.RefreshToken
	}
	if u.VerifyEmail != nil {
		updates["verify_email"] = *u.VerifyEmail
	}
	if u.LastLoginDate != nil {
		updates["last_login_date"] = *u.LastLoginDate
	}
	if u.PasswordReset != nil {
		updates["forgot_password_otp"] = u.PasswordReset.OTP
		updates["forgot_password_expiry"] = u.PasswordReset.Expiry
		updates["password_reset_allowed_until"] = u.PasswordReset.AllowedUntil
	}
	return updates
}

// Apply copies the set fields of the update onto user.
func (u UserUpdate) Apply(user *User) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.Mobile != nil {
		user.Mobile = *u.Mobile
	}
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
	if u.Avatar != nil {
		user.Avatar = *u.Avatar
	}
	if u.RefreshToken != nil {
		user.RefreshToken = *u.RefreshToken
	}
	if u.VerifyEmail != nil {
		user.VerifyEmail = *u.VerifyEmail
	}
	if u.LastLoginDate != nil {
		t := *u.LastLoginDate
		user.LastLoginDate = &t
	}
	if u.PasswordReset != nil {
		user.ForgotPasswordOTP = u.PasswordReset.OTP
		user.ForgotPasswordExpiry = copyTime(u.PasswordReset.Expiry)
		user.PasswordResetAllowedUntil = copyTime(u.PasswordReset.AllowedUntil)
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Sanitized returns a copy of the user without credentials or reset state.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	c.RefreshToken = ""
	c.ForgotPasswordOTP = ""
	c.ForgotPasswordExpiry = nil
	c.PasswordResetAllowedUntil = nil
	return &c
}
