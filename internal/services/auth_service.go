// Package services holds the account and session logic of the storefront
// together with the outbound integrations it relies on (mail, image storage,
// profile cache).
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/logging"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

// UserStore is the credential store used by AuthService. Implementations
// return database.ErrUserNotFound and database.ErrEmailTaken.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, upd models.UserUpdate) error
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService implements registration, login and session refresh, password
// reset and profile maintenance. It keeps no per-user state in memory.
type AuthService struct {
	users   UserStore
	mailer  Mailer
	avatars AvatarStore
	cache   ProfileCache
	cfg     *config.Config
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuthService wires an AuthService from its collaborators.
func NewAuthService(users UserStore, mailer Mailer, avatars AvatarStore, cache ProfileCache, cfg *config.Config, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:   users,
		mailer:  mailer,
		avatars: avatars,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// RegisterInput is the payload of Register.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates an unverified account and emails a verification link.
// A duplicate email yields a KindConflict error and creates nothing. The
// returned record carries no password hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, newError(KindValidation, "All fields must be filled in")
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	if err == nil {
		return nil, newError(KindConflict, "This email is already in use")
	}
	if !errors.Is(err, database.ErrUserNotFound) {
		return nil, s.storeError("FindByEmail", err)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Status:       models.StatusActive,
		Role:         models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return nil, newError(KindConflict, "This email is already in use")
		}
		return nil, s.storeError("Create", err)
	}

	verifyURL := fmt.Sprintf("%s/verify-email?code=%s", s.cfg.FrontendURL, user.ID)
	msg, err := VerifyEmailMessage(user.Email, user.Name, verifyURL)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		logging.LogError(s.logger, "verification email not sent", oops.
			Code("VERIFY_EMAIL_SEND_FAILED").
			With("user_id", user.ID.String()).
			Wrap(err))
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID.String())
	return user.Sanitized(), nil
}

// VerifyEmail marks the account whose ID equals code as verified. Verifying
// an already verified account succeeds again without further effect.
func (s *AuthService) VerifyEmail(ctx context.Context, code string) error {
	if code == "" {
		return newError(KindValidation, "Provide code")
	}

	id, err := uuid.Parse(code)
	if err != nil {
		return newError(KindNotFound, "Invalid code")
	}

	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return newError(KindNotFound, "Invalid code")
		}
		return s.storeError("FindByID", err)
	}

	verified := true
	if err := s.users.Update(ctx, id, models.UserUpdate{VerifyEmail: &verified}); err != nil {
		return s.storeError("Update", err)
	}

	s.invalidateProfile(ctx, id)
	return nil
}

// Login checks the credentials of an active account and issues a token pair.
// The refresh token replaces whatever token the account stored before.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if email == "" || password == "" {
		return nil, newError(KindValidation, "provide email, password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, newError(KindNotFound, "User not register")
		}
		return nil, s.storeError("FindByEmail", err)
	}

	if !user.IsActive() {
		return nil, newError(KindForbidden, "Contact to Admin")
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, newError(KindInvalidCredentials, "Check your password")
	}

	accessToken, err := s.issueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.issueRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.users.Update(ctx, user.ID, models.UserUpdate{LastLoginDate: &now}); err != nil {
		return nil, s.storeError("Update", err)
	}

	s.invalidateProfile(ctx, user.ID)
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID.String())
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout forgets the stored refresh token of the user. Logging out twice, or
// with a session whose user no longer exists, succeeds.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	empty := ""
	err := s.users.Update(ctx, userID, models.UserUpdate{RefreshToken: &empty})
	if err != nil && !errors.Is(err, database.ErrUserNotFound) {
		return s.storeError("Update", err)
	}

	s.invalidateProfile(ctx, userID)
	return nil
}

// RefreshAccessToken mints a new access token from a refresh token. The
// refresh token must carry a valid signature and still be the one stored
// for its user; it is not rotated.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", newError(KindUnauthenticated, "Invalid token")
	}

	userID, err := utils.ParseToken(s.cfg.RefreshTokenSecret, refreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrMissingSecret) {
			return "", s.signingError(err)
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", wrapError(KindUnauthenticated, "Refresh token is expired", err)
		}
		return "", wrapError(KindUnauthenticated, "Invalid token", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return "", newError(KindUnauthenticated, "Invalid token")
		}
		return "", s.storeError("FindByID", err)
	}

	if user.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(refreshToken)) != 1 {
		return "", newError(KindUnauthenticated, "Refresh token is no longer valid")
	}

	return s.issueAccessToken(user.ID)
}

func (s *AuthService) issueAccessToken(userID uuid.UUID) (string, error) {
	token, err := utils.GenerateToken(s.cfg.AccessTokenSecret, userID, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", s.signingError(err)
	}
	return token, nil
}

// issueRefreshToken signs a refresh token and stores it as the user's single
// current refresh token, overwriting any previous one.
func (s *AuthService) issueRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := utils.GenerateToken(s.cfg.RefreshTokenSecret, userID, s.cfg.RefreshTokenTTL)
	if err != nil {
		return "", s.signingError(err)
	}

	if err := s.users.Update(ctx, userID, models.UserUpdate{RefreshToken: &token}); err != nil {
		return "", s.storeError("Update", err)
	}
	return token, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := utils.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", newError(KindValidation, "Password must be at most 72 bytes long")
	}
	if err != nil {
		return "", wrapError(KindInternal, "Failed to process password", oops.Code("HASH_FAILED").Wrap(err))
	}
	return hash, nil
}

func (s *AuthService) storeError(operation string, err error) *AppError {
	return wrapError(KindStore, "Something went wrong, please try again later",
		oops.Code("STORE_ERROR").With("operation", operation).Wrap(err))
}

func (s *AuthService) signingError(err error) *AppError {
	return wrapError(KindSigning, "Failed to generate token", oops.Code("SIGNING_ERROR").Wrap(err))
}

func (s *AuthService) invalidateProfile(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logging.LogError(s.logger, "profile cache invalidation failed", err)
	}
}
