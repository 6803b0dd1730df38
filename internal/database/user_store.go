package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/models"
)

// GormUserStore persists users through gorm.
type GormUserStore struct {
	db *gorm.DB
}

// NewUserStore constructs a GormUserStore. The connection must have been
// opened with TranslateError so duplicate emails surface as ErrEmailTaken.
func NewUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

// Create inserts a new user.
func (s *GormUserStore) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

// FindByID loads a user by primary key.
func (s *GormUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByEmail loads a user by exact email match.
func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Update writes the set fields of upd to the user with the given id.
func (s *GormUserStore) Update(ctx context.Context, id uuid.UUID, upd models.UserUpdate) error {
	updates := upd.Columns()
	if len(updates) == 0 {
		return nil
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrUserNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrEmailTaken
	default:
		return err
	}
}
