package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/example/storefront/internal/models"
)

// ProfileCache caches the user-details projection.
type ProfileCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.User, bool, error)
	Set(ctx context.Context, user *models.User) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// RedisProfileCache stores profiles as JSON under "profile:<id>". A cache
// built without a client is disabled: reads miss and writes are no-ops.
type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileCache connects to redisURL. An empty URL returns a disabled cache.
func NewProfileCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisProfileCache, error) {
	if redisURL == "" {
		return &RedisProfileCache{}, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, oops.Code("REDIS_URL_INVALID").Wrap(err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, oops.Code("REDIS_PING_FAILED").Wrap(err)
	}

	return &RedisProfileCache{client: client, ttl: ttl}, nil
}

// Enabled reports whether the cache talks to redis.
func (c *RedisProfileCache) Enabled() bool {
	return c.client != nil
}

func profileKey(userID uuid.UUID) string {
	return "profile:" + userID.String()
}

// cachedProfile is the JSON form of the user-details projection. It never
// carries credentials.
type cachedProfile struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Avatar        string            `json:"avatar"`
	Mobile        string            `json:"mobile"`
	VerifyEmail   bool              `json:"verify_email"`
	LastLoginDate *time.Time        `json:"last_login_date"`
	Status        models.UserStatus `json:"status"`
	Role          models.UserRole   `json:"role"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Get implements ProfileCache.
func (c *RedisProfileCache) Get(ctx context.Context, userID uuid.UUID) (*models.User, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}

	data, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, oops.Code("CACHE_GET_FAILED").Wrap(err)
	}

	var p cachedProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, oops.Code("CACHE_DECODE_FAILED").Wrap(err)
	}

	user := &models.User{
		Name:          p.Name,
		Email:         p.Email,
		Avatar:        p.Avatar,
		Mobile:        p.Mobile,
		VerifyEmail:   p.VerifyEmail,
		LastLoginDate: p.LastLoginDate,
		Status:        p.Status,
		Role:          p.Role,
	}
	user.ID = p.ID
	user.CreatedAt = p.CreatedAt
	user.UpdatedAt = p.UpdatedAt
	return user, true, nil
}

// Set implements ProfileCache.
func (c *RedisProfileCache) Set(ctx context.Context, user *models.User) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(cachedProfile{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Avatar:        user.Avatar,
		Mobile:        user.Mobile,
		VerifyEmail:   user.VerifyEmail,
		LastLoginDate: user.LastLoginDate,
		Status:        user.Status,
		Role:          user.Role,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	})
	if err != nil {
		return oops.Code("CACHE_ENCODE_FAILED").Wrap(err)
	}

	if err := c.client.Set(ctx, profileKey(user.ID), data, c.ttl).Err(); err != nil {
		return oops.Code("CACHE_SET_FAILED").Wrap(err)
	}
	return nil
}

// Invalidate implements ProfileCache.
func (c *RedisProfileCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, profileKey(userID)).Err(); err != nil {
		return oops.Code("CACHE_DEL_FAILED").Wrap(err)
	}
	return nil
}

// Close releases the redis connection pool.
func (c *RedisProfileCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
