package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/logging"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

func init() {
	utils.PasswordCost = bcrypt.MinCost
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) last() Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type fakeAvatarStore struct {
	uploads []AvatarUpload
	err     error
}

func (s *fakeAvatarStore) Upload(_ context.Context, userID uuid.UUID, img AvatarUpload) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploads = append(s.uploads, img)
	return "https://cdn.test/" + AvatarKey(userID, img.Filename), nil
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]*models.User
	hits        int
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[uuid.UUID]*models.User{}}
}

func (c *fakeCache) Get(_ context.Context, id uuid.UUID) (*models.User, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.entries[id]
	if ok {
		c.hits++
		cp := *u
		return &cp, true, nil
	}
	return nil, false, nil
}

func (c *fakeCache) Set(_ context.Context, u *models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *u
	c.entries[u.ID] = &cp
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.invalidated++
	return nil
}

// brokenStore fails every call with err.
type brokenStore struct{ err error }

func (s brokenStore) Create(context.Context, *models.User) error { return s.err }
func (s brokenStore) FindByID(context.Context, uuid.UUID) (*models.User, error) {
	return nil, s.err
}
func (s brokenStore) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, s.err
}
func (s brokenStore) Update(context.Context, uuid.UUID, models.UserUpdate) error { return s.err }

// racingStore hides existing emails from FindByEmail, as if a concurrent
// registration had inserted between the check and the insert.
type racingStore struct{ *database.MemoryUserStore }

func (s racingStore) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, database.ErrUserNotFound
}

var errStoreDown = errors.New("connection refused")

type harness struct {
	svc     *AuthService
	users   *database.MemoryUserStore
	mailer  *fakeMailer
	avatars *fakeAvatarStore
	cache   *fakeCache
	cfg     *config.Config
	clock   time.Time
}

func testConfig() *config.Config {
	return &config.Config{
		FrontendURL:        "http://shop.test",
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     5 * time.Hour,
		RefreshTokenTTL:    7 * 24 * time.Hour,
		OTPTTL:             time.Hour,
		OTPLength:          6,
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		users:   database.NewMemoryUserStore(),
		mailer:  &fakeMailer{},
		avatars: &fakeAvatarStore{},
		cache:   newFakeCache(),
		cfg:     testConfig(),
		clock:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	h.svc = NewAuthService(h.users, h.mailer, h.avatars, h.cache, h.cfg, logging.Discard())
	h.svc.now = func() time.Time { return h.clock }
	return h
}

func (h *harness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

func (h *harness) register(t *testing.T, name, email, password string) *models.User {
	t.Helper()
	user, err := h.svc.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: password})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

func (h *harness) stored(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := h.users.FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("find %s: %v", email, err)
	}
	return user
}
