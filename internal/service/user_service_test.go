package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicebox/voicebox-api/internal/domain"
	"github.com/voicebox/voicebox-api/internal/service/auth"
	"github.com/voicebox/voicebox-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// mockUserStore implements store.UserStore backed by a map, with Fn
// overrides for error injection.
type mockUserStore struct {
	users map[uuid.UUID]*domain.User

	GetByEmailFn               func(ctx context.Context, email string) (*domain.User, error)
	IncrementGenerationCountFn func(ctx context.Context, id uuid.UUID) error
}

var _ store.UserStore = (*mockUserStore)(nil)

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) IncrementGenerationCount(ctx context.Context, id uuid.UUID) error {
	if m.IncrementGenerationCountFn != nil {
		return m.IncrementGenerationCountFn(ctx, id)
	}
	user, ok := m.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	user.GenerationCount++
	return nil
}

func (m *mockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

func seedUser(t *testing.T, users *mockUserStore, email, password string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, password)
	require.NoError(t, err)
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user.HashedPassword = string(hashed)
	user.Password = ""
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestAuthenticateSuccess(t *testing.T) {
	t.Parallel()

	users := newMockUserStore()
	seeded := seedUser(t, users, "singer@example.com", "a-long-enough-password")
	svc := NewUserService(users, auth.NewBcryptVerifier(), nil, testLogger())

	user, err := svc.Authenticate(context.Background(), "singer@example.com", "a-long-enough-password")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	t.Parallel()

	users := newMockUserStore()
	seedUser(t, users, "singer@example.com", "a-long-enough-password")
	svc := NewUserService(users, auth.NewBcryptVerifier(), nil, testLogger())

	_, err := svc.Authenticate(context.Background(), "singer@example.com", "not-the-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newMockUserStore(), auth.NewBcryptVerifier(), nil, testLogger())

	// Unknown email and wrong password are indistinguishable to callers.
	_, err := svc.Authenticate(context.Background(), "ghost@example.com", "whatever-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	users := newMockUserStore()
	seeded := seedUser(t, users, "singer@example.com", "a-long-enough-password")
	svc := NewUserService(users, auth.NewBcryptVerifier(), nil, testLogger())

	user, err := svc.GetUser(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.Email, user.Email)

	_, err = svc.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestRecordGeneration(t *testing.T) {
	t.Parallel()

	users := newMockUserStore()
	seeded := seedUser(t, users, "singer@example.com", "a-long-enough-password")
	svc := NewUserService(users, auth.NewBcryptVerifier(), nil, testLogger())

	require.NoError(t, svc.RecordGeneration(context.Background(), seeded.ID))
	require.NoError(t, svc.RecordGeneration(context.Background(), seeded.ID))

	user, err := users.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.GenerationCount)
}
