package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/voicebox/voicebox-api/internal/domain"
	"github.com/voicebox/voicebox-api/internal/platform/logger"
	"github.com/voicebox/voicebox-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// PostgresUserStore implements the store.UserStore interface using a
// PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db         store.DBTX
	bcryptCost int
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction
// managed by the caller, and the bcrypt cost used when hashing passwords.
// A cost outside bcrypt's valid range falls back to bcrypt.DefaultCost.
func NewPostgresUserStore(db store.DBTX, bcryptCost int) *PostgresUserStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &PostgresUserStore{
		db:         db,
		bcryptCost: bcryptCost,
	}
}

// WithTx returns a new PostgresUserStore bound to the given transaction.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:         tx,
		bcryptCost: s.bcryptCost,
	}
}

// Create validates the user, hashes the plaintext password, and inserts the
// row. The plaintext password is cleared on success.
// Returns store.ErrEmailExists when the email is already registered.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	if err := user.Validate(); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
	if err != nil {
		log.Error("failed to hash password", "user_id", user.ID, "error", err)
		return fmt.Errorf("hashing password: %w", err)
	}
	user.HashedPassword = string(hashed)

	query := `
		INSERT INTO users (id, email, hashed_password, is_admin, generation_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.HashedPassword,
		user.IsAdmin,
		user.GenerationCount,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrEmailExists
		}
		log.Error("failed to create user", "user_id", user.ID, "error", err)
		return store.NewStoreError("user", "create", "failed to insert user", MapError(err))
	}

	user.Password = ""
	return nil
}

// GetByID retrieves a user by primary key.
// Returns store.ErrUserNotFound when no row matches.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, hashed_password, is_admin, generation_count, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email address.
// Returns store.ErrUserNotFound when no row matches.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, hashed_password, is_admin, generation_count, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// IncrementGenerationCount adds one to the user's completed generation
// counter.
func (s *PostgresUserStore) IncrementGenerationCount(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET generation_count = generation_count + 1, updated_at = NOW()
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return store.NewStoreError("user", "increment_generation_count", "failed to update counter", MapError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("user", "increment_generation_count", "failed to read rows affected", err)
	}
	if affected == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// Delete removes a user permanently. The tasks table cascades on owner
// deletion.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("user", "delete", "failed to delete user", MapError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("user", "delete", "failed to read rows affected", err)
	}
	if affected == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// scanUser maps one users row into a domain.User.
func (s *PostgresUserStore) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.IsAdmin,
		&user.GenerationCount,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, store.ErrUserNotFound
		}
		return nil, store.NewStoreError("user", "get", "failed to scan user row", MapError(err))
	}
	return &user, nil
}
