package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/voicebox/voicebox-api/internal/domain"
	"github.com/voicebox/voicebox-api/internal/service/auth"
	"github.com/voicebox/voicebox-api/internal/store"
)

// UserService provides account operations: registration, credential
// verification, lookup, and lifecycle bookkeeping.
type UserService interface {
	// Register creates a new account with the given email and password.
	// Returns store.ErrEmailExists if the email is already registered and
	// domain validation errors for malformed input.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// Authenticate verifies an email/password pair.
	// Returns auth.ErrInvalidCredentials on any mismatch, without
	// distinguishing unknown emails from wrong passwords.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// RecordGeneration increments the user's generation counter. Called
	// once per admitted synthesis task.
	RecordGeneration(ctx context.Context, userID uuid.UUID) error

	// DeleteUser deletes a user by their ID. The user's tasks cascade.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	userStore store.UserStore
	verifier  auth.PasswordVerifier
	db        *sql.DB
	logger    *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService.
func NewUserService(userStore store.UserStore, verifier auth.PasswordVerifier, db *sql.DB, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		userStore: userStore,
		verifier:  verifier,
		db:        db,
		logger:    logger.With("component", "user_service"),
	}
}

// Register creates a new account inside a transaction so a partially
// created user never becomes visible.
func (s *UserServiceImpl) Register(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		s.logger.Debug("rejected registration input", "error", err)
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("attempted registration with existing email", "email", email)
			return nil, store.ErrEmailExists
		}
		s.logger.Error("failed to save user", "error", err, "email", email)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate verifies the credentials against the stored bcrypt hash.
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("login attempt for unknown email", "email", email)
			return nil, auth.ErrInvalidCredentials
		}
		s.logger.Error("failed to look up user for login", "error", err)
		return nil, fmt.Errorf("retrieving user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login attempt with wrong password", "user_id", user.ID)
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to retrieve user", "error", err, "user_id", userID)
		}
		return nil, err
	}
	return user, nil
}

// RecordGeneration increments the user's generation counter.
func (s *UserServiceImpl) RecordGeneration(ctx context.Context, userID uuid.UUID) error {
	if err := s.userStore.IncrementGenerationCount(ctx, userID); err != nil {
		s.logger.Warn("failed to record generation", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// DeleteUser deletes a user by their ID.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Delete(ctx, userID)
	})
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to delete user", "error", err, "user_id", userID)
		}
		return err
	}
	s.logger.Info("user deleted", "user_id", userID)
	return nil
}
