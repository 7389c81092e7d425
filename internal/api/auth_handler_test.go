package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicebox/voicebox-api/internal/domain"
	"github.com/voicebox/voicebox-api/internal/service/auth"
	"github.com/voicebox/voicebox-api/internal/store"
)

func newAuthHandler(users *mockUserService) *AuthHandler {
	jwt := auth.NewMockJWTService()
	return NewAuthHandler(users, jwt, time.Hour)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestRegisterSuccess(t *testing.T) {
	t.Parallel()

	handler := newAuthHandler(&mockUserService{})
	rr := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "singer@example.com",
		Password: "a-long-enough-password",
	})

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", resp.UserID.String())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	users := &mockUserService{
		RegisterFn: func(context.Context, string, string) (*domain.User, error) {
			return nil, store.ErrEmailExists
		},
	}
	rr := postJSON(t, newAuthHandler(users).Register, "/api/auth/register", RegisterRequest{
		Email:    "taken@example.com",
		Password: "a-long-enough-password",
	})

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	handler := newAuthHandler(&mockUserService{})

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "a-long-enough-password"}},
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "a-long-enough-password"}},
		{"short password", RegisterRequest{Email: "a@example.com", Password: "short"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := postJSON(t, handler.Register, "/api/auth/register", tc.req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	seeded, err := domain.NewUser("singer@example.com", "a-long-enough-password")
	require.NoError(t, err)

	users := &mockUserService{
		AuthenticateFn: func(ctx context.Context, email, password string) (*domain.User, error) {
			if email == seeded.Email && password == "a-long-enough-password" {
				return seeded, nil
			}
			return nil, auth.ErrInvalidCredentials
		},
	}
	handler := newAuthHandler(users)

	rr := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
		Email:    "singer@example.com",
		Password: "a-long-enough-password",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, seeded.ID, resp.UserID)
	assert.NotEmpty(t, resp.ExpiresAt)
}

func TestLoginBadCredentials(t *testing.T) {
	t.Parallel()

	users := &mockUserService{
		AuthenticateFn: func(context.Context, string, string) (*domain.User, error) {
			return nil, auth.ErrInvalidCredentials
		},
	}
	rr := postJSON(t, newAuthHandler(users).Login, "/api/auth/login", LoginRequest{
		Email:    "singer@example.com",
		Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid email or password", resp.Error)
}

func TestLoginMalformedBody(t *testing.T) {
	t.Parallel()

	handler := newAuthHandler(&mockUserService{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	handler.Login(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
