package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peroapp/pero/application/port/inbound"
	"github.com/peroapp/pero/domain/apperror"
	"github.com/peroapp/pero/infrastructure/http/response"
)

// stubAuthUseCase returns canned results per method.
type stubAuthUseCase struct {
	loginRes    *inbound.LoginResponse
	loginErr    error
	registerRes *inbound.LoginResponse
	registerErr error
	refreshRes  *inbound.RefreshResponse
	refreshErr  error
}

func (s *stubAuthUseCase) Login(ctx context.Context, req inbound.LoginRequest) (*inbound.LoginResponse, error) {
	return s.loginRes, s.loginErr
}

func (s *stubAuthUseCase) Register(ctx context.Context, req inbound.RegisterRequest) (*inbound.LoginResponse, error) {
	return s.registerRes, s.registerErr
}

func (s *stubAuthUseCase) Refresh(ctx context.Context, req inbound.RefreshRequest) (*inbound.RefreshResponse, error) {
	return s.refreshRes, s.refreshErr
}

func (s *stubAuthUseCase) Logout(ctx context.Context, userID string) error {
	return nil
}

func (s *stubAuthUseCase) Me(ctx context.Context, userID string) (*inbound.MeResponse, error) {
	return nil, apperror.UserNotFound(userID)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope
}

func TestLoginHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler := NewAuthHandler(&stubAuthUseCase{
			loginRes: &inbound.LoginResponse{
				AccessToken:  "at",
				RefreshToken: "rt",
				Role:         "USER",
				Email:        "a@x.com",
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
			strings.NewReader(`{"email":"a@x.com","password":"password123"}`))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := decodeEnvelope(t, rec)
		assert.True(t, envelope.Success)

		data, ok := envelope.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "at", data["access_token"])
		assert.Equal(t, "rt", data["refresh_token"])
	})

	t.Run("invalid credentials", func(t *testing.T) {
		handler := NewAuthHandler(&stubAuthUseCase{loginErr: apperror.InvalidCredentials()})

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
			strings.NewReader(`{"email":"a@x.com","password":"wrong-password"}`))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		envelope := decodeEnvelope(t, rec)
		assert.False(t, envelope.Success)
	})

	t.Run("malformed body", func(t *testing.T) {
		handler := NewAuthHandler(&stubAuthUseCase{})

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		handler := NewAuthHandler(&stubAuthUseCase{})

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
			strings.NewReader(`{"email":"not-an-email","password":"password123"}`))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestRegisterHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		handler := NewAuthHandler(&stubAuthUseCase{
			registerRes: &inbound.LoginResponse{AccessToken: "at", RefreshToken: "rt", Role: "USER"},
		})

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/register",
			strings.NewReader(`{"email":"a@x.com","password":"password123","first_name":"Ada"}`))
		rec := httptest.NewRecorder()
		handler.Register(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		handler := NewAuthHandler(&stubAuthUseCase{registerErr: apperror.EmailAlreadyExists("a@x.com")})

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/register",
			strings.NewReader(`{"email":"a@x.com","password":"password123"}`))
		rec := httptest.NewRecorder()
		handler.Register(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("short password", func(t *testing.T) {
		handler := NewAuthHandler(&stubAuthUseCase{})

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/register",
			strings.NewReader(`{"email":"a@x.com","password":"short"}`))
		rec := httptest.NewRecorder()
		handler.Register(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestRefreshHandler(t *testing.T) {
	t.Run("rotated pair returned", func(t *testing.T) {
		handler := NewAuthHandler(&stubAuthUseCase{
			refreshRes: &inbound.RefreshResponse{AccessToken: "at2", RefreshToken: "rt2"},
		})

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh",
			strings.NewReader(`{"refresh_token":"rt1"}`))
		rec := httptest.NewRecorder()
		handler.Refresh(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := decodeEnvelope(t, rec)
		data, ok := envelope.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "rt2", data["refresh_token"])
	})

	t.Run("revoked", func(t *testing.T) {
		handler := NewAuthHandler(&stubAuthUseCase{refreshErr: apperror.RefreshTokenRevoked()})

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh",
			strings.NewReader(`{"refresh_token":"rt1"}`))
		rec := httptest.NewRecorder()
		handler.Refresh(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		handler := NewAuthHandler(&stubAuthUseCase{})

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		handler.Refresh(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestLogoutHandlerRequiresClaims(t *testing.T) {
	handler := NewAuthHandler(&stubAuthUseCase{})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
