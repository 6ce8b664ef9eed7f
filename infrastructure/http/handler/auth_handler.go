package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/peroapp/pero/application/port/inbound"
	"github.com/peroapp/pero/domain/apperror"
	"github.com/peroapp/pero/infrastructure/http/middleware"
	"github.com/peroapp/pero/infrastructure/http/response"
	"github.com/peroapp/pero/infrastructure/http/validator"
)

type AuthHandler struct {
	authUseCase inbound.AuthUseCase
}

func NewAuthHandler(authUseCase inbound.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req inbound.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if !validator.ValidateEmail(req.Email) {
		response.UnprocessableEntity(w, "Invalid email format")
		return
	}
	if !validator.ValidateRequired(req.Password) {
		response.UnprocessableEntity(w, "Password is required")
		return
	}

	loginRes, err := h.authUseCase.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Login successful", loginRes)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req inbound.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if !validator.ValidateEmail(req.Email) {
		response.UnprocessableEntity(w, "Invalid email format")
		return
	}
	if !validator.ValidatePassword(req.Password) {
		response.UnprocessableEntity(w, "Password must be at least 8 characters")
		return
	}

	registerRes, err := h.authUseCase.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Registration successful", registerRes)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req inbound.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if !validator.ValidateRequired(req.RefreshToken) {
		response.UnprocessableEntity(w, "Refresh token is required")
		return
	}

	refreshRes, err := h.authUseCase.Refresh(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Token refreshed", refreshRes)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.authUseCase.Logout(r.Context(), claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Logout successful", nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	me, err := h.authUseCase.Me(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", me)
}

// writeError maps usecase failures onto transport status codes through the
// domain error catalog.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		response.Error(w, apperror.HTTPStatus(appErr), appErr.Message)
		return
	}
	response.InternalServerError(w, "Internal server error")
}
