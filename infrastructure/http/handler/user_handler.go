package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/peroapp/pero/application/port/inbound"
	"github.com/peroapp/pero/domain/entity"
	"github.com/peroapp/pero/infrastructure/http/middleware"
	"github.com/peroapp/pero/infrastructure/http/response"
	"github.com/peroapp/pero/infrastructure/http/validator"
)

type UserHandler struct {
	userUseCase    inbound.UserUseCase
	authMiddleware *middleware.AuthMiddleware
}

func NewUserHandler(userUseCase inbound.UserUseCase, authMiddleware *middleware.AuthMiddleware) *UserHandler {
	return &UserHandler{
		userUseCase:    userUseCase,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes mounts the user management routes. CRUD is admin-only;
// password change is allowed for the account owner as well.
func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/users", h.authMiddleware.RequireAdmin(h.Create)).Methods(http.MethodPost)
	router.HandleFunc("/v1/users", h.authMiddleware.RequireAdmin(h.List)).Methods(http.MethodGet)
	router.HandleFunc("/v1/users/{id}", h.authMiddleware.RequireAdmin(h.Get)).Methods(http.MethodGet)
	router.HandleFunc("/v1/users/{id}", h.authMiddleware.RequireAdmin(h.Update)).Methods(http.MethodPatch)
	router.HandleFunc("/v1/users/{id}", h.authMiddleware.RequireAdmin(h.Delete)).Methods(http.MethodDelete)
	router.HandleFunc("/v1/users/{id}/password", h.authMiddleware.RequireAuth(h.UpdatePassword)).Methods(http.MethodPatch)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inbound.CreateUserRequest
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

	user, err := h.userUseCase.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "User created", user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userUseCase.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := h.userUseCase.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req inbound.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.Email != nil && !validator.ValidateEmail(*req.Email) {
		response.UnprocessableEntity(w, "Invalid email format")
		return
	}
	if req.Password != nil && !validator.ValidatePassword(*req.Password) {
		response.UnprocessableEntity(w, "Password must be at least 8 characters")
		return
	}

	user, err := h.userUseCase.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "User updated", user)
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	// Owners may change their own password; anyone else needs ADMIN.
	if claims.UserID != id && claims.Role != entity.RoleAdmin {
		response.Forbidden(w, "Cannot change another user's password")
		return
	}

	var req inbound.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if !validator.ValidatePassword(req.NewPassword) {
		response.UnprocessableEntity(w, "Password must be at least 8 characters")
		return
	}

	if err := h.userUseCase.UpdatePassword(r.Context(), id, req); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Password updated", nil)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.userUseCase.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "User deleted", nil)
}
