package inbound

import (
	"context"
)

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Role      *string `json:"role,omitempty"`
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type UserUseCase interface {
	Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	List(ctx context.Context) ([]*UserResponse, error)
	Get(ctx context.Context, id string) (*UserResponse, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error)
	UpdatePassword(ctx context.Context, id string, req UpdatePasswordRequest) error
	Delete(ctx context.Context, id string) error
}
