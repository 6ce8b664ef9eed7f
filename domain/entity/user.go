package entity

import (
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"-"`
	Role      string `json:"role"`
	// Bcrypt hash of the currently active refresh token. Nil means no
	// active session. Populated only by FindByIDWithRefreshHash.
	RefreshTokenHash *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewUser(id, email, firstName, lastName, password, role string) *User {
	now := time.Now()
	if role == "" {
		role = RoleUser
	}
	return &User{
		ID:        id,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Password:  password,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
