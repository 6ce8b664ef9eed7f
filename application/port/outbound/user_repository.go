package outbound

import (
	"context"
	"errors"

	"github.com/peroapp/pero/domain/entity"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// UserRepository is the persistence boundary for user records. Default
// lookups never load the refresh-token hash; callers that need it must use
// FindByIDWithRefreshHash explicitly.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByIDWithRefreshHash(ctx context.Context, id string) (*entity.User, error)
	FindAll(ctx context.Context) ([]*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	// SetRefreshTokenHash atomically replaces the stored refresh-token
	// hash; nil clears it. A missing id is not an error so that logout
	// stays idempotent.
	SetRefreshTokenHash(ctx context.Context, id string, hash *string) error
	Delete(ctx context.Context, id string) error
}
