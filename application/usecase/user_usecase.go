package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/peroapp/pero/application/port/inbound"
	"github.com/peroapp/pero/application/port/outbound"
	"github.com/peroapp/pero/domain/apperror"
	"github.com/peroapp/pero/domain/entity"
	"github.com/peroapp/pero/infrastructure/service/logger"
)

type UserUseCase struct {
	userRepository  outbound.UserRepository
	passwordService outbound.PasswordService
	logger          logger.Logger
}

func NewUserUseCase(
	userRepo outbound.UserRepository,
	passwordService outbound.PasswordService,
	logger logger.Logger,
) inbound.UserUseCase {
	return &UserUseCase{
		userRepository:  userRepo,
		passwordService: passwordService,
		logger:          logger,
	}
}

func (uc *UserUseCase) Create(ctx context.Context, req inbound.CreateUserRequest) (*inbound.UserResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperror.InvalidRequest("email and password are required")
	}
	if req.Role != "" && !entity.ValidRole(req.Role) {
		return nil, apperror.InvalidRequest("invalid role")
	}

	hashedPassword, err := uc.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal("password hashing failed", err)
	}

	user := entity.NewUser(
		uuid.New().String(),
		req.Email,
		req.FirstName,
		req.LastName,
		hashedPassword,
		req.Role,
	)

	if err := uc.userRepository.Create(ctx, user); err != nil {
		if errors.Is(err, outbound.ErrEmailAlreadyExists) {
			return nil, apperror.EmailAlreadyExists(req.Email)
		}
		uc.logger.Error(ctx, "Failed to create user", err, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.Internal("user creation failed", err)
	}

	return toUserResponse(user), nil
}

func (uc *UserUseCase) List(ctx context.Context) ([]*inbound.UserResponse, error) {
	users, err := uc.userRepository.FindAll(ctx)
	if err != nil {
		uc.logger.Error(ctx, "Failed to list users", err, map[string]interface{}{})
		return nil, apperror.Internal("user listing failed", err)
	}

	responses := make([]*inbound.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}
	return responses, nil
}

func (uc *UserUseCase) Get(ctx context.Context, id string) (*inbound.UserResponse, error) {
	user, err := uc.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (uc *UserUseCase) Update(ctx context.Context, id string, req inbound.UpdateUserRequest) (*inbound.UserResponse, error) {
	user, err := uc.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Role != nil {
		if !entity.ValidRole(*req.Role) {
			return nil, apperror.InvalidRequest("invalid role")
		}
		user.Role = *req.Role
	}
	if req.Password != nil {
		hashed, err := uc.passwordService.HashPassword(*req.Password)
		if err != nil {
			return nil, apperror.Internal("password hashing failed", err)
		}
		user.Password = hashed
	}
	user.UpdatedAt = time.Now()

	if err := uc.userRepository.Update(ctx, user); err != nil {
		if errors.Is(err, outbound.ErrEmailAlreadyExists) {
			return nil, apperror.EmailAlreadyExists(user.Email)
		}
		uc.logger.Error(ctx, "Failed to update user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, apperror.Internal("user update failed", err)
	}

	return toUserResponse(user), nil
}

// UpdatePassword verifies the old password before accepting the new one.
func (uc *UserUseCase) UpdatePassword(ctx context.Context, id string, req inbound.UpdatePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return apperror.InvalidRequest("old and new passwords are required")
	}

	user, err := uc.findUser(ctx, id)
	if err != nil {
		return err
	}

	isValid, err := uc.passwordService.VerifyPassword(req.OldPassword, user.Password)
	if err != nil {
		return apperror.Internal("password verification failed", err)
	}
	if !isValid {
		logger.LogAuthEvent(ctx, uc.logger, "password_change_invalid_old", id, false, map[string]interface{}{})
		return apperror.InvalidOldPassword()
	}

	hashed, err := uc.passwordService.HashPassword(req.NewPassword)
	if err != nil {
		return apperror.Internal("password hashing failed", err)
	}
	user.Password = hashed
	user.UpdatedAt = time.Now()

	if err := uc.userRepository.Update(ctx, user); err != nil {
		uc.logger.Error(ctx, "Failed to update password", err, map[string]interface{}{
			"user_id": id,
		})
		return apperror.Internal("password update failed", err)
	}

	logger.LogAuthEvent(ctx, uc.logger, "password_change_successful", id, true, map[string]interface{}{})
	return nil
}

func (uc *UserUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.findUser(ctx, id); err != nil {
		return err
	}

	if err := uc.userRepository.Delete(ctx, id); err != nil {
		uc.logger.Error(ctx, "Failed to delete user", err, map[string]interface{}{
			"user_id": id,
		})
		return apperror.Internal("user deletion failed", err)
	}
	return nil
}

func (uc *UserUseCase) findUser(ctx context.Context, id string) (*entity.User, error) {
	if id == "" {
		return nil, apperror.InvalidRequest("user ID is required")
	}
	user, err := uc.userRepository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, apperror.UserNotFound(id)
		}
		return nil, apperror.Internal("user lookup failed", err)
	}
	return user, nil
}

func toUserResponse(user *entity.User) *inbound.UserResponse {
	return &inbound.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
}
