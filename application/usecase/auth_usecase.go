package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/peroapp/pero/application/port/inbound"
	"github.com/peroapp/pero/application/port/outbound"
	"github.com/peroapp/pero/domain/apperror"
	"github.com/peroapp/pero/domain/entity"
	"github.com/peroapp/pero/infrastructure/service/logger"
)

type AuthUseCase struct {
	userRepository  outbound.UserRepository
	tokenService    outbound.TokenService
	passwordService outbound.PasswordService
	logger          logger.Logger
}

func NewAuthUseCase(
	userRepo outbound.UserRepository,
	tokenService outbound.TokenService,
	passwordService outbound.PasswordService,
	logger logger.Logger,
) inbound.AuthUseCase {
	return &AuthUseCase{
		userRepository:  userRepo,
		tokenService:    tokenService,
		passwordService: passwordService,
		logger:          logger,
	}
}

func (uc *AuthUseCase) Login(ctx context.Context, req inbound.LoginRequest) (*inbound.LoginResponse, error) {
	logger.LogAuthEvent(ctx, uc.logger, "login_attempt", "", true, map[string]interface{}{
		"email": req.Email,
	})

	if req.Email == "" || req.Password == "" {
		return nil, apperror.InvalidRequest("email and password are required")
	}

	// Unknown email and a wrong password must both surface as the same
	// InvalidCredentials failure.
	user, err := uc.userRepository.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			logger.LogAuthEvent(ctx, uc.logger, "login_failed_user_not_found", "", false, map[string]interface{}{
				"email": req.Email,
			})
			return nil, apperror.InvalidCredentials()
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.Internal("user lookup failed", err)
	}

	start := time.Now()
	isValid, err := uc.passwordService.VerifyPassword(req.Password, user.Password)
	logger.LogPerformance(ctx, uc.logger, "password_verification", time.Since(start), map[string]interface{}{
		"user_id": user.ID,
	})

	if err != nil {
		uc.logger.Error(ctx, "Password verification error", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperror.Internal("password verification failed", err)
	}
	if !isValid {
		logger.LogAuthEvent(ctx, uc.logger, "login_failed_invalid_password", user.ID, false, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.InvalidCredentials()
	}

	accessToken, refreshToken, err := uc.issueTokenPair(user)
	if err != nil {
		uc.logger.Error(ctx, "Failed to issue token pair", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperror.Internal("token issuance failed", err)
	}

	if err := uc.storeRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	logger.LogAuthEvent(ctx, uc.logger, "login_successful", user.ID, true, map[string]interface{}{
		"email": req.Email,
	})

	return &inbound.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         user.Role,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
	}, nil
}

// Register creates the user record and then performs a regular login with
// the fresh credentials, so registration always yields an authenticated
// session rather than just a created record.
func (uc *AuthUseCase) Register(ctx context.Context, req inbound.RegisterRequest) (*inbound.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperror.InvalidRequest("email and password are required")
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
		entity.RoleUser,
	)

	if err := uc.userRepository.Create(ctx, user); err != nil {
		if errors.Is(err, outbound.ErrEmailAlreadyExists) {
			logger.LogAuthEvent(ctx, uc.logger, "register_failed_email_taken", "", false, map[string]interface{}{
				"email": req.Email,
			})
			return nil, apperror.EmailAlreadyExists(req.Email)
		}
		uc.logger.Error(ctx, "Failed to create user", err, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.Internal("user creation failed", err)
	}

	logger.LogAuthEvent(ctx, uc.logger, "register_successful", user.ID, true, map[string]interface{}{
		"email": req.Email,
	})

	return uc.Login(ctx, inbound.LoginRequest{Email: req.Email, Password: req.Password})
}

func (uc *AuthUseCase) Refresh(ctx context.Context, req inbound.RefreshRequest) (*inbound.RefreshResponse, error) {
	if req.RefreshToken == "" {
		return nil, apperror.InvalidRefreshToken()
	}

	// Expired and malformed tokens are distinguished only here, for the
	// operator; the caller sees a single failure kind.
	claims, err := uc.tokenService.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		event := "refresh_token_invalid"
		if errors.Is(err, outbound.ErrTokenExpired) {
			event = "refresh_token_expired"
		}
		logger.LogSecurityEvent(ctx, uc.logger, event, "MEDIUM", map[string]interface{}{
			"token": "[REDACTED]",
		})
		return nil, apperror.InvalidRefreshToken()
	}

	user, err := uc.userRepository.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			logger.LogSecurityEvent(ctx, uc.logger, "refresh_user_not_found", "HIGH", map[string]interface{}{
				"user_id": claims.UserID,
			})
			return nil, apperror.InvalidRefreshToken()
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return nil, apperror.Internal("user lookup failed", err)
	}

	// The hash is excluded from default reads; fetch it explicitly.
	userWithHash, err := uc.userRepository.FindByIDWithRefreshHash(ctx, user.ID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, apperror.InvalidRefreshToken()
		}
		uc.logger.Error(ctx, "Failed to load refresh hash", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperror.Internal("refresh hash lookup failed", err)
	}

	// No stored hash means the session was ended by logout: the token may
	// still be valid by expiry, but replay is denied.
	if userWithHash.RefreshTokenHash == nil {
		logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_revoked_replay", "HIGH", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperror.RefreshTokenRevoked()
	}

	matches, err := uc.refreshTokenMatches(req.RefreshToken, *userWithHash.RefreshTokenHash)
	if err != nil {
		uc.logger.Error(ctx, "Refresh token comparison error", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperror.Internal("refresh token comparison failed", err)
	}
	if !matches {
		// Stale token superseded by a later rotation.
		logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_hash_mismatch", "HIGH", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperror.InvalidRefreshToken()
	}

	accessToken, refreshToken, err := uc.issueTokenPair(user)
	if err != nil {
		uc.logger.Error(ctx, "Failed to issue token pair", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperror.Internal("token issuance failed", err)
	}

	// Mandatory rotation: the presented token becomes permanently unusable
	// once the new hash is stored.
	if err := uc.storeRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	logger.LogAuthEvent(ctx, uc.logger, "token_refresh_successful", user.ID, true, map[string]interface{}{})

	return &inbound.RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout clears the stored refresh-token hash. Logging out an already
// logged-out (or unknown) user is not an error.
func (uc *AuthUseCase) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return apperror.InvalidRequest("user ID is required")
	}

	if err := uc.userRepository.SetRefreshTokenHash(ctx, userID, nil); err != nil {
		uc.logger.Error(ctx, "Failed to clear refresh token hash", err, map[string]interface{}{
			"user_id": userID,
		})
		return apperror.Internal("logout failed", err)
	}

	logger.LogAuthEvent(ctx, uc.logger, "logout_successful", userID, true, map[string]interface{}{})
	return nil
}

func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*inbound.MeResponse, error) {
	if userID == "" {
		return nil, apperror.InvalidRequest("user ID is required")
	}

	user, err := uc.userRepository.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, apperror.UserNotFound(userID)
		}
		return nil, apperror.Internal("user lookup failed", err)
	}

	return &inbound.MeResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}, nil
}

// issueTokenPair signs the access and refresh tokens concurrently. The two
// signings share no mutable state, so a buffered channel join is the only
// coordination needed.
func (uc *AuthUseCase) issueTokenPair(user *entity.User) (string, string, error) {
	claims := outbound.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	type signResult struct {
		token string
		err   error
	}

	refreshCh := make(chan signResult, 1)
	go func() {
		token, err := uc.tokenService.SignRefreshToken(claims)
		refreshCh <- signResult{token: token, err: err}
	}()

	accessToken, err := uc.tokenService.SignAccessToken(claims)
	refresh := <-refreshCh

	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}
	if refresh.err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", refresh.err)
	}

	return accessToken, refresh.token, nil
}

// storeRefreshToken hashes the refresh token and rotates the stored hash,
// overwriting whatever session was active before.
func (uc *AuthUseCase) storeRefreshToken(ctx context.Context, userID, refreshToken string) error {
	hash, err := uc.hashRefreshToken(refreshToken)
	if err != nil {
		uc.logger.Error(ctx, "Failed to hash refresh token", err, map[string]interface{}{
			"user_id": userID,
		})
		return apperror.Internal("refresh token hashing failed", err)
	}

	if err := uc.userRepository.SetRefreshTokenHash(ctx, userID, &hash); err != nil {
		uc.logger.Error(ctx, "Failed to store refresh token hash", err, map[string]interface{}{
			"user_id": userID,
		})
		return apperror.Internal("refresh token rotation failed", err)
	}
	return nil
}

// bcrypt caps its input at 72 bytes and a signed token is far longer, so
// the token is reduced to a SHA-256 digest before hashing. Comparison runs
// through the same digest.
func (uc *AuthUseCase) hashRefreshToken(token string) (string, error) {
	return uc.passwordService.HashPassword(digestToken(token))
}

func (uc *AuthUseCase) refreshTokenMatches(token, hash string) (bool, error) {
	return uc.passwordService.VerifyPassword(digestToken(token), hash)
}

func digestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
