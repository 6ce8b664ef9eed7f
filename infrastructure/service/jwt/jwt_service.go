package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/peroapp/pero/application/port/outbound"
	"github.com/peroapp/pero/infrastructure/config"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// JWTService signs and verifies HS256 tokens. Access and refresh tokens
// carry the same claim shape but are signed with independent secrets and
// TTLs, and tagged with a type claim so one class cannot stand in for the
// other even if the secrets were ever set equal.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewJWTService(cfg *config.Config) (*JWTService, error) {
	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, fmt.Errorf("access and refresh secrets are required")
	}

	return &JWTService{
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}, nil
}

func (s *JWTService) SignAccessToken(claims outbound.TokenClaims) (string, error) {
	return s.sign(claims, tokenTypeAccess, s.accessSecret, s.accessTTL)
}

func (s *JWTService) SignRefreshToken(claims outbound.TokenClaims) (string, error) {
	return s.sign(claims, tokenTypeRefresh, s.refreshSecret, s.refreshTTL)
}

func (s *JWTService) VerifyAccessToken(token string) (*outbound.TokenClaims, error) {
	return s.verify(token, tokenTypeAccess, s.accessSecret)
}

func (s *JWTService) VerifyRefreshToken(token string) (*outbound.TokenClaims, error) {
	return s.verify(token, tokenTypeRefresh, s.refreshSecret)
}

func (s *JWTService) sign(claims outbound.TokenClaims, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	// jti keeps two tokens signed within the same second from being
	// byte-identical; rotation depends on the new token differing from
	// the one it replaces.
	tokenClaims := jwt.MapClaims{
		"sub":   claims.UserID,
		"email": claims.Email,
		"role":  claims.Role,
		"type":  tokenType,
		"jti":   uuid.New().String(),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims)

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, nil
}

func (s *JWTService) verify(tokenString, tokenType string, secret []byte) (*outbound.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Reject anything that is not HMAC, including alg=none.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, outbound.ErrTokenExpired
		}
		return nil, outbound.ErrTokenInvalid
	}

	if !token.Valid {
		return nil, outbound.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, outbound.ErrTokenInvalid
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return nil, outbound.ErrTokenInvalid
	}

	if claimedType, ok := claims["type"].(string); !ok || claimedType != tokenType {
		return nil, outbound.ErrTokenInvalid
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &outbound.TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
	}, nil
}
