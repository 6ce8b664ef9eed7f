package outbound

import "errors"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// TokenService signs and verifies time-bound tokens. Access and refresh
// tokens use independent secrets and TTLs so compromise of one class
// cannot mint the other.
type TokenService interface {
	SignAccessToken(claims TokenClaims) (string, error)
	SignRefreshToken(claims TokenClaims) (string, error)
	VerifyAccessToken(token string) (*TokenClaims, error)
	VerifyRefreshToken(token string) (*TokenClaims, error)
}
