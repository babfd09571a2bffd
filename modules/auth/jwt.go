package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token signature or structure is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
	// ErrMalformedClaims is returned when a verified token carries no usable identity.
	ErrMalformedClaims = errors.New("token payload is invalid")
)

// JWTConfig holds token signing configuration.
type JWTConfig struct {
	SecretKey     string
	TokenDuration time.Duration
	Issuer        string
}

// DefaultJWTConfig returns a default JWT configuration.
// In production, the secret key should be loaded from environment variables.
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:     "your-secret-key-change-in-production",
		TokenDuration: time.Hour,
		Issuer:        "todo-api",
	}
}

// JWTClaims represents the custom claims carried by issued tokens.
type JWTClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies identity tokens. The secret is passed in
// explicitly; there is no ambient signing state.
type JWTManager struct {
	config JWTConfig
}

// NewJWTManager creates a new JWTManager with the given configuration.
func NewJWTManager(config JWTConfig) *JWTManager {
	return &JWTManager{
		config: config,
	}
}

// Generate creates a signed, time-limited token for the given user id.
func (m *JWTManager) Generate(userID string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.SecretKey))
}

// Validate verifies the token signature and expiry and returns the claims.
func (m *JWTManager) Validate(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.SecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, ErrMalformedClaims
	}

	return claims, nil
}

// TokenDuration returns the token lifetime in seconds.
func (m *JWTManager) TokenDuration() int64 {
	return int64(m.config.TokenDuration.Seconds())
}
