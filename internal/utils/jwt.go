package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that cannot be trusted
var ErrInvalidToken = errors.New("invalid token")

// TokenUser is the identity claim carried by a token
type TokenUser struct {
	ID string `json:"id"`
}

// JWTClaims custom claims for JWT
type JWTClaims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}

// JWTUtil provides JWT generation and validation
type JWTUtil struct {
	secretKey       []byte
	expirationHours int64 // zero or less issues tokens without an expiry
}

// NewJWTUtil creates a new JWTUtil
func NewJWTUtil(secretKey string, expirationHours int64) *JWTUtil {
	return &JWTUtil{secretKey: []byte(secretKey), expirationHours: expirationHours}
}

// GenerateToken signs a token bound to userID
func (ju *JWTUtil) GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		User: TokenUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Subject:  userID,
		},
	}
	if ju.expirationHours > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(time.Hour * time.Duration(ju.expirationHours)))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ju.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken verifies the signature and returns the user id the token is bound to
func (ju *JWTUtil) ValidateToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ju.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.User.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.User.ID, nil
}
