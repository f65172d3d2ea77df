package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"salepoint/internal/model"
	"salepoint/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

var cfg *config.JWTConfig

// UserClaims represents the JWT claims for an authenticated user. BusinessID
// is nil for super admins and unassigned accounts.
type UserClaims struct {
	UserID     uint       `json:"user_id"`
	Username   string     `json:"username"`
	Role       model.Role `json:"role"`
	BusinessID *uint      `json:"business_id,omitempty"`
	jwt.RegisteredClaims
}

// Initialize sets the signing configuration used by this package.
func Initialize(c *config.JWTConfig) {
	cfg = c
}

// GenerateToken creates a signed JWT for the given user.
func GenerateToken(user *model.User) (string, error) {
	if cfg == nil {
		return "", errors.New("jwt configuration not initialized")
	}

	claims := UserClaims{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		BusinessID: user.BusinessID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SigningKey))
}

// ValidateToken validates and parses the JWT token.
func ValidateToken(tokenString string) (*UserClaims, error) {
	if cfg == nil {
		return nil, errors.New("jwt configuration not initialized")
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.SigningKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
