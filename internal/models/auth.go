package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthCredentials is shared by signup and login.
type AuthCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// UserSummary is the compact user embedded in token responses.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthTokenResponse returns an issued bearer token.
type AuthTokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        UserSummary `json:"user"`
}

// UserResponse describes the authenticated user.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// JWTClaims represents the JWT payload for access tokens. Subject carries the user id.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
