package models

import "github.com/golang-jwt/jwt/v5"

// RegisterRequest holds the instructor sign-up payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest holds credentials for authenticating an instructor.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse returns the issued token and instructor info.
type AuthResponse struct {
	Token      string         `json:"token"`
	Instructor InstructorInfo `json:"instructor"`
}

// JWTClaims represents the JWT payload for access tokens. Tokens are
// stateless: expiry and signature are the only validity checks.
type JWTClaims struct {
	InstructorID int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	IsAdmin      bool   `json:"is_admin"`
	jwt.RegisteredClaims
}
