package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	StudentID string
	Email     string
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to students.
type AccessTokenClaims struct {
	StudentID string `json:"student_id"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
