package models

import "github.com/golang-jwt/jwt/v4"

// SessionClaims are custom claims extending standard jwt.RegisteredClaims,
// shared by the password and OAuth login paths.
type SessionClaims struct {
	Username string `json:"username"`
	UserID   string `json:"id"`
	jwt.RegisteredClaims
}
