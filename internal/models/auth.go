package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserRole distinguishes the administrative role from regular tutors.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleTutor UserRole = "TUTOR"
)

// AdminIdentity is the reserved display name recognized as the privileged
// caller. The match is exact and case-sensitive. This is a convention carried
// over from the legacy system, not an access control.
const AdminIdentity = "admin"

// RoleForIdentity maps a display name onto its role.
func RoleForIdentity(name string) UserRole {
	if name == AdminIdentity {
		return RoleAdmin
	}
	return RoleTutor
}

// LoginRequest carries the bare display name accepted as identity.
type LoginRequest struct {
	Name string `json:"name" validate:"required"`
}

// LoginResponse returns the issued token and resolved role.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	Name        string   `json:"name"`
	Role        UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Name string   `json:"name"`
	Role UserRole `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry the privileged role.
func (c *JWTClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
