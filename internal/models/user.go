package models

import "strings"

// UserRole represents the roles recognised by the access gate.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleEditor UserRole = "editor"
	RoleUser   UserRole = "user"
)

// ParseRole normalises a backend-provided role string.
func ParseRole(raw string) UserRole {
	return UserRole(strings.ToLower(strings.TrimSpace(raw)))
}

// CanManageContent reports whether the role may enter the content workspace.
func (r UserRole) CanManageContent() bool {
	return r == RoleAdmin || r == RoleEditor
}

// CanManageUsers reports whether the role may enter user management.
func (r UserRole) CanManageUsers() bool {
	return r == RoleAdmin
}

// UserProfile is the backend's answer to /user/profile. The gateway never
// persists it; it lives for one request at most.
type UserProfile struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	IsActive bool     `json:"is_active"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// LoginRequest carries credentials forwarded to the backend.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse mirrors the backend's login payload. The token never reaches
// the browser as JSON; it is re-emitted as an HttpOnly cookie.
type LoginResponse struct {
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token,omitempty"`
	User    *UserProfile `json:"user,omitempty"`
}

// RegisterRequest carries a registration payload. Password policy is
// validated locally before any backend call.
type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ResetPasswordRequest is forwarded to the backend reset endpoint verbatim.
type ResetPasswordRequest struct {
	Email    string `json:"email,omitempty"`
	Token    string `json:"token,omitempty"`
	Password string `json:"password,omitempty"`
}

// UserAccessUpdate adjusts a managed user's role or active flag.
type UserAccessUpdate struct {
	Role     *UserRole `json:"role,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
}
