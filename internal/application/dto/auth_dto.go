package dto

import (
	"strings"

	"github.com/jhoicas/Auth-api/internal/domain"
	"github.com/jhoicas/Auth-api/pkg/resettoken"
)

// MinPasswordLength longitud mínima de password.
const MinPasswordLength = 8

// RegisterRequest entrada para registro.
type RegisterRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	UserName        string `json:"userName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	DOB             string `json:"dob,omitempty"`
	Gender          string `json:"gender,omitempty"`
}

// Validate reglas de formato del registro.
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return domain.Validation("first name is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return domain.Validation("last name is required")
	}
	if err := validateUserName(r.UserName); err != nil {
		return err
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if err := validateNewPassword(r.Password, r.ConfirmPassword); err != nil {
		return err
	}
	if _, err := ParseDOB(r.DOB); err != nil {
		return err
	}
	return validateGender(r.Gender)
}

// LoginRequest entrada para login: email o username.
type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

// Validate ambos campos son obligatorios.
func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.EmailOrUsername) == "" {
		return domain.Validation("email or username is required")
	}
	if r.Password == "" {
		return domain.Validation("password is required")
	}
	return nil
}

// ForgotPasswordRequest entrada de recuperación.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate email válido.
func (r *ForgotPasswordRequest) Validate() error { return validateEmail(r.Email) }

// ResetPasswordRequest entrada del reseteo.
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate token de 64 hex y password nueva confirmada.
func (r *ResetPasswordRequest) Validate() error {
	if !resettoken.WellFormed(r.Token) {
		return domain.Validation("invalid reset token")
	}
	return validateNewPassword(r.Password, r.ConfirmPassword)
}

// AuthResponse usuario más token de identidad; en login con cookie incluye la sesión.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	SessionID string       `json:"sessionId,omitempty"`
	Status    string       `json:"status,omitempty"`
}

// StatusResponse resultado de logout.
type StatusResponse struct {
	Status string `json:"status"`
}

// MessageResponse mensaje genérico (forgot/reset password).
type MessageResponse struct {
	Message string `json:"message"`
}

// MeResponse claims del token actual.
type MeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SessionResponse sesión visible para su dueño.
type SessionResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	CreatedAt string `json:"createdAt"`
	ExpiresAt string `json:"expiresAt"`
}

func validateNewPassword(pw, confirm string) error {
	if len(pw) < MinPasswordLength {
		return domain.Validation("password must be at least 8 characters")
	}
	if pw != confirm {
		return domain.Validation("passwords do not match")
	}
	return nil
}
