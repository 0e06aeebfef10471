package entity

import "time"

// Role nivel de identidad del usuario. Conjunto cerrado: admin, manager, user.
type Role string

// Roles válidos para User.
const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// DefaultRole rol asignado en el registro.
const DefaultRole = RoleUser

// ParseRole valida s contra el enum cerrado de roles.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleUser:
		return Role(s), true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// Géneros aceptados en el perfil.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// User representa un usuario del sistema. Email y UserName son únicos globalmente.
type User struct {
	ID           string
	Email        string
	UserName     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FirstName    string
	LastName     string
	DOB          *time.Time // solo fecha
	Gender       string     // vacío, male, female, other
	Role         Role

	// Token de reseteo: solo el digest SHA-256 persiste, nunca el valor plano.
	PasswordResetTokenHash *string
	PasswordResetExpires   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasActiveResetToken informa si hay un token de reseteo vigente a la hora now.
func (u *User) HasActiveResetToken(now time.Time) bool {
	return u.PasswordResetTokenHash != nil && u.PasswordResetExpires != nil && now.Before(*u.PasswordResetExpires)
}

// ClearResetToken borra el par hash/expiración.
func (u *User) ClearResetToken() {
	u.PasswordResetTokenHash = nil
	u.PasswordResetExpires = nil
}

// DisplayName nombre usado en notificaciones: username, nombre o la parte local del email.
func (u *User) DisplayName() string {
	if u.UserName != "" {
		return u.UserName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}
