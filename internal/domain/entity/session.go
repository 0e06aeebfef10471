package entity

import (
	"errors"
	"time"
)

// SessionStatus estado de una sesión. Variante cerrada: Active, LoggedOut, Expired.
type SessionStatus int

const (
	SessionActive SessionStatus = iota + 1
	SessionLoggedOut
	SessionExpired
)

// ErrInvalidTransition la sesión ya está en un estado terminal.
var ErrInvalidTransition = errors.New("session: invalid status transition")

func (s SessionStatus) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionLoggedOut:
		return "logged_out"
	case SessionExpired:
		return "expired"
	}
	return "unknown"
}

// ParseSessionStatus convierte la representación almacenada.
func ParseSessionStatus(s string) (SessionStatus, bool) {
	switch s {
	case "active":
		return SessionActive, true
	case "logged_out":
		return SessionLoggedOut, true
	case "expired":
		return SessionExpired, true
	}
	return 0, false
}

// Terminal informa si no hay transición posible desde s.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionActive:
		return false
	case SessionLoggedOut, SessionExpired:
		return true
	}
	return true
}

// Session registro de un login (una fila por login).
type Session struct {
	ID          string // coincide con el id de la cookie de sesión
	UserID      string
	Status      SessionStatus
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   time.Time
	LoggedOutAt *time.Time
}

// ClientMeta datos del cliente que abrió la sesión.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// EffectiveStatus estado a la hora now: una sesión activa pasada su expiración es Expired
// aunque la fila todavía diga active.
func (s *Session) EffectiveStatus(now time.Time) SessionStatus {
	if s.Status == SessionActive && !now.Before(s.ExpiresAt) {
		return SessionExpired
	}
	return s.Status
}

// Transition aplica to sobre la sesión. Solo active -> logged_out y active -> expired son válidas;
// una sesión activa ya vencida solo puede pasar a expired.
func (s *Session) Transition(to SessionStatus, now time.Time) error {
	if s.Status.Terminal() {
		return ErrInvalidTransition
	}
	switch to {
	case SessionLoggedOut:
		if s.EffectiveStatus(now) == SessionExpired {
			return ErrInvalidTransition
		}
		s.Status = SessionLoggedOut
		t := now
		s.LoggedOutAt = &t
	case SessionExpired:
		s.Status = SessionExpired
	case SessionActive:
		return ErrInvalidTransition
	default:
		return ErrInvalidTransition
	}
	s.UpdatedAt = now
	return nil
}
