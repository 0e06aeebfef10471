package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Auth-api/internal/domain/entity"
)

// SessionRepository puerto de persistencia de sesiones (una fila por login).
type SessionRepository interface {
	Create(ctx context.Context, s *entity.Session) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, sessionID string) (*entity.Session, error)
	// UpdateStatus persiste Status, UpdatedAt y LoggedOutAt solo si la fila sigue activa;
	// si otra petición ya la cerró devuelve entity.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, s *entity.Session) error
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]*entity.Session, error)
	// LogoutAllByUser cierra todas las sesiones activas del usuario; devuelve cuántas.
	LogoutAllByUser(ctx context.Context, userID string, at time.Time) (int64, error)
	// ExpireStale marca expired las sesiones activas vencidas a la hora now.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}
