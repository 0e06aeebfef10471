package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Auth-api/internal/domain/entity"
)

// UserFilter criterios de listado paginado.
type UserFilter struct {
	Search string      // subcadena sobre email, username, nombre y apellido (sin distinguir mayúsculas)
	Role   entity.Role // vacío = todos
	Limit  int
	Offset int
}

// UserRepository define el puerto de persistencia para User (DIP).
// Los Get/Find devuelven (nil, nil) cuando no hay fila.
type UserRepository interface {
	// Create persiste un usuario. Ante violación de unicidad devuelve
	// domain.ErrEmailTaken o domain.ErrUsernameTaken.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUserName(ctx context.Context, userName string) (*entity.User, error)
	// FindByEmailOrUserName una sola consulta que acepta cualquiera de los dos.
	FindByEmailOrUserName(ctx context.Context, identifier string) (*entity.User, error)
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*entity.User, error)
	// Update persiste perfil, rol y password. Mismas señales de unicidad que Create.
	Update(ctx context.Context, user *entity.User) error
	// ConsumeResetToken cambia el password y limpia el token de reseteo solo si el token
	// guardado sigue siendo tokenHash. false si otra petición ya lo consumió o lo reemplazó.
	ConsumeResetToken(ctx context.Context, userID, tokenHash, passwordHash string, at time.Time) (bool, error)
	// SetResetToken escribe (o limpia, con nil) el par hash/expiración del token de reseteo.
	SetResetToken(ctx context.Context, userID string, tokenHash *string, expires *time.Time) error
	List(ctx context.Context, f UserFilter) ([]*entity.User, int, error)
	Delete(ctx context.Context, id string) error
}
