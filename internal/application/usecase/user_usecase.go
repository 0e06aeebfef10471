package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/Auth-api/internal/application/dto"
	"github.com/jhoicas/Auth-api/internal/application/session"
	"github.com/jhoicas/Auth-api/internal/domain"
	"github.com/jhoicas/Auth-api/internal/domain/entity"
	"github.com/jhoicas/Auth-api/internal/domain/rbac"
	"github.com/jhoicas/Auth-api/internal/domain/repository"
	"github.com/jhoicas/Auth-api/pkg/logger"
)

// Mensajes visibles para el cliente.
const (
	MsgUserNotFound     = "User not found"
	MsgEmailInUse       = "Email already in use"
	MsgUsernameTaken    = "Username is already taken"
	MsgOnlyOwnProfile   = "You can only update your own profile"
	MsgCannotDeleteSelf = "You cannot delete your own account"
	MsgOnlyAdminsDelete = "Only admins can delete users"
	MsgOnlyAdminsRole   = "Only admins can change user roles"
)

// Actor identidad de quien invoca (claims del token).
type Actor struct {
	UserID string
	Role   entity.Role
}

// TxRunner ejecuta fn con repos atados a una misma transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		users repository.UserRepository,
		sessions repository.SessionRepository,
	) error) error
}

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo repository.UserRepository
	tx   TxRunner
	log  *logger.Logger
	now  func() time.Time
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, tx TxRunner, log *logger.Logger) *UserUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UserUseCase{repo: repo, tx: tx, log: log, now: time.Now}
}

// List usuarios paginados, más recientes primero.
func (uc *UserUseCase) List(ctx context.Context, in dto.ListUsersRequest) ([]dto.UserResponse, dto.Pagination, error) {
	if err := in.Validate(); err != nil {
		return nil, dto.Pagination{}, err
	}
	page := in.PageRequest()
	users, total, err := uc.repo.List(ctx, repository.UserFilter{
		Search: strings.TrimSpace(in.Search),
		Role:   entity.Role(in.Role),
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, dto.Pagination{}, domain.Internal(err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.ToUserResponse(u))
	}
	return out, dto.NewPagination(page, total), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, uc.repo, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// Update edita el perfil. Un usuario edita el suyo; editar otro requiere user:update.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest, actor Actor) (*dto.UserResponse, error) {
	if id != actor.UserID && !rbac.HasPermission(actor.Role, rbac.PermUserUpdate) {
		return nil, domain.Forbidden(MsgOnlyOwnProfile)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	user, err := uc.load(ctx, uc.repo, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != user.Email {
			other, err := uc.repo.GetByEmail(ctx, email)
			if err != nil {
				return nil, domain.Internal(err)
			}
			if other != nil && other.ID != user.ID {
				return nil, domain.Conflict(MsgEmailInUse)
			}
			user.Email = email
		}
	}
	if in.UserName != nil && *in.UserName != user.UserName {
		other, err := uc.repo.GetByUserName(ctx, *in.UserName)
		if err != nil {
			return nil, domain.Internal(err)
		}
		if other != nil && other.ID != user.ID {
			return nil, domain.Conflict(MsgUsernameTaken)
		}
		user.UserName = *in.UserName
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.DOB != nil {
		user.DOB, _ = dto.ParseDOB(*in.DOB)
	}
	if in.Gender != nil {
		user.Gender = *in.Gender
	}
	user.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, updateConflict(err)
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// Delete elimina un usuario. Nadie se borra a sí mismo; requiere user:delete.
func (uc *UserUseCase) Delete(ctx context.Context, id string, actor Actor) error {
	if id == actor.UserID {
		return domain.Validation(MsgCannotDeleteSelf)
	}
	if !rbac.HasPermission(actor.Role, rbac.PermUserDelete) {
		return domain.Forbidden(MsgOnlyAdminsDelete)
	}
	if _, err := uc.load(ctx, uc.repo, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return domain.Internal(err)
	}
	uc.log.Info().Str("user_id", id).Str("actor", actor.UserID).Msg("usuario eliminado")
	return nil
}

// UpdateRole cambia el rol (solo admin) y cierra las sesiones del usuario en la misma transacción.
// Los tokens ya emitidos conservan el rol anterior hasta vencer.
func (uc *UserUseCase) UpdateRole(ctx context.Context, id string, in dto.UpdateRoleRequest, actor Actor) (*dto.UserResponse, error) {
	if actor.Role != entity.RoleAdmin {
		return nil, domain.Forbidden(MsgOnlyAdminsRole)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	role := entity.Role(in.Role)

	var updated *entity.User
	err := uc.tx.Run(ctx, func(users repository.UserRepository, sessions repository.SessionRepository) error {
		user, err := uc.load(ctx, users, id)
		if err != nil {
			return err
		}
		updated = user
		if user.Role == role {
			return nil
		}
		user.Role = role
		user.UpdatedAt = uc.now()
		if err := users.Update(ctx, user); err != nil {
			return domain.Internal(err)
		}
		n, err := session.NewStore(sessions, 0, session.WithClock(uc.now)).LogoutAll(ctx, id)
		if err != nil {
			return err
		}
		uc.log.Info().Str("user_id", id).Str("role", string(role)).Int64("sessions_closed", n).Msg("rol actualizado")
		return nil
	})
	if err != nil {
		return nil, domain.Internal(err)
	}
	resp := dto.ToUserResponse(updated)
	return &resp, nil
}

func (uc *UserUseCase) load(ctx context.Context, repo repository.UserRepository, id string) (*entity.User, error) {
	if err := dto.ValidateID(id); err != nil {
		return nil, err
	}
	user, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if user == nil {
		return nil, domain.NotFound(MsgUserNotFound)
	}
	return user, nil
}

func updateConflict(err error) error {
	if errors.Is(err, domain.ErrUsernameTaken) {
		return domain.Conflict(MsgUsernameTaken)
	}
	if errors.Is(err, domain.ErrEmailTaken) {
		return domain.Conflict(MsgEmailInUse)
	}
	return domain.Internal(err)
}
