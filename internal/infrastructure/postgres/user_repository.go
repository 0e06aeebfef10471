package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Auth-api/internal/domain/entity"
	"github.com/jhoicas/Auth-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, email, user_name, password, first_name, last_name, dob, gender, role,
		password_reset_token, password_reset_expires, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Acepta pool o tx.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, user_name, password, first_name, last_name, dob, gender, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.UserName, user.PasswordHash, nullString(user.FirstName), nullString(user.LastName),
		user.DOB, nullString(user.Gender), string(user.Role), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return userUniqueError(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.one(ctx, "get user by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail obtiene un usuario por email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.one(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE email = lower($1) LIMIT 1`, email)
}

// GetByUserName obtiene un usuario por username.
func (r *UserRepo) GetByUserName(ctx context.Context, userName string) (*entity.User, error) {
	return r.one(ctx, "get user by user_name", `SELECT `+userColumns+` FROM users WHERE user_name = $1 LIMIT 1`, userName)
}

// FindByEmailOrUserName una sola consulta para login.
func (r *UserRepo) FindByEmailOrUserName(ctx context.Context, identifier string) (*entity.User, error) {
	return r.one(ctx, "find user by email or user_name",
		`SELECT `+userColumns+` FROM users WHERE email = lower($1) OR user_name = $1 LIMIT 1`, identifier)
}

// FindByResetTokenHash busca por digest del token de reseteo.
func (r *UserRepo) FindByResetTokenHash(ctx context.Context, tokenHash string) (*entity.User, error) {
	return r.one(ctx, "find user by reset token",
		`SELECT `+userColumns+` FROM users WHERE password_reset_token = $1 LIMIT 1`, tokenHash)
}

func (r *UserRepo) one(ctx context.Context, op, query string, args ...any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Update actualiza perfil y rol (no toca password ni token de reseteo).
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET email = $2, user_name = $3, first_name = $4, last_name = $5, dob = $6,
			gender = $7, role = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.UserName, nullString(user.FirstName), nullString(user.LastName),
		user.DOB, nullString(user.Gender), string(user.Role), user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return userUniqueError(err)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// ConsumeResetToken cambia el password y limpia el token en un único UPDATE condicionado al token:
// de dos peticiones concurrentes con el mismo token solo una afecta la fila.
func (r *UserRepo) ConsumeResetToken(ctx context.Context, userID, tokenHash, passwordHash string, at time.Time) (bool, error) {
	query := `
		UPDATE users SET password = $3, password_reset_token = NULL, password_reset_expires = NULL, updated_at = $4
		WHERE id = $1 AND password_reset_token = $2`
	tag, err := r.q.Exec(ctx, query, userID, tokenHash, passwordHash, at)
	if err != nil {
		return false, fmt.Errorf("consume reset token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetResetToken escribe o limpia el token de reseteo. Sobrescribe cualquier token anterior.
func (r *UserRepo) SetResetToken(ctx context.Context, userID string, tokenHash *string, expires *time.Time) error {
	query := `
		UPDATE users SET password_reset_token = $2, password_reset_expires = $3, updated_at = now()
		WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, userID, tokenHash, expires); err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return nil
}

// List lista usuarios con filtros y paginación, más recientes primero.
func (r *UserRepo) List(ctx context.Context, f repository.UserFilter) ([]*entity.User, int, error) {
	where := `WHERE ($1 = '' OR email ILIKE '%' || $1 || '%' OR user_name ILIKE '%' || $1 || '%'
			OR first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%')
		AND ($2 = '' OR role = $2::user_role)`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM users `+where, f.Search, string(f.Role)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.q.Query(ctx,
		`SELECT `+userColumns+` FROM users `+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		f.Search, string(f.Role), f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	list := []*entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, total, rows.Err()
}

// Delete elimina un usuario por ID (sus sesiones caen por ON DELETE CASCADE).
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u                         entity.User
		firstName, lastName, gndr *string
		role                      string
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.UserName, &u.PasswordHash, &firstName, &lastName, &u.DOB, &gndr, &role,
		&u.PasswordResetTokenHash, &u.PasswordResetExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.FirstName = deref(firstName)
	u.LastName = deref(lastName)
	u.Gender = deref(gndr)
	u.Role = entity.Role(role)
	return &u, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
