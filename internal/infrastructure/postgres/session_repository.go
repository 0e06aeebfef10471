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

var _ repository.SessionRepository = (*SessionRepo)(nil)

const sessionColumns = `sid, user_id, status, ip_address, user_agent, expires_at, logged_out_at, created_at, updated_at`

// SessionRepo persistencia de sesiones en PostgreSQL.
type SessionRepo struct {
	q Querier
}

// NewSessionRepository construye el adaptador. Acepta pool o tx.
func NewSessionRepository(q Querier) *SessionRepo {
	return &SessionRepo{q: q}
}

func (r *SessionRepo) Create(ctx context.Context, s *entity.Session) error {
	query := `
		INSERT INTO sessions (sid, user_id, status, ip_address, user_agent, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.UserID, s.Status.String(), nullString(s.IPAddress), nullString(s.UserAgent),
		s.ExpiresAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepo) GetByID(ctx context.Context, sessionID string) (*entity.Session, error) {
	s, err := scanSession(r.q.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE sid = $1`, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// UpdateStatus escribe solo si la fila sigue activa; la condición en el WHERE serializa logouts concurrentes.
func (r *SessionRepo) UpdateStatus(ctx context.Context, s *entity.Session) error {
	query := `
		UPDATE sessions SET status = $2, updated_at = $3, logged_out_at = COALESCE($4, logged_out_at)
		WHERE sid = $1 AND status = 'active'`
	tag, err := r.q.Exec(ctx, query, s.ID, s.Status.String(), s.UpdatedAt, s.LoggedOutAt)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrInvalidTransition
	}
	return nil
}

func (r *SessionRepo) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]*entity.Session, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		WHERE user_id = $1 AND status = 'active' AND expires_at > $2
		ORDER BY created_at DESC`, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	out := []*entity.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SessionRepo) LogoutAllByUser(ctx context.Context, userID string, at time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE sessions SET status = 'logged_out', logged_out_at = $2, updated_at = $2
		WHERE user_id = $1 AND status = 'active'`, userID, at)
	if err != nil {
		return 0, fmt.Errorf("logout all sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE sessions SET status = 'expired', updated_at = $1
		WHERE status = 'active' AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("expire sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.Row) (*entity.Session, error) {
	var (
		s             entity.Session
		status        string
		ip, userAgent *string
	)
	err := row.Scan(&s.ID, &s.UserID, &status, &ip, &userAgent, &s.ExpiresAt, &s.LoggedOutAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	st, ok := entity.ParseSessionStatus(status)
	if !ok {
		return nil, fmt.Errorf("estado de sesión desconocido %q", status)
	}
	s.Status = st
	s.IPAddress = deref(ip)
	s.UserAgent = deref(userAgent)
	return &s, nil
}
