// Package session registra cada login como una fila de sesión y gobierna sus transiciones
// de estado (active -> logged_out | expired).
package session

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/Auth-api/internal/domain"
	"github.com/jhoicas/Auth-api/internal/domain/entity"
	"github.com/jhoicas/Auth-api/internal/domain/repository"
	"github.com/jhoicas/Auth-api/pkg/logger"
)

// DefaultTTL vida de una sesión si no se configura otra.
const DefaultTTL = 24 * time.Hour

// Store SessionStore sobre el puerto de persistencia.
type Store struct {
	repo repository.SessionRepository
	ttl  time.Duration
	now  func() time.Time
	log  *logger.Logger
}

// Option configura el Store.
type Option func(*Store)

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger registra la limpieza periódica.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore construye el store; ttl <= 0 usa DefaultTTL.
func NewStore(repo repository.SessionRepository, ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{repo: repo, ttl: ttl, now: time.Now, log: logger.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TTL vida configurada.
func (s *Store) TTL() time.Duration { return s.ttl }

// Create inserta una sesión activa que vence en now + TTL.
func (s *Store) Create(ctx context.Context, sessionID, userID string, meta entity.ClientMeta) (*entity.Session, error) {
	if sessionID == "" || userID == "" {
		return nil, domain.Validation("session id and user id are required")
	}
	now := s.now()
	sess := &entity.Session{
		ID:        sessionID,
		UserID:    userID,
		Status:    entity.SessionActive,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, domain.InternalMsg("failed to create session", err)
	}
	return sess, nil
}

// SetStatus aplica la transición; pasar a logged_out sella la hora de logout.
// NotFound si no existe la fila, Conflict si la transición no es válida.
func (s *Store) SetStatus(ctx context.Context, sessionID string, status entity.SessionStatus) (*entity.Session, error) {
	sess, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, domain.InternalMsg("failed to load session", err)
	}
	if sess == nil {
		return nil, domain.NotFound("session not found")
	}
	if err := sess.Transition(status, s.now()); err != nil {
		return sess, &domain.Error{Kind: domain.ErrConflict, Message: "session is no longer active", Cause: err}
	}
	if err := s.repo.UpdateStatus(ctx, sess); err != nil {
		if errors.Is(err, entity.ErrInvalidTransition) {
			return sess, &domain.Error{Kind: domain.ErrConflict, Message: "session is no longer active", Cause: err}
		}
		return nil, domain.InternalMsg("failed to update session", err)
	}
	return sess, nil
}

// FindBySessionID devuelve la sesión con su estado efectivo a la hora actual, o (nil, nil).
func (s *Store) FindBySessionID(ctx context.Context, sessionID string) (*entity.Session, error) {
	sess, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, domain.InternalMsg("failed to load session", err)
	}
	if sess == nil {
		return nil, nil
	}
	sess.Status = sess.EffectiveStatus(s.now())
	return sess, nil
}

// ListActiveForUser sesiones activas y no vencidas del usuario.
func (s *Store) ListActiveForUser(ctx context.Context, userID string) ([]*entity.Session, error) {
	list, err := s.repo.ListActiveByUser(ctx, userID, s.now())
	if err != nil {
		return nil, domain.InternalMsg("failed to list sessions", err)
	}
	return list, nil
}

// LogoutAll pasa a logged_out todas las sesiones activas del usuario.
func (s *Store) LogoutAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.LogoutAllByUser(ctx, userID, s.now())
	if err != nil {
		return 0, domain.InternalMsg("failed to logout sessions", err)
	}
	return n, nil
}

// ExpireStale marca expired las sesiones activas vencidas.
func (s *Store) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireStale(ctx, s.now())
	if err != nil {
		return 0, domain.InternalMsg("failed to expire sessions", err)
	}
	return n, nil
}

// RunHousekeeping ejecuta ExpireStale cada interval hasta que ctx se cancele.
func (s *Store) RunHousekeeping(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ExpireStale(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("expirar sesiones")
				continue
			}
			if n > 0 {
				s.log.Info().Int64("expired", n).Msg("sesiones vencidas marcadas")
			}
		}
	}
}
