package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Auth-api/internal/domain/entity"
	"github.com/jhoicas/Auth-api/internal/domain/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo sesiones en memoria indexadas por id de sesión.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

// NewSessionRepository construye un almacén vacío.
func NewSessionRepository() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]*entity.Session)}
}

func cloneSession(s *entity.Session) *entity.Session {
	c := *s
	if s.LoggedOutAt != nil {
		t := *s.LoggedOutAt
		c.LoggedOutAt = &t
	}
	return &c
}

func (r *SessionRepo) Create(_ context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; ok {
		return fmt.Errorf("memory: sesión %q duplicada", s.ID)
	}
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

func (r *SessionRepo) GetByID(_ context.Context, sessionID string) (*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[sessionID]; ok {
		return cloneSession(s), nil
	}
	return nil, nil
}

func (r *SessionRepo) UpdateStatus(_ context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.sessions[s.ID]
	if !ok || cur.Status != entity.SessionActive {
		return entity.ErrInvalidTransition
	}
	cur.Status = s.Status
	cur.UpdatedAt = s.UpdatedAt
	if s.LoggedOutAt != nil {
		t := *s.LoggedOutAt
		cur.LoggedOutAt = &t
	}
	return nil
}

func (r *SessionRepo) ListActiveByUser(_ context.Context, userID string, now time.Time) ([]*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entity.Session{}
	for _, s := range r.sessions {
		if s.UserID == userID && s.EffectiveStatus(now) == entity.SessionActive {
			out = append(out, cloneSession(s))
		}
	}
	return out, nil
}

func (r *SessionRepo) LogoutAllByUser(_ context.Context, userID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions {
		if s.UserID == userID && s.Status == entity.SessionActive {
			t := at
			s.Status = entity.SessionLoggedOut
			s.LoggedOutAt = &t
			s.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (r *SessionRepo) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions {
		if s.Status == entity.SessionActive && !now.Before(s.ExpiresAt) {
			s.Status = entity.SessionExpired
			s.UpdatedAt = now
			n++
		}
	}
	return n, nil
}
