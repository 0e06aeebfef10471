// Package memory repositorios en memoria: backend STORAGE_DRIVER=memory y dobles de test.
// Respetan las mismas restricciones de unicidad que el esquema de PostgreSQL.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Auth-api/internal/domain"
	"github.com/jhoicas/Auth-api/internal/domain/entity"
	"github.com/jhoicas/Auth-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo almacén de usuarios protegido por mutex.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

// NewUserRepository construye un almacén vacío.
func NewUserRepository() *UserRepo {
	return &UserRepo{users: make(map[string]*entity.User)}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	if u.DOB != nil {
		d := *u.DOB
		c.DOB = &d
	}
	if u.PasswordResetTokenHash != nil {
		h := *u.PasswordResetTokenHash
		c.PasswordResetTokenHash = &h
	}
	if u.PasswordResetExpires != nil {
		e := *u.PasswordResetExpires
		c.PasswordResetExpires = &e
	}
	return &c
}

// checkUnique equivale a los índices únicos de email y user_name. Requiere mu tomado.
func (r *UserRepo) checkUnique(u *entity.User) error {
	for id, o := range r.users {
		if id == u.ID {
			continue
		}
		if strings.EqualFold(o.Email, u.Email) {
			return domain.ErrEmailTaken
		}
		if o.UserName == u.UserName {
			return domain.ErrUsernameTaken
		}
	}
	return nil
}

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkUnique(user); err != nil {
		return err
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (r *UserRepo) find(match func(*entity.User) bool) *entity.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u)
		}
	}
	return nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *UserRepo) GetByUserName(_ context.Context, userName string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.UserName == userName }), nil
}

func (r *UserRepo) FindByEmailOrUserName(_ context.Context, identifier string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool {
		return strings.EqualFold(u.Email, identifier) || u.UserName == identifier
	}), nil
}

func (r *UserRepo) FindByResetTokenHash(_ context.Context, tokenHash string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool {
		return u.PasswordResetTokenHash != nil && *u.PasswordResetTokenHash == tokenHash
	}), nil
}

func (r *UserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[user.ID]
	if !ok {
		return nil
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}
	next := cloneUser(user)
	// Update no toca el token de reseteo; eso es SetResetToken.
	next.PasswordResetTokenHash = cur.PasswordResetTokenHash
	next.PasswordResetExpires = cur.PasswordResetExpires
	r.users[user.ID] = next
	return nil
}

func (r *UserRepo) ConsumeResetToken(_ context.Context, userID, tokenHash, passwordHash string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.PasswordResetTokenHash == nil || *u.PasswordResetTokenHash != tokenHash {
		return false, nil
	}
	u.PasswordHash = passwordHash
	u.PasswordResetTokenHash = nil
	u.PasswordResetExpires = nil
	u.UpdatedAt = at
	return true, nil
}

func (r *UserRepo) SetResetToken(_ context.Context, userID string, tokenHash *string, expires *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil
	}
	u.PasswordResetTokenHash = nil
	u.PasswordResetExpires = nil
	if tokenHash != nil {
		h := *tokenHash
		u.PasswordResetTokenHash = &h
	}
	if expires != nil {
		e := *expires
		u.PasswordResetExpires = &e
	}
	return nil
}

func (r *UserRepo) List(_ context.Context, f repository.UserFilter) ([]*entity.User, int, error) {
	r.mu.RLock()
	var matched []*entity.User
	q := strings.ToLower(f.Search)
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(u.Email), q) &&
			!strings.Contains(strings.ToLower(u.UserName), q) &&
			!strings.Contains(strings.ToLower(u.FirstName), q) &&
			!strings.Contains(strings.ToLower(u.LastName), q) {
			continue
		}
		matched = append(matched, cloneUser(u))
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	if f.Offset >= total {
		return []*entity.User{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return matched[f.Offset:end], total, nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}
