package memory

import (
	"context"

	"github.com/jhoicas/Auth-api/internal/domain/repository"
)

// TxRunner entrega los mismos repos en memoria; no hay rollback.
type TxRunner struct {
	users    *UserRepo
	sessions *SessionRepo
}

// NewTxRunner construye el runner sobre los repos dados.
func NewTxRunner(users *UserRepo, sessions *SessionRepo) *TxRunner {
	return &TxRunner{users: users, sessions: sessions}
}

func (r *TxRunner) Run(_ context.Context, fn func(
	users repository.UserRepository,
	sessions repository.SessionRepository,
) error) error {
	return fn(r.users, r.sessions)
}
