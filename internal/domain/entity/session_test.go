package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Auth-api/internal/domain/entity"
)

var t0 = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func activeSession() *entity.Session {
	return &entity.Session{
		ID:        "sid-1",
		UserID:    "u-1",
		Status:    entity.SessionActive,
		CreatedAt: t0,
		UpdatedAt: t0,
		ExpiresAt: t0.Add(24 * time.Hour),
	}
}

func TestSessionTransition_ActivaALoggedOut(t *testing.T) {
	s := activeSession()
	now := t0.Add(time.Hour)

	require.NoError(t, s.Transition(entity.SessionLoggedOut, now))
	assert.Equal(t, entity.SessionLoggedOut, s.Status)
	require.NotNil(t, s.LoggedOutAt)
	assert.Equal(t, now, *s.LoggedOutAt)
}

// Desde un estado terminal no hay salida.
func TestSessionTransition_EstadoTerminal(t *testing.T) {
	s := activeSession()
	require.NoError(t, s.Transition(entity.SessionLoggedOut, t0))

	assert.ErrorIs(t, s.Transition(entity.SessionExpired, t0), entity.ErrInvalidTransition)
	assert.ErrorIs(t, s.Transition(entity.SessionLoggedOut, t0), entity.ErrInvalidTransition)
	assert.ErrorIs(t, s.Transition(entity.SessionActive, t0), entity.ErrInvalidTransition)
}

// Una sesión vencida se detecta en lectura y solo puede marcarse como expired.
func TestSessionTransition_VencidaPerezosa(t *testing.T) {
	s := activeSession()
	late := t0.Add(25 * time.Hour)

	assert.Equal(t, entity.SessionExpired, s.EffectiveStatus(late))
	assert.ErrorIs(t, s.Transition(entity.SessionLoggedOut, late), entity.ErrInvalidTransition)
	require.NoError(t, s.Transition(entity.SessionExpired, late))
	assert.Equal(t, entity.SessionExpired, s.Status)
	assert.Nil(t, s.LoggedOutAt)
}

func TestParseSessionStatus(t *testing.T) {
	for _, st := range []entity.SessionStatus{entity.SessionActive, entity.SessionLoggedOut, entity.SessionExpired} {
		got, ok := entity.ParseSessionStatus(st.String())
		require.True(t, ok)
		assert.Equal(t, st, got)
	}
	_, ok := entity.ParseSessionStatus("login")
	assert.False(t, ok)
}

func TestParseRole(t *testing.T) {
	r, ok := entity.ParseRole("manager")
	assert.True(t, ok)
	assert.Equal(t, entity.RoleManager, r)
	_, ok = entity.ParseRole("superuser")
	assert.False(t, ok)
}
