package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Auth-api/internal/application/dto"
	"github.com/jhoicas/Auth-api/internal/application/usecase"
	"github.com/jhoicas/Auth-api/internal/domain"
	"github.com/jhoicas/Auth-api/internal/domain/entity"
	"github.com/jhoicas/Auth-api/internal/infrastructure/memory"
)

type fixture struct {
	uc       *usecase.UserUseCase
	users    *memory.UserRepo
	sessions *memory.SessionRepo
}

func newFixture() *fixture {
	users := memory.NewUserRepository()
	sessions := memory.NewSessionRepository()
	return &fixture{
		uc:       usecase.NewUserUseCase(users, memory.NewTxRunner(users, sessions), nil),
		users:    users,
		sessions: sessions,
	}
}

func (f *fixture) seed(t *testing.T, userName string, role entity.Role, created time.Time) *entity.User {
	t.Helper()
	u := &entity.User{
		ID:        uuid.New().String(),
		Email:     userName + "@example.com",
		UserName:  userName,
		FirstName: "Nombre " + userName,
		Role:      role,
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func strPtr(s string) *string { return &s }

func TestList_PaginadoYOrdenado(t *testing.T) {
	f := newFixture()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		f.seed(t, fmt.Sprintf("user_%02d", i), entity.RoleUser, base.Add(time.Duration(i)*time.Minute))
	}

	list, page, err := f.uc.List(context.Background(), dto.ListUsersRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 10)
	assert.Equal(t, "user_14", list[0].UserName)
	assert.Equal(t, dto.Pagination{Page: 1, Limit: 10, Total: 15, TotalPages: 2}, page)

	list, page, err = f.uc.List(context.Background(), dto.ListUsersRequest{Page: 2, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, page.Limit)
	assert.Empty(t, list)
}

func TestList_FiltrosBusquedaYRol(t *testing.T) {
	f := newFixture()
	now := time.Now()
	f.seed(t, "maria", entity.RoleManager, now)
	f.seed(t, "mario", entity.RoleUser, now)
	f.seed(t, "pedro", entity.RoleUser, now)

	list, page, err := f.uc.List(context.Background(), dto.ListUsersRequest{Search: "MAR"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, list, 2)

	list, _, err = f.uc.List(context.Background(), dto.ListUsersRequest{Search: "mar", Role: "manager"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "maria", list[0].UserName)

	_, _, err = f.uc.List(context.Background(), dto.ListUsersRequest{Role: "root"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestGetByID(t *testing.T) {
	f := newFixture()
	u := f.seed(t, "ana", entity.RoleUser, time.Now())

	got, err := f.uc.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.UserName)

	_, err = f.uc.GetByID(context.Background(), uuid.New().String())
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.uc.GetByID(context.Background(), "no-es-uuid")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestUpdate_SoloPropioPerfilSalvoPermiso(t *testing.T) {
	f := newFixture()
	ana := f.seed(t, "ana", entity.RoleUser, time.Now())
	luis := f.seed(t, "luis", entity.RoleUser, time.Now())
	jefe := f.seed(t, "jefe", entity.RoleManager, time.Now())
	admin := f.seed(t, "admin", entity.RoleAdmin, time.Now())
	in := dto.UpdateUserRequest{FirstName: strPtr("Nuevo")}

	_, err := f.uc.Update(context.Background(), luis.ID, in, usecase.Actor{UserID: ana.ID, Role: entity.RoleUser})
	require.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Equal(t, usecase.MsgOnlyOwnProfile, domain.MessageOf(err))

	// manager no tiene user:update
	_, err = f.uc.Update(context.Background(), luis.ID, in, usecase.Actor{UserID: jefe.ID, Role: entity.RoleManager})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	got, err := f.uc.Update(context.Background(), ana.ID, in, usecase.Actor{UserID: ana.ID, Role: entity.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, "Nuevo", got.FirstName)

	got, err = f.uc.Update(context.Background(), luis.ID, in, usecase.Actor{UserID: admin.ID, Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "Nuevo", got.FirstName)
}

func TestUpdate_ConflictosYCampos(t *testing.T) {
	f := newFixture()
	ana := f.seed(t, "ana", entity.RoleUser, time.Now())
	f.seed(t, "luis", entity.RoleUser, time.Now())
	self := usecase.Actor{UserID: ana.ID, Role: entity.RoleUser}

	_, err := f.uc.Update(context.Background(), ana.ID, dto.UpdateUserRequest{Email: strPtr("LUIS@example.com")}, self)
	require.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, usecase.MsgEmailInUse, domain.MessageOf(err))

	_, err = f.uc.Update(context.Background(), ana.ID, dto.UpdateUserRequest{UserName: strPtr("luis")}, self)
	require.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, usecase.MsgUsernameTaken, domain.MessageOf(err))

	got, err := f.uc.Update(context.Background(), ana.ID, dto.UpdateUserRequest{
		Email:  strPtr("Ana.Nueva@example.com"),
		DOB:    strPtr("1990-02-03"),
		Gender: strPtr("female"),
	}, self)
	require.NoError(t, err)
	assert.Equal(t, "ana.nueva@example.com", got.Email)
	assert.Equal(t, "1990-02-03", got.DOB)
	assert.Equal(t, "female", got.Gender)

	_, err = f.uc.Update(context.Background(), ana.ID, dto.UpdateUserRequest{DOB: strPtr("03/02/1990")}, self)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestDelete_Reglas(t *testing.T) {
	f := newFixture()
	admin := f.seed(t, "admin", entity.RoleAdmin, time.Now())
	jefe := f.seed(t, "jefe", entity.RoleManager, time.Now())
	ana := f.seed(t, "ana", entity.RoleUser, time.Now())
	ctx := context.Background()

	err := f.uc.Delete(ctx, admin.ID, usecase.Actor{UserID: admin.ID, Role: entity.RoleAdmin})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	err = f.uc.Delete(ctx, ana.ID, usecase.Actor{UserID: jefe.ID, Role: entity.RoleManager})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	err = f.uc.Delete(ctx, uuid.New().String(), usecase.Actor{UserID: admin.ID, Role: entity.RoleAdmin})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, f.uc.Delete(ctx, ana.ID, usecase.Actor{UserID: admin.ID, Role: entity.RoleAdmin}))
	got, err := f.users.GetByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateRole_CierraSesiones(t *testing.T) {
	f := newFixture()
	admin := f.seed(t, "admin", entity.RoleAdmin, time.Now())
	ana := f.seed(t, "ana", entity.RoleUser, time.Now())
	ctx := context.Background()
	now := time.Now()
	for _, sid := range []string{"s1", "s2"} {
		require.NoError(t, f.sessions.Create(ctx, &entity.Session{
			ID: sid, UserID: ana.ID, Status: entity.SessionActive, CreatedAt: now, UpdatedAt: now, ExpiresAt: now.Add(time.Hour),
		}))
	}

	got, err := f.uc.UpdateRole(ctx, ana.ID, dto.UpdateRoleRequest{Role: "manager"}, usecase.Actor{UserID: admin.ID, Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "manager", got.Role)

	active, err := f.sessions.ListActiveByUser(ctx, ana.ID, time.Now())
	require.NoError(t, err)
	assert.Empty(t, active)

	stored, err := f.users.GetByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleManager, stored.Role)
}

func TestUpdateRole_Validaciones(t *testing.T) {
	f := newFixture()
	admin := f.seed(t, "admin", entity.RoleAdmin, time.Now())
	ana := f.seed(t, "ana", entity.RoleUser, time.Now())
	ctx := context.Background()

	_, err := f.uc.UpdateRole(ctx, ana.ID, dto.UpdateRoleRequest{Role: "admin"}, usecase.Actor{UserID: ana.ID, Role: entity.RoleManager})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.uc.UpdateRole(ctx, ana.ID, dto.UpdateRoleRequest{Role: "superuser"}, usecase.Actor{UserID: admin.ID, Role: entity.RoleAdmin})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.uc.UpdateRole(ctx, uuid.New().String(), dto.UpdateRoleRequest{Role: "user"}, usecase.Actor{UserID: admin.ID, Role: entity.RoleAdmin})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
