package auth_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Auth-api/internal/application/auth"
	"github.com/jhoicas/Auth-api/internal/application/dto"
	"github.com/jhoicas/Auth-api/internal/application/session"
	"github.com/jhoicas/Auth-api/internal/domain"
	"github.com/jhoicas/Auth-api/internal/domain/entity"
	"github.com/jhoicas/Auth-api/internal/infrastructure/memory"
	"github.com/jhoicas/Auth-api/pkg/jwt"
	"github.com/jhoicas/Auth-api/pkg/logger"
	"github.com/jhoicas/Auth-api/pkg/password"
	"github.com/jhoicas/Auth-api/pkg/resettoken"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// ─── dobles ──────────────────────────────────────────────────────────────────

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type sentMail struct{ address, token, name string }

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *fakeNotifier) SendPasswordResetEmail(_ context.Context, address, token, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{address, token, name})
	return nil
}

type fakeSession struct {
	id          string
	vals        map[string]interface{}
	fresh       bool
	saved       bool
	regenerated bool
	destroyed   bool
	saveErr     error
	destroyErr  error
}

func newFakeSession(id string) *fakeSession {
	return &fakeSession{id: id, vals: map[string]interface{}{}, fresh: true}
}

func (s *fakeSession) ID() string                      { return s.id }
func (s *fakeSession) Fresh() bool                     { return s.fresh }
func (s *fakeSession) Set(key string, val interface{}) { s.vals[key] = val }
func (s *fakeSession) Save() error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = true
	return nil
}

func (s *fakeSession) Regenerate() error {
	s.id += "-regen"
	s.fresh = true
	s.regenerated = true
	return nil
}

// returning simula la misma cookie en una petición posterior.
func (s *fakeSession) returning() *fakeSession {
	s.fresh = false
	s.saved = false
	return s
}
func (s *fakeSession) Destroy() error {
	if s.destroyErr != nil {
		return s.destroyErr
	}
	s.destroyed = true
	return nil
}

type fixture struct {
	uc       *auth.AuthUseCase
	users    *memory.UserRepo
	sessions *memory.SessionRepo
	store    *session.Store
	issuer   *jwt.Issuer
	notifier *fakeNotifier
	clock    *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := &clock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	users := memory.NewUserRepository()
	sessRepo := memory.NewSessionRepository()
	store := session.NewStore(sessRepo, 24*time.Hour, session.WithClock(c.now))
	issuer, err := jwt.NewIssuer(testSecret, "auth-api", 7*24*time.Hour, jwt.WithClock(c.now))
	require.NoError(t, err)
	n := &fakeNotifier{}
	uc := auth.NewAuthUseCase(users, store, password.NewHasher(4), issuer, n, auth.WithClock(c.now))
	return &fixture{uc: uc, users: users, sessions: sessRepo, store: store, issuer: issuer, notifier: n, clock: c}
}

func registerInput(email, userName string) dto.RegisterRequest {
	return dto.RegisterRequest{
		FirstName:       "Ana",
		LastName:        "Pérez",
		UserName:        userName,
		Email:           email,
		Password:        "secreto123",
		ConfirmPassword: "secreto123",
	}
}

func (f *fixture) register(t *testing.T, email, userName string) *dto.AuthResponse {
	t.Helper()
	resp, err := f.uc.Register(context.Background(), registerInput(email, userName))
	require.NoError(t, err)
	return resp
}

// ─── Register ────────────────────────────────────────────────────────────────

func TestRegister_TokenVerificaIdentidad(t *testing.T) {
	f := newFixture(t)
	resp := f.register(t, "Ana@Example.com", "ana")

	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Equal(t, "user", resp.User.Role)

	claims, err := f.issuer.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)

	stored, err := f.users.GetByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secreto123", stored.PasswordHash)
}

func TestRegister_ConflictosConMensajesDistintos(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana@example.com", "ana")

	_, err := f.uc.Register(context.Background(), registerInput("ANA@example.com", "otra"))
	require.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, auth.MsgEmailTaken, domain.MessageOf(err))

	_, err = f.uc.Register(context.Background(), registerInput("otra@example.com", "ana"))
	require.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, auth.MsgUsernameTaken, domain.MessageOf(err))
}

func TestRegister_Validacion(t *testing.T) {
	f := newFixture(t)
	in := registerInput("ana@example.com", "ana")
	in.ConfirmPassword = "distinta123"
	_, err := f.uc.Register(context.Background(), in)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

// Registros concurrentes con el mismo email: exactamente uno gana.
func TestRegister_ConcurrenteMismoEmail(t *testing.T) {
	f := newFixture(t)
	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.uc.Register(context.Background(), registerInput("race@example.com", fmt.Sprintf("user_%d", i)))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrConflict) {
				conflicts++
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}

// racyUsers simula que el pre-chequeo no ve al otro registro: el INSERT es quien detecta el choque.
type racyUsers struct {
	*memory.UserRepo
}

func (racyUsers) GetByEmail(context.Context, string) (*entity.User, error)    { return nil, nil }
func (racyUsers) GetByUserName(context.Context, string) (*entity.User, error) { return nil, nil }

func TestRegister_ConflictoDetectadoEnInsert(t *testing.T) {
	c := &clock{t: time.Now()}
	users := memory.NewUserRepository()
	issuer, err := jwt.NewIssuer(testSecret, "", time.Hour)
	require.NoError(t, err)
	uc := auth.NewAuthUseCase(racyUsers{users}, session.NewStore(memory.NewSessionRepository(), 0),
		password.NewHasher(4), issuer, &fakeNotifier{}, auth.WithClock(c.now))

	_, err = uc.Register(context.Background(), registerInput("a@example.com", "uno"))
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), registerInput("a@example.com", "dos"))
	require.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, auth.MsgEmailTaken, domain.MessageOf(err))

	_, err = uc.Register(context.Background(), registerInput("b@example.com", "uno"))
	require.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, auth.MsgUsernameTaken, domain.MessageOf(err))
}

// ─── Login / Logout ──────────────────────────────────────────────────────────

func TestLogin_ErrorGenericoIdentico(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana@example.com", "ana")
	ctx := context.Background()

	_, errUnknown := f.uc.Login(ctx, dto.LoginRequest{EmailOrUsername: "nadie", Password: "secreto123"}, nil, entity.ClientMeta{})
	_, errWrong := f.uc.Login(ctx, dto.LoginRequest{EmailOrUsername: "ana", Password: "incorrecta"}, nil, entity.ClientMeta{})

	require.True(t, errors.Is(errUnknown, domain.ErrUnauthorized))
	require.True(t, errors.Is(errWrong, domain.ErrUnauthorized))
	assert.Equal(t, domain.MessageOf(errUnknown), domain.MessageOf(errWrong))
}

func TestLogin_PorEmailOUsername(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ana@example.com", "ana")
	ctx := context.Background()

	for _, id := range []string{"ana", "ana@example.com", "ANA@example.com"} {
		resp, err := f.uc.Login(ctx, dto.LoginRequest{EmailOrUsername: id, Password: "secreto123"}, nil, entity.ClientMeta{})
		require.NoError(t, err, id)
		assert.Equal(t, reg.User.ID, resp.User.ID)
		assert.Empty(t, resp.SessionID)
	}
}

func TestLogin_ConSesionRegistraYEstampa(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ana@example.com", "ana")
	sc := newFakeSession("sid-1")

	resp, err := f.uc.Login(context.Background(), dto.LoginRequest{EmailOrUsername: "ana", Password: "secreto123"},
		sc, entity.ClientMeta{IPAddress: "1.2.3.4", UserAgent: "go-test"})
	require.NoError(t, err)
	assert.Equal(t, "sid-1", resp.SessionID)
	assert.Equal(t, "login", resp.Status)

	assert.True(t, sc.saved)
	assert.Equal(t, reg.User.ID, sc.vals[auth.SessionKeyUserID])
	assert.Equal(t, "user", sc.vals[auth.SessionKeyRole])
	assert.Equal(t, "login", sc.vals[auth.SessionKeyStatus])

	rec, err := f.sessions.GetByID(context.Background(), "sid-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, entity.SessionActive, rec.Status)
	assert.Equal(t, "1.2.3.4", rec.IPAddress)
}

// Un login fallido con una cookie viva no toca la sesión: el logout posterior la cierra.
func TestLogin_FallidoConCookieConservaSesion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ana@example.com", "ana")
	sc := newFakeSession("sid-1")
	_, err := f.uc.Login(ctx, dto.LoginRequest{EmailOrUsername: "ana", Password: "secreto123"}, sc, entity.ClientMeta{})
	require.NoError(t, err)

	sc.returning()
	_, err = f.uc.Login(ctx, dto.LoginRequest{EmailOrUsername: "ana", Password: "incorrecta1"}, sc, entity.ClientMeta{})
	require.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.False(t, sc.regenerated)
	assert.Equal(t, "sid-1", sc.ID())

	rec, err := f.sessions.GetByID(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionActive, rec.Status)

	_, err = f.uc.Logout(ctx, sc)
	require.NoError(t, err)
	rec, err = f.sessions.GetByID(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionLoggedOut, rec.Status)
}

// Re-login con la misma cookie: la fila anterior pasa a logged_out y la nueva usa otro id.
func TestLogin_ReloginCierraSesionAnterior(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ana@example.com", "ana")
	sc := newFakeSession("sid-1")
	_, err := f.uc.Login(ctx, dto.LoginRequest{EmailOrUsername: "ana", Password: "secreto123"}, sc, entity.ClientMeta{})
	require.NoError(t, err)

	sc.returning()
	resp, err := f.uc.Login(ctx, dto.LoginRequest{EmailOrUsername: "ana", Password: "secreto123"}, sc, entity.ClientMeta{})
	require.NoError(t, err)
	assert.True(t, sc.regenerated)
	assert.Equal(t, "sid-1-regen", resp.SessionID)

	old, err := f.sessions.GetByID(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionLoggedOut, old.Status)
	cur, err := f.sessions.GetByID(ctx, "sid-1-regen")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionActive, cur.Status)

	list, err := f.store.ListActiveForUser(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// Si la cookie no se puede guardar la fila recién creada no queda activa.
func TestLogin_FallaSaveCierraFila(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ana@example.com", "ana")
	sc := newFakeSession("sid-1")
	sc.saveErr = errors.New("storage caído")

	_, err := f.uc.Login(ctx, dto.LoginRequest{EmailOrUsername: "ana", Password: "secreto123"}, sc, entity.ClientMeta{})
	require.True(t, errors.Is(err, domain.ErrInternal))

	rec, err := f.sessions.GetByID(ctx, "sid-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, entity.SessionLoggedOut, rec.Status)
}

func TestLogout_SinSesion(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Logout(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogout_MarcaLoggedOutYDestruye(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana@example.com", "ana")
	sc := newFakeSession("sid-1")
	_, err := f.uc.Login(context.Background(), dto.LoginRequest{EmailOrUsername: "ana", Password: "secreto123"}, sc, entity.ClientMeta{})
	require.NoError(t, err)

	f.clock.advance(time.Minute)
	resp, err := f.uc.Logout(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, "logout", resp.Status)
	assert.True(t, sc.destroyed)

	rec, err := f.sessions.GetByID(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionLoggedOut, rec.Status)
	require.NotNil(t, rec.LoggedOutAt)
	assert.Equal(t, f.clock.now(), *rec.LoggedOutAt)
}

func TestLogout_SesionVencidaSeMarcaExpired(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana@example.com", "ana")
	sc := newFakeSession("sid-1")
	_, err := f.uc.Login(context.Background(), dto.LoginRequest{EmailOrUsername: "ana", Password: "secreto123"}, sc, entity.ClientMeta{})
	require.NoError(t, err)

	f.clock.advance(25 * time.Hour)
	_, err = f.uc.Logout(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, sc.destroyed)

	rec, err := f.sessions.GetByID(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionExpired, rec.Status)
}

func TestLogout_FallaDestroyEsFatal(t *testing.T) {
	f := newFixture(t)
	sc := newFakeSession("sid-x")
	sc.destroyErr = errors.New("storage caído")

	_, err := f.uc.Logout(context.Background(), sc)
	require.True(t, errors.Is(err, domain.ErrInternal))
	assert.Equal(t, auth.MsgLogoutFailed, domain.MessageOf(err))
}

// flakySessions deja fallar la persistencia al marcar expired.
type flakySessions struct {
	auth.SessionStore
}

func (s flakySessions) SetStatus(_ context.Context, _ string, status entity.SessionStatus) (*entity.Session, error) {
	if status == entity.SessionLoggedOut {
		return nil, &domain.Error{Kind: domain.ErrConflict, Message: "session is no longer active"}
	}
	return nil, domain.InternalMsg("failed to update session", errors.New("conexión cerrada"))
}

func TestLogout_FallaMarcarExpiredSeRegistra(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "warn", Output: &buf})
	f := newFixture(t)
	uc := auth.NewAuthUseCase(f.users, flakySessions{f.store}, password.NewHasher(4), f.issuer, f.notifier,
		auth.WithLogger(log))
	sc := newFakeSession("sid-vieja").returning()

	_, err := uc.Logout(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, sc.destroyed)
	assert.Contains(t, buf.String(), "sid-vieja")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestLogoutAll_YSessions(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ana@example.com", "ana")
	ctx := context.Background()
	for _, sid := range []string{"s1", "s2"} {
		_, err := f.uc.Login(ctx, dto.LoginRequest{EmailOrUsername: "ana", Password: "secreto123"}, newFakeSession(sid), entity.ClientMeta{})
		require.NoError(t, err)
	}

	list, err := f.uc.Sessions(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	n, err := f.uc.LogoutAll(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	list, err = f.uc.Sessions(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// ─── Forgot / Reset ──────────────────────────────────────────────────────────

func TestForgotPassword_EmailInexistenteMismoMensajeSinToken(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ana@example.com", "ana")
	ctx := context.Background()

	missing, err := f.uc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "nadie@example.com"})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.sent)

	u, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Nil(t, u.PasswordResetTokenHash)

	found, err := f.uc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, missing.Message, found.Message)
}

func TestForgotPassword_GuardaSoloDigest(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ana@example.com", "ana")
	ctx := context.Background()

	_, err := f.uc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	require.Len(t, f.notifier.sent, 1)
	mail := f.notifier.sent[0]
	assert.Equal(t, "ana@example.com", mail.address)
	assert.Equal(t, "ana", mail.name)
	assert.Len(t, mail.token, 64)

	u, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NotNil(t, u.PasswordResetTokenHash)
	assert.Equal(t, resettoken.Hash(mail.token), *u.PasswordResetTokenHash)
	assert.Equal(t, f.clock.now().Add(time.Hour), *u.PasswordResetExpires)
}

func TestForgotPassword_FallaNotificadorBorraToken(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ana@example.com", "ana")
	f.notifier.err = errors.New("smtp caído")

	_, err := f.uc.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{Email: "ana@example.com"})
	require.True(t, errors.Is(err, domain.ErrInternal))
	assert.Equal(t, auth.MsgResetMailFailed, domain.MessageOf(err))

	u, err := f.users.GetByID(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Nil(t, u.PasswordResetTokenHash)
	assert.Nil(t, u.PasswordResetExpires)
}

func TestForgotPassword_NuevoTokenInvalidaAnterior(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana@example.com", "ana")
	ctx := context.Background()

	_, err := f.uc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	_, err = f.uc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	require.Len(t, f.notifier.sent, 2)

	_, err = f.uc.ResetPassword(ctx, resetInput(f.notifier.sent[0].token, "nueva12345"))
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.uc.ResetPassword(ctx, resetInput(f.notifier.sent[1].token, "nueva12345"))
	assert.NoError(t, err)
}

func resetInput(token, pw string) dto.ResetPasswordRequest {
	return dto.ResetPasswordRequest{Token: token, Password: pw, ConfirmPassword: pw}
}

func TestResetPassword_UnSoloUso(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ana@example.com", "ana")
	ctx := context.Background()
	_, err := f.uc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	token := f.notifier.sent[0].token

	resp, err := f.uc.ResetPassword(ctx, resetInput(token, "nueva12345"))
	require.NoError(t, err)
	assert.Equal(t, auth.MsgResetDone, resp.Message)

	u, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Nil(t, u.PasswordResetTokenHash)

	_, err = f.uc.ResetPassword(ctx, resetInput(token, "otra123456"))
	require.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, auth.MsgResetInvalid, domain.MessageOf(err))

	_, err = f.uc.Login(ctx, dto.LoginRequest{EmailOrUsername: "ana", Password: "nueva12345"}, nil, entity.ClientMeta{})
	assert.NoError(t, err)
	_, err = f.uc.Login(ctx, dto.LoginRequest{EmailOrUsername: "ana", Password: "secreto123"}, nil, entity.ClientMeta{})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// slowHasher alarga la ventana entre la búsqueda del token y la escritura.
type slowHasher struct {
	*password.Hasher
}

func (h slowHasher) Hash(plaintext string) (string, error) {
	time.Sleep(20 * time.Millisecond)
	return h.Hasher.Hash(plaintext)
}

func TestResetPassword_ConcurrenteUnSoloExito(t *testing.T) {
	f := newFixture(t)
	uc := auth.NewAuthUseCase(f.users, f.store, slowHasher{password.NewHasher(4)}, f.issuer, f.notifier,
		auth.WithClock(f.clock.now))
	f.register(t, "ana@example.com", "ana")
	ctx := context.Background()
	_, err := uc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	token := f.notifier.sent[0].token

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.ResetPassword(ctx, resetInput(token, fmt.Sprintf("nueva1234%d", i)))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				success++
				return
			}
			errs = append(errs, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, success, "un token de reseteo solo se consume una vez")
	for _, err := range errs {
		assert.True(t, errors.Is(err, domain.ErrValidation))
		assert.Equal(t, auth.MsgResetInvalid, domain.MessageOf(err))
	}
}

func TestResetPassword_VencidoBorraToken(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ana@example.com", "ana")
	ctx := context.Background()
	_, err := f.uc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	token := f.notifier.sent[0].token

	f.clock.advance(time.Hour + time.Second)
	_, err = f.uc.ResetPassword(ctx, resetInput(token, "nueva12345"))
	require.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, auth.MsgResetExpired, domain.MessageOf(err))

	u, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.False(t, u.HasActiveResetToken(f.clock.now()))
	assert.Nil(t, u.PasswordResetTokenHash)

	_, err = f.uc.ResetPassword(ctx, resetInput(token, "nueva12345"))
	assert.Equal(t, auth.MsgResetInvalid, domain.MessageOf(err))
}

func TestResetPassword_TokenDesconocido(t *testing.T) {
	f := newFixture(t)
	plain, err := resettoken.Generate()
	require.NoError(t, err)
	_, err = f.uc.ResetPassword(context.Background(), resetInput(plain, "nueva12345"))
	require.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, auth.MsgResetInvalid, domain.MessageOf(err))
}
