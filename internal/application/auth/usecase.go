package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Auth-api/internal/application/dto"
	"github.com/jhoicas/Auth-api/internal/domain"
	"github.com/jhoicas/Auth-api/internal/domain/entity"
	"github.com/jhoicas/Auth-api/internal/domain/repository"
	"github.com/jhoicas/Auth-api/pkg/jwt"
	"github.com/jhoicas/Auth-api/pkg/logger"
	"github.com/jhoicas/Auth-api/pkg/resettoken"
)

// Mensajes visibles para el cliente.
const (
	MsgEmailTaken         = "User with this email already exists"
	MsgUsernameTaken      = "Username is already taken"
	MsgInvalidCredentials = "Invalid email/username or password"
	MsgNoSession          = "No active session found"
	MsgLogoutFailed       = "Failed to logout"
	MsgResetSent          = "If an account with that email exists, a password reset link has been sent."
	MsgResetMailFailed    = "Failed to send password reset email. Please try again later."
	MsgResetInvalid       = "Invalid or expired reset token"
	MsgResetExpired       = "Reset token has expired. Please request a new password reset."
	MsgResetDone          = "Password has been reset successfully. You can now login with your new password."
)

// Claves que login escribe en la sesión de cookie.
const (
	SessionKeyUserID = "userId"
	SessionKeyEmail  = "email"
	SessionKeyRole   = "role"
	SessionKeyStatus = "status"
)

// PasswordHasher hash y verificación de contraseñas.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// TokenIssuer emite tokens de identidad.
type TokenIssuer interface {
	Issue(id jwt.Identity) (string, error)
}

// Notifier entrega el enlace de reseteo (SMTP en producción).
type Notifier interface {
	SendPasswordResetEmail(ctx context.Context, address, token, displayName string) error
}

// SessionStore registro de sesiones por login.
type SessionStore interface {
	Create(ctx context.Context, sessionID, userID string, meta entity.ClientMeta) (*entity.Session, error)
	SetStatus(ctx context.Context, sessionID string, status entity.SessionStatus) (*entity.Session, error)
	ListActiveForUser(ctx context.Context, userID string) ([]*entity.Session, error)
	LogoutAll(ctx context.Context, userID string) (int64, error)
}

// SessionContext contexto de sesión que viaja con la petición (cookie).
// *session.Session de fiber lo implementa.
type SessionContext interface {
	ID() string
	// Fresh true si la petición no traía una sesión guardada.
	Fresh() bool
	// Regenerate descarta la sesión guardada y asigna un id nuevo.
	Regenerate() error
	Set(key string, val interface{})
	Save() error
	Destroy() error
}

// AuthUseCase orquesta registro, login, logout y reseteo de contraseña.
type AuthUseCase struct {
	users    repository.UserRepository
	sessions SessionStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time
}

// Option configura el caso de uso.
type Option func(*AuthUseCase)

// WithClock reemplaza time.Now (tests de expiración).
func WithClock(now func() time.Time) Option {
	return func(uc *AuthUseCase) { uc.now = now }
}

// WithLogger eventos de seguridad (nunca se registran tokens ni contraseñas).
func WithLogger(l *logger.Logger) Option {
	return func(uc *AuthUseCase) { uc.log = l }
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	users repository.UserRepository,
	sessions SessionStore,
	hasher PasswordHasher,
	tokens TokenIssuer,
	notifier Notifier,
	opts ...Option,
) *AuthUseCase {
	uc := &AuthUseCase{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(uc)
	}
	return uc
}

// Register crea un usuario con rol user y devuelve usuario + token.
// Email y username tienen mensajes de conflicto distintos, también cuando el choque llega del INSERT.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if existing != nil {
		return nil, domain.Conflict(MsgEmailTaken)
	}
	existing, err = uc.users.GetByUserName(ctx, in.UserName)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if existing != nil {
		return nil, domain.Conflict(MsgUsernameTaken)
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.Internal(err)
	}
	dob, _ := dto.ParseDOB(in.DOB)
	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		UserName:     in.UserName,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		DOB:          dob,
		Gender:       in.Gender,
		Role:         entity.DefaultRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, conflictFromInsert(err)
	}

	token, err := uc.issue(user)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Msg("usuario registrado")
	return &dto.AuthResponse{User: dto.ToUserResponse(user), Token: token}, nil
}

// Login busca por email o username. Usuario inexistente y password incorrecta dan el mismo error.
// Si sc no es nil se registra la sesión y se estampan sus metadatos.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest, sc SessionContext, meta entity.ClientMeta) (*dto.AuthResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	user, err := uc.users.FindByEmailOrUserName(ctx, strings.TrimSpace(in.EmailOrUsername))
	if err != nil {
		return nil, domain.Internal(err)
	}
	if user == nil || !uc.hasher.Verify(in.Password, user.PasswordHash) {
		uc.log.Warn().Str("ip", meta.IPAddress).Msg("login fallido")
		return nil, domain.Unauthorized(MsgInvalidCredentials)
	}

	token, err := uc.issue(user)
	if err != nil {
		return nil, err
	}
	resp := &dto.AuthResponse{User: dto.ToUserResponse(user), Token: token}

	if sc != nil {
		sid, err := uc.bindSession(ctx, sc, user, meta)
		if err != nil {
			return nil, err
		}
		resp.SessionID = sid
		resp.Status = "login"
	}
	uc.log.Info().Str("user_id", user.ID).Bool("session", sc != nil).Msg("login")
	return resp, nil
}

// bindSession registra el login en sc. Solo se llama con credenciales ya verificadas: una
// sesión previa en la cookie se cierra y recibe un id nuevo, así cada login es una fila.
func (uc *AuthUseCase) bindSession(ctx context.Context, sc SessionContext, user *entity.User, meta entity.ClientMeta) (string, error) {
	if !sc.Fresh() {
		uc.closeSession(ctx, sc.ID())
		if err := sc.Regenerate(); err != nil {
			return "", domain.InternalMsg("failed to load session", err)
		}
	}
	// el id se lee antes de Save: el contexto no es utilizable después
	sid := sc.ID()
	if _, err := uc.sessions.Create(ctx, sid, user.ID, meta); err != nil {
		return "", err
	}
	sc.Set(SessionKeyUserID, user.ID)
	sc.Set(SessionKeyEmail, user.Email)
	sc.Set(SessionKeyRole, string(user.Role))
	sc.Set(SessionKeyStatus, "login")
	if err := sc.Save(); err != nil {
		// sin cookie que apunte a la fila nadie podría cerrarla
		uc.closeSession(ctx, sid)
		return "", domain.InternalMsg("failed to save session", err)
	}
	return sid, nil
}

// closeSession pasa la fila a logged_out, o a expired si ya venció. Una fila inexistente o ya
// terminal no es error; cualquier otra falla se registra y no interrumpe el flujo.
func (uc *AuthUseCase) closeSession(ctx context.Context, sid string) {
	_, err := uc.sessions.SetStatus(ctx, sid, entity.SessionLoggedOut)
	if errors.Is(err, domain.ErrConflict) {
		_, err = uc.sessions.SetStatus(ctx, sid, entity.SessionExpired)
		if errors.Is(err, domain.ErrConflict) {
			return
		}
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		uc.log.Warn().Err(err).Str("session_id", sid).Msg("cerrar sesión")
	}
}

// Logout cierra el registro de la sesión y destruye el contexto. Si la destrucción falla
// el logout falla entero.
func (uc *AuthUseCase) Logout(ctx context.Context, sc SessionContext) (*dto.StatusResponse, error) {
	if sc == nil || sc.ID() == "" {
		return nil, domain.Unauthorized(MsgNoSession)
	}
	sid := sc.ID()

	_, err := uc.sessions.SetStatus(ctx, sid, entity.SessionLoggedOut)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		// sesión de cookie sin fila (p. ej. creada antes del login)
	case errors.Is(err, domain.ErrConflict):
		// ya cerrada, o vencida sin marcar: se marca expired si aplica
		if _, err := uc.sessions.SetStatus(ctx, sid, entity.SessionExpired); err != nil && !errors.Is(err, domain.ErrConflict) {
			uc.log.Warn().Err(err).Str("session_id", sid).Msg("marcar sesión vencida")
		}
	default:
		return nil, err
	}

	sc.Set(SessionKeyStatus, "logout")
	if err := sc.Destroy(); err != nil {
		uc.log.Error().Err(err).Str("session_id", sid).Msg("destruir sesión")
		return nil, domain.InternalMsg(MsgLogoutFailed, err)
	}
	uc.log.Info().Str("session_id", sid).Msg("logout")
	return &dto.StatusResponse{Status: "logout"}, nil
}

// LogoutAll cierra todas las sesiones activas del usuario.
func (uc *AuthUseCase) LogoutAll(ctx context.Context, userID string) (int64, error) {
	return uc.sessions.LogoutAll(ctx, userID)
}

// Sessions sesiones activas del usuario.
func (uc *AuthUseCase) Sessions(ctx context.Context, userID string) ([]dto.SessionResponse, error) {
	list, err := uc.sessions.ListActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.SessionResponse{
			ID:        s.ID,
			Status:    s.Status.String(),
			IPAddress: s.IPAddress,
			UserAgent: s.UserAgent,
			CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
			ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// ForgotPassword emite un token de reseteo si el email existe. La respuesta es la misma exista o no.
// Si el envío falla se borra el token emitido.
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, in dto.ForgotPasswordRequest) (*dto.MessageResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, domain.Internal(err)
	}
	if user == nil {
		return &dto.MessageResponse{Message: MsgResetSent}, nil
	}

	plain, err := resettoken.Generate()
	if err != nil {
		return nil, domain.Internal(err)
	}
	hashed := resettoken.Hash(plain)
	expires := resettoken.ExpiresAt(uc.now())
	if err := uc.users.SetResetToken(ctx, user.ID, &hashed, &expires); err != nil {
		return nil, domain.Internal(err)
	}

	if err := uc.notifier.SendPasswordResetEmail(ctx, user.Email, plain, user.DisplayName()); err != nil {
		uc.log.Error().Err(err).Str("user_id", user.ID).Msg("envío de reseteo falló, se borra el token")
		if cerr := uc.users.SetResetToken(ctx, user.ID, nil, nil); cerr != nil {
			uc.log.Error().Err(cerr).Str("user_id", user.ID).Msg("borrar token de reseteo")
		}
		return nil, domain.InternalMsg(MsgResetMailFailed, err)
	}
	return &dto.MessageResponse{Message: MsgResetSent}, nil
}

// ResetPassword consume el token: inexistente -> inválido; vencido -> se borra y se informa;
// vigente -> nueva contraseña y token borrado.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, in dto.ResetPasswordRequest) (*dto.MessageResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	user, err := uc.users.FindByResetTokenHash(ctx, resettoken.Hash(in.Token))
	if err != nil {
		return nil, domain.Internal(err)
	}
	if user == nil || user.PasswordResetTokenHash == nil || !resettoken.Verify(in.Token, *user.PasswordResetTokenHash) {
		return nil, domain.Validation(MsgResetInvalid)
	}

	now := uc.now()
	if !user.HasActiveResetToken(now) {
		if err := uc.users.SetResetToken(ctx, user.ID, nil, nil); err != nil {
			return nil, domain.Internal(err)
		}
		return nil, domain.Validation(MsgResetExpired)
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.Internal(err)
	}
	// el token se consume con la escritura: una petición concurrente con el mismo token pierde aquí
	consumed, err := uc.users.ConsumeResetToken(ctx, user.ID, *user.PasswordResetTokenHash, hash, now)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if !consumed {
		return nil, domain.Validation(MsgResetInvalid)
	}
	uc.log.Info().Str("user_id", user.ID).Msg("contraseña reseteada")
	return &dto.MessageResponse{Message: MsgResetDone}, nil
}

func (uc *AuthUseCase) issue(u *entity.User) (string, error) {
	token, err := uc.tokens.Issue(jwt.Identity{UserID: u.ID, Email: u.Email, Role: string(u.Role)})
	if err != nil {
		return "", domain.Internal(err)
	}
	return token, nil
}

// conflictFromInsert la violación de unicidad del INSERT da el mismo error que el pre-chequeo.
func conflictFromInsert(err error) error {
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		return domain.Conflict(MsgUsernameTaken)
	case errors.Is(err, domain.ErrEmailTaken):
		return domain.Conflict(MsgEmailTaken)
	}
	return domain.Internal(err)
}
