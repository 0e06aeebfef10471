package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/jhoicas/Auth-api/internal/application/auth"
	"github.com/jhoicas/Auth-api/internal/application/dto"
	"github.com/jhoicas/Auth-api/internal/domain"
	"github.com/jhoicas/Auth-api/internal/domain/entity"
)

// AuthHandler registro, login, logout y reseteo de contraseña.
type AuthHandler struct {
	uc       *auth.AuthUseCase
	sessions *session.Store
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, sessions *session.Store) *AuthHandler {
	return &AuthHandler{uc: uc, sessions: sessions}
}

// Register godoc
// @Summary      Registrar usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "datos de registro"
// @Success      201   {object}  dto.Envelope{data=dto.AuthResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, "User registered successfully", out)
}

// Login godoc
// @Summary      Iniciar sesión con email o username
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "emailOrUsername, password"
// @Success      200   {object}  dto.Envelope{data=dto.AuthResponse}
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	sess, err := h.sessions.Get(c)
	if err != nil {
		return domain.InternalMsg("failed to load session", err)
	}
	// la sesión de la cookie solo se regenera si las credenciales son válidas
	out, err := h.uc.Login(c.UserContext(), in, sess, clientMeta(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Login successful", out)
}

// Logout godoc
// @Summary      Cerrar la sesión de cookie actual
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=dto.StatusResponse}
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return domain.InternalMsg("failed to load session", err)
	}
	var sc auth.SessionContext
	if !sess.Fresh() {
		sc = sess
	}
	out, err := h.uc.Logout(c.UserContext(), sc)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Logout successful", out)
}

// ForgotPassword godoc
// @Summary      Solicitar enlace de reseteo
// @Description  La respuesta es idéntica exista o no la cuenta.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ForgotPasswordRequest  true  "email"
// @Success      200   {object}  dto.Envelope{data=dto.MessageResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var in dto.ForgotPasswordRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.ForgotPassword(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out.Message, out)
}

// ResetPassword godoc
// @Summary      Cambiar contraseña con el token de reseteo
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResetPasswordRequest  true  "token, password, confirmPassword"
// @Success      200   {object}  dto.Envelope{data=dto.MessageResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var in dto.ResetPasswordRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.ResetPassword(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out.Message, out)
}

// Me godoc
// @Summary      Identidad del token actual
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.Envelope{data=dto.MeResponse}
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return ok(c, fiber.StatusOK, "Current user", dto.MeResponse{
		ID:    GetUserID(c),
		Email: GetEmail(c),
		Role:  string(GetRole(c)),
	})
}

// Sessions godoc
// @Summary      Sesiones activas del usuario
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.Envelope{data=[]dto.SessionResponse}
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/sessions [get]
func (h *AuthHandler) Sessions(c *fiber.Ctx) error {
	list, err := h.uc.Sessions(c.UserContext(), GetUserID(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Active sessions", list)
}

// LogoutAll godoc
// @Summary      Cerrar todas las sesiones del usuario
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.Envelope
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	n, err := h.uc.LogoutAll(c.UserContext(), GetUserID(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "All sessions logged out", fiber.Map{"sessionsClosed": n})
}

func clientMeta(c *fiber.Ctx) entity.ClientMeta {
	return entity.ClientMeta{IPAddress: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}
