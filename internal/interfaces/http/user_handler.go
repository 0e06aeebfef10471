package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Auth-api/internal/application/dto"
	"github.com/jhoicas/Auth-api/internal/application/usecase"
	"github.com/jhoicas/Auth-api/internal/domain"
)

// UserHandler administración de usuarios.
type UserHandler struct {
	uc *usecase.UserUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page    query  int     false  "página (1)"
// @Param        limit   query  int     false  "tamaño (10, máx 100)"
// @Param        search  query  string  false  "email, username o nombre"
// @Param        role    query  string  false  "admin | manager | user"
// @Success      200  {object}  dto.PagedEnvelope{data=[]dto.UserResponse}
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	var in dto.ListUsersRequest
	if err := c.QueryParser(&in); err != nil {
		return withCode("INVALID_QUERY", domain.Validation("invalid query parameters"))
	}
	users, page, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(dto.PagedEnvelope{Success: true, Message: "Users retrieved successfully", Data: users, Pagination: page})
}

// GetByID godoc
// @Summary      Obtener usuario
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.Envelope{data=dto.UserResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	user, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "User retrieved successfully", user)
}

// Update godoc
// @Summary      Actualizar perfil
// @Description  Cada usuario edita su perfil; editar otro requiere user:update.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.Envelope{data=dto.UserResponse}
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	user, err := h.uc.Update(c.UserContext(), c.Params("id"), in, CurrentActor(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "User updated successfully", user)
}

// Delete godoc
// @Summary      Eliminar usuario (admin)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.Envelope
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id"), CurrentActor(c)); err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "User deleted successfully", nil)
}

// UpdateRole godoc
// @Summary      Cambiar rol (admin)
// @Description  Cierra las sesiones del usuario. Los tokens emitidos mantienen el rol anterior hasta vencer.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.UpdateRoleRequest  true  "role"
// @Success      200   {object}  dto.Envelope{data=dto.UserResponse}
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/users/{id}/role [patch]
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	var in dto.UpdateRoleRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	user, err := h.uc.UpdateRole(c.UserContext(), c.Params("id"), in, CurrentActor(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "User role updated successfully", user)
}
