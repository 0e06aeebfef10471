package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Auth-api/internal/application/dto"
	"github.com/jhoicas/Auth-api/internal/domain"
	"github.com/jhoicas/Auth-api/pkg/logger"
)

// codedError añade un código de respuesta específico (MISSING_TOKEN, TOKEN_EXPIRED...) a un error de dominio.
type codedError struct {
	code string
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code string, err error) error { return &codedError{code: code, err: err} }

type kindInfo struct {
	status int
	code   string
}

var kinds = map[error]kindInfo{
	domain.ErrValidation:   {fiber.StatusBadRequest, "VALIDATION"},
	domain.ErrUnauthorized: {fiber.StatusUnauthorized, "UNAUTHORIZED"},
	domain.ErrForbidden:    {fiber.StatusForbidden, "FORBIDDEN"},
	domain.ErrConflict:     {fiber.StatusConflict, "CONFLICT"},
	domain.ErrNotFound:     {fiber.StatusNotFound, "NOT_FOUND"},
	domain.ErrRateLimited:  {fiber.StatusTooManyRequests, "RATE_LIMITED"},
	domain.ErrInternal:     {fiber.StatusInternalServerError, "INTERNAL"},
}

// NewErrorHandler único punto que traduce errores a HTTP. El detalle interno solo se expone
// fuera de producción; los 500 siempre se registran completos.
func NewErrorHandler(production bool, log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Success: false, Message: fe.Message, Code: codeForStatus(fe.Code)})
		}

		kind := domain.KindOf(err)
		info := kinds[kind]
		resp := dto.ErrorResponse{Success: false, Message: domain.MessageOf(err), Code: info.code}

		var ce *codedError
		if errors.As(err, &ce) {
			resp.Code = ce.code
		}
		var rl *domain.RateLimitError
		if errors.As(err, &rl) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(rl.RetryAfter))
		}
		if kind == domain.ErrInternal {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
			if !production {
				resp.Error = err.Error()
			}
		}
		return c.Status(info.status).JSON(resp)
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusBadRequest:
		return "INVALID_BODY"
	}
	if status >= 500 {
		return "INTERNAL"
	}
	return "ERROR"
}

func statusOf(err error) int {
	return kinds[domain.KindOf(err)].status
}
