package domain

import (
	"errors"
	"fmt"
)

// Categorías de error de dominio (sin dependencias externas).
// Toda falla que sale de un caso de uso es una de estas, directamente o envuelta en *Error.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("insufficient permissions")
	ErrConflict     = errors.New("resource already exists")
	ErrNotFound     = errors.New("resource not found")
	ErrRateLimited  = errors.New("too many requests")
	ErrInternal     = errors.New("an unexpected error occurred")
)

// Señales de persistencia: los repositorios las devuelven ante una violación de unicidad.
// Los casos de uso las traducen al mismo Conflict que el pre-chequeo.
var (
	ErrEmailTaken    = fmt.Errorf("%w: email", ErrConflict)
	ErrUsernameTaken = fmt.Errorf("%w: username", ErrConflict)
)

// Error es un error clasificado: Kind es una de las categorías de arriba y Message
// es seguro para mostrar al cliente. Cause guarda el detalle interno (solo para logs).
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Is permite errors.Is(err, domain.ErrConflict) sobre un *Error.
func (e *Error) Is(target error) bool { return e.Kind == target }

func (e *Error) Unwrap() error { return e.Cause }

// Constructores por categoría.
func Validation(msg string) error   { return &Error{Kind: ErrValidation, Message: msg} }
func Unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }
func Forbidden(msg string) error    { return &Error{Kind: ErrForbidden, Message: msg} }
func Conflict(msg string) error     { return &Error{Kind: ErrConflict, Message: msg} }
func NotFound(msg string) error     { return &Error{Kind: ErrNotFound, Message: msg} }

// Internal envuelve una falla de capa inferior que no tiene clasificación propia.
// Si err ya está clasificado se devuelve tal cual.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != ErrInternal {
		return err
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: ErrInternal, Message: ErrInternal.Error(), Cause: err}
}

// InternalMsg igual que Internal pero con un mensaje propio para el cliente.
func InternalMsg(msg string, err error) error {
	return &Error{Kind: ErrInternal, Message: msg, Cause: err}
}

// RateLimitError indica que la clave superó el máximo de la ventana.
type RateLimitError struct {
	RetryAfter int // segundos
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s (retry after %ds)", e.Message, e.RetryAfter)
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// KindOf devuelve la categoría de err; ErrInternal si no está clasificado.
func KindOf(err error) error {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	for _, k := range []error{ErrValidation, ErrUnauthorized, ErrForbidden, ErrConflict, ErrNotFound, ErrRateLimited} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// MessageOf devuelve el mensaje seguro para el cliente.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.Message
	}
	k := KindOf(err)
	if k == ErrInternal {
		return ErrInternal.Error()
	}
	return k.Error()
}
