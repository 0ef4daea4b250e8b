package apperr

import (
	"errors"
	"fmt"
)

// Kind clasifica un error de dominio. El transporte HTTP mapea cada Kind a un status.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict" // duplicados (email): 400
	KindState      Kind = "state"    // conflictos de negocio (solapes, transiciones): 409
)

// FieldError describe un campo inválido de un payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error es el error tipado que devuelven los services.
// Message es el texto visible para el usuario (en español).
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is permite errors.Is(err, apperr.NotFound("")) comparando solo por Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func Validation(msg string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func Auth(msg string) *Error      { return &Error{Kind: KindAuth, Message: msg} }
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error  { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error  { return &Error{Kind: KindConflict, Message: msg} }
func State(msg string) *Error     { return &Error{Kind: KindState, Message: msg} }

// Wrap adjunta una causa interna sin cambiar el mensaje visible.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// KindOf devuelve el Kind del primer *Error en la cadena, o "" si no hay ninguno.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind es un atajo para KindOf(err) == k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
