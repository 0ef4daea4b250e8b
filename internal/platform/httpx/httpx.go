// Package httpx reúne los helpers JSON que antes se duplicaban en cada handler.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"rintintin/internal/platform/apperr"
	"rintintin/internal/platform/logger"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

const msgInternal = "Error interno del servidor"

var validate = newValidator()

// newValidator reporta los campos con su nombre JSON.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// MessageResponse es el cuerpo estándar de error/confirmación.
type MessageResponse struct {
	Message string               `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, MessageResponse{Message: msg})
}

// StatusFor mapea la taxonomía de errores a códigos HTTP.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError responde con el mensaje del error tipado. Los errores no clasificados
// se loguean y salen como 500 genérico, sin filtrar detalles internos.
func WriteError(w http.ResponseWriter, log logger.Logger, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		if log != nil {
			log.Error("unhandled error", map[string]any{"err": err})
		}
		WriteMessage(w, http.StatusInternalServerError, msgInternal)
		return
	}
	if e.Err != nil && log != nil {
		log.Warn("request failed", map[string]any{"kind": string(e.Kind), "err": e.Err})
	}
	WriteJSON(w, StatusFor(err), MessageResponse{Message: e.Message, Errors: e.Fields})
}

// DecodeJSON decodifica el body y corre las reglas `validate` del struct.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Cuerpo de la solicitud vacío")
		}
		return apperr.Validation("JSON inválido").Wrap(err)
	}
	return Validate(dst)
}

// Validate aplica las reglas de validator/v10 y traduce los fallos a mensajes en español.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Datos inválidos").Wrap(err)
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return apperr.Validation(fields[0].Message, fields...)
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		if label, ok := requiredLabels[name]; ok {
			return label
		}
		return fmt.Sprintf("El campo %s es requerido", name)
	case "email":
		return "Email inválido"
	case "min":
		if name == "password" {
			return "La contraseña debe tener al menos 6 caracteres"
		}
		return fmt.Sprintf("El campo %s debe ser al menos %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("El campo %s debe ser como máximo %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("El campo %s debe ser uno de: %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("El campo %s debe ser mayor o igual a %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("El campo %s debe ser menor o igual a %s", name, fe.Param())
	default:
		return fmt.Sprintf("El campo %s es inválido", name)
	}
}

var requiredLabels = map[string]string{
	"firstName": "El nombre es requerido",
	"lastName":  "El apellido es requerido",
	"password":  "La contraseña es requerida",
	"email":     "Email inválido",
}
