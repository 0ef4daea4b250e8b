package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rintintin/internal/platform/apperr"
	"rintintin/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		apperr.Validation("x"):   http.StatusBadRequest,
		apperr.Conflict("x"):     http.StatusBadRequest,
		apperr.Auth("x"):         http.StatusUnauthorized,
		apperr.Forbidden("x"):    http.StatusForbidden,
		apperr.NotFound("x"):     http.StatusNotFound,
		apperr.State("x"):        http.StatusConflict,
		errors.New("db is down"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, logger.NewNop(), errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Error interno del servidor", body.Message)
}

type signupBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Age      int    `json:"age" validate:"gte=0"`
}

func TestDecodeJSON_TranslatesValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"bad","password":"123","age":-1}`))

	var dst signupBody
	err := DecodeJSON(req, &dst)
	require.Error(t, err)

	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	require.Len(t, ae.Fields, 3)
	assert.Equal(t, "email", ae.Fields[0].Field)
	assert.Equal(t, "Email inválido", ae.Message)
	assert.Equal(t, "La contraseña debe tener al menos 6 caracteres", ae.Fields[1].Message)
}

func TestDecodeJSON_EmptyAndMalformed(t *testing.T) {
	var dst signupBody

	err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &dst)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	err = DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")), &dst)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestWriteError_IncludesFieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, nil, apperr.Validation("Faltan datos", apperr.FieldError{Field: "sitterId", Message: "requerido"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Faltan datos", body.Message)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "sitterId", body.Errors[0].Field)
}
