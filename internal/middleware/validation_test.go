package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactRequest struct {
	Nombre   string `json:"nombre" validate:"trimmed_min=2"`
	Email    string `json:"email" validate:"simple_email"`
	Telefono string `json:"telefono" validate:"phone"`
	Nota     string `json:"nota" validate:"trimmed_min=3"`
}

func validContact() contactRequest {
	return contactRequest{Nombre: "Ana", Email: "ana@example.pe", Telefono: "+51 987 654 321", Nota: "ok!"}
}

func fieldsOf(errs []ValidationError) []string {
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestValidateRequest_AccumulatesEveryFailure(t *testing.T) {
	req := contactRequest{Nombre: " A ", Email: "bad", Telefono: "12", Nota: "  "}

	errs := FormatValidationErrors(ValidateRequest(req))
	assert.Equal(t, []string{"nombre", "email", "telefono", "nota"}, fieldsOf(errs))
	assert.Equal(t, "El nombre debe tener al menos 2 caracteres", errs[0].Message)
	assert.Equal(t, "El correo electrónico no es válido", errs[1].Message)
	assert.Equal(t, "El teléfono debe tener entre 8 y 20 dígitos", errs[2].Message)
	assert.Equal(t, "Value is too short", errs[3].Message)
}

func TestValidateRequest_Email(t *testing.T) {
	cases := map[string]bool{
		"ana@example.pe":     true,
		"  ana@example.pe  ": true,
		"ana@example":        false,
		"ana example@x.pe":   false,
		"@example.pe":        false,
		"":                   false,
	}
	for email, ok := range cases {
		req := validContact()
		req.Email = email
		assert.Equal(t, ok, ValidateRequest(req) == nil, email)
	}
}

func TestValidateRequest_Phone(t *testing.T) {
	cases := map[string]bool{
		"987654321":             true,
		"987 654 321":           true,
		"(01) 555-1234":         true,
		"+51 1 2 3 4 5 6 7":     true,
		"1234567":               false,
		"987x54321":             false,
		"123456789012345678901": false,
		"         ":             false,
	}
	for phone, ok := range cases {
		req := validContact()
		req.Telefono = phone
		assert.Equal(t, ok, ValidateRequest(req) == nil, phone)
	}
}

func TestDecodeAndValidate(t *testing.T) {
	body, _ := json.Marshal(validContact())
	var got contactRequest
	require.NoError(t, DecodeAndValidate(httptest.NewRequest("POST", "/test", bytes.NewReader(body)), &got))
	assert.Equal(t, "Ana", got.Nombre)

	err := DecodeAndValidate(httptest.NewRequest("POST", "/test", strings.NewReader("{")), &got)
	require.Error(t, err)
	assert.Empty(t, FormatValidationErrors(err), "decode errors are not validation errors")
}

// Feature: storefront-api, Property 3: trimmed_min ignores surrounding space
func TestProperty_TrimmedMinIgnoresSurroundingSpace(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("padding never turns a short name into a valid one", prop.ForAll(
		func(core string, pad int) bool {
			req := validContact()
			req.Nombre = strings.Repeat(" ", pad) + core + strings.Repeat(" ", pad)

			valid := ValidateRequest(req) == nil
			return valid == (len([]rune(core)) >= 2)
		},
		gen.AlphaString(),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
