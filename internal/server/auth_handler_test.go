package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/careerpilot/internal/types"
)

const testPassword = "Str0ng!pass"

var codeRe = regexp.MustCompile(`<b>(\d{6})</b>`)

// signupCode signs up and returns the code from the verification email.
func signupCode(t *testing.T, env *testEnv, email string) string {
	t.Helper()
	rec := env.do(jsonRequest(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Riley Recruiter", "email": email, "password": testPassword,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Verification code sent to email"}`, rec.Body.String())

	msg, ok := env.mail.Last()
	require.True(t, ok)
	require.Equal(t, email, msg.To)
	m := codeRe.FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2, "verification code in %q", msg.HTML)
	return m[1]
}

func TestAuthHandler_SignupVerifyLogin(t *testing.T) {
	env := newTestEnv(t, withAuthRequired())
	code := signupCode(t, env, "riley@example.com")

	rec := env.do(jsonRequest(http.MethodPost, "/api/auth/verify", map[string]string{
		"email": "riley@example.com", "code": code,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	verified := decodeBody[types.AuthResponse](t, rec)
	require.NotNil(t, verified.User)
	assert.Equal(t, "Riley Recruiter", verified.User.Name)
	assert.NotEmpty(t, verified.Token)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = env.do(jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "riley@example.com", "password": testPassword,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decodeBody[types.AuthResponse](t, rec)
	assert.Equal(t, verified.User.ID, login.User.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = env.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_VerifyRejects(t *testing.T) {
	env := newTestEnv(t)
	code := signupCode(t, env, "riley@example.com")
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	tests := []struct {
		name    string
		body    map[string]string
		wantMsg string
	}{
		{"wrong code", map[string]string{"email": "riley@example.com", "code": wrong}, "verification failed: invalid code"},
		{"no pending signup", map[string]string{"email": "other@example.com", "code": code}, "verification failed: no pending signup or code expired"},
		{"short code", map[string]string{"email": "riley@example.com", "code": "123"}, "validation error: Code - len"},
		{"letters", map[string]string{"email": "riley@example.com", "code": "abcdef"}, "validation error: Code - numeric"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(jsonRequest(http.MethodPost, "/api/auth/verify", tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeBody[map[string]string](t, rec)["error"])
		})
	}

	// a wrong guess leaves the pending signup usable
	rec := env.do(jsonRequest(http.MethodPost, "/api/auth/verify", map[string]string{"email": "riley@example.com", "code": code}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(jsonRequest(http.MethodPost, "/api/auth/verify", map[string]string{"email": "riley@example.com", "code": code}))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "codes are single use")
}

func TestAuthHandler_SignupExistingEmail(t *testing.T) {
	env := newTestEnv(t)
	code := signupCode(t, env, "riley@example.com")
	rec := env.do(jsonRequest(http.MethodPost, "/api/auth/verify", map[string]string{"email": "riley@example.com", "code": code}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(jsonRequest(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Again", "email": "Riley@Example.com", "password": testPassword,
	}))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandler_SignupValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body any
	}{
		{"malformed", "not json"},
		{"missing name", map[string]string{"email": "a@example.com", "password": testPassword}},
		{"bad email", map[string]string{"name": "A", "email": "nope", "password": testPassword}},
		{"weak password", map[string]string{"name": "A", "email": "a@example.com", "password": "password1"}},
		{"short password", map[string]string{"name": "A", "email": "a@example.com", "password": "S!1a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(jsonRequest(http.MethodPost, "/api/auth/signup", tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, env.mail.Messages())
}

func TestAuthHandler_SignupMailFailure(t *testing.T) {
	env := newTestEnv(t)
	env.mail.Err = errors.New("smtp down")

	rec := env.do(jsonRequest(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Riley", "email": "riley@example.com", "password": testPassword,
	}))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	env.mail.Err = nil
	rec = env.do(jsonRequest(http.MethodPost, "/api/auth/verify", map[string]string{"email": "riley@example.com", "code": "123456"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no pending signup")
}

func TestAuthHandler_LoginRejects(t *testing.T) {
	env := newTestEnv(t)
	code := signupCode(t, env, "riley@example.com")
	rec := env.do(jsonRequest(http.MethodPost, "/api/auth/verify", map[string]string{"email": "riley@example.com", "code": code}))
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name     string
		body     map[string]string
		wantCode int
	}{
		{"wrong password", map[string]string{"email": "riley@example.com", "password": "Wr0ng!pass"}, http.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "ghost@example.com", "password": testPassword}, http.StatusUnauthorized},
		{"missing password", map[string]string{"email": "riley@example.com"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(jsonRequest(http.MethodPost, "/api/auth/login", tt.body))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
