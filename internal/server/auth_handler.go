package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/careerpilot/internal/types"
	"go.uber.org/zap"
)

// AuthHandler handles recruiter signup, verification and login.
type AuthHandler struct {
	recruiters *RecruiterService
	jwtService *JWTService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(recruiters *RecruiterService, jwtService *JWTService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		recruiters: recruiters,
		jwtService: jwtService,
		validator:  types.Validator(),
		logger:     logger,
	}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req types.SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.recruiters.Signup(r.Context(), &req); err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, map[string]string{
		"message": "Verification code sent to email",
	})
}

// Verify handles POST /api/auth/verify.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req types.VerifyRequest
	if !h.decode(w, r, &req) {
		return
	}

	recruiter, err := h.recruiters.Verify(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.issue(w, http.StatusCreated, recruiter)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	recruiter, err := h.recruiters.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.issue(w, http.StatusOK, recruiter)
}

func (h *AuthHandler) issue(w http.ResponseWriter, status int, recruiter *types.Recruiter) {
	token, err := h.jwtService.GenerateToken(recruiter.ID, recruiter.Email)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		writeError(h.logger, w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(h.logger, w, status, types.AuthResponse{User: recruiter, Token: token})
}

// decode parses and validates the body, writing a 400 on failure.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, extractValidationErrors(err))
		return false
	}
	return true
}

func (h *AuthHandler) fail(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("auth request failed", zap.Error(err))
		if status == http.StatusInternalServerError {
			writeError(h.logger, w, status, "internal error")
			return
		}
	}
	writeError(h.logger, w, status, err.Error())
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		if ve.Tag() == "strongpassword" {
			return fmt.Sprintf("validation error: %s - must be at least %d characters with upper-case, lower-case, digit and special characters",
				ve.Field(), types.MinPasswordLength)
		}
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
