package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"admin-2fa/internal/dto/request"
	"admin-2fa/internal/dto/response"
	"admin-2fa/internal/usecase"
	"admin-2fa/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.TwoFactorService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.TwoFactorService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

// Login handles POST /admin/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resp, err := h.service.BeginLogin(r.Context(), &req)
	if err != nil {
		h.handleLoginError(w, err)
		return
	}

	utils.ResponseSuccess(w, "Login code sent", resp)
}

// VerifyCode handles POST /admin/verify-2fa
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyCodeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	req.Code = strings.TrimSpace(req.Code)

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resp, err := h.service.CompleteLogin(r.Context(), &req)
	if err != nil {
		h.handleVerifyError(w, err)
		return
	}

	utils.ResponseSuccess(w, "Code verified", resp)
}

func (h *AuthHandler) handleLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		h.log.Warn("Begin login rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrNotAuthenticated):
		h.log.Warn("Begin login failed - bad credentials", zap.Error(err))
		utils.ResponseUnauthorized(w, "Invalid email or password")

	case errors.Is(err, usecase.ErrDeliveryFailed):
		h.log.Error("Begin login failed - delivery", zap.Error(err))
		utils.ResponseBadGateway(w, "Could not deliver the login code")

	default:
		h.log.Error("Begin login failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func (h *AuthHandler) handleVerifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		h.log.Warn("Complete login rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrCodeExpired):
		h.log.Warn("Complete login failed - expired code", zap.Error(err))
		h.verifyFailed(w, "expired")

	case errors.Is(err, usecase.ErrCodeAlreadyConsumed):
		h.log.Warn("Complete login failed - consumed code", zap.Error(err))
		h.verifyFailed(w, "already consumed")

	// Not-found and mismatch collapse outwardly: both just mean the
	// submitted code is not the pending one.
	case errors.Is(err, usecase.ErrCodeNotFound),
		errors.Is(err, usecase.ErrCodeMismatch):
		h.log.Warn("Complete login failed - invalid code", zap.Error(err))
		h.verifyFailed(w, "invalid code")

	default:
		h.log.Error("Complete login failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func (h *AuthHandler) verifyFailed(w http.ResponseWriter, reason string) {
	data := response.VerifyResponse{Verified: false, Reason: reason}
	utils.ResponseJSON(w, http.StatusUnauthorized, false, "Code verification failed", data, nil)
}
