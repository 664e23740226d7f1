package adaptor

import (
	"admin-2fa/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth *AuthHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth: NewAuthHandler(service.TwoFactor, log),
	}
}
