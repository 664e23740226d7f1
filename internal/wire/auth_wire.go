package wire

import (
	"admin-2fa/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler) {
	// Both routes are public: the 2FA exchange IS the authentication.
	r.Post("/admin/login", authHandler.Login)
	r.Post("/admin/verify-2fa", authHandler.VerifyCode)
}
