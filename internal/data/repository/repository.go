package repository

import (
	"admin-2fa/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Admin     AdminRepository
	TwoFACode TwoFACodeRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Admin:     NewAdminRepository(db, log),
		TwoFACode: NewTwoFACodeRepository(db, log),
	}
}
