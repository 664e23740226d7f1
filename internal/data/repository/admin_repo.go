package repository

import (
	"context"
	"fmt"

	"admin-2fa/internal/data/entity"
	"admin-2fa/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.Admin, error)
}

type adminRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAdminRepository(db database.PgxIface, log *zap.Logger) AdminRepository {
	return &adminRepository{
		db:  db,
		log: log.With(zap.String("repository", "admin")),
	}
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	query := `
		SELECT id, email, password_hash, phone, is_active, created_at, updated_at
		FROM admins
		WHERE lower(email) = lower($1)
		ORDER BY created_at ASC
		LIMIT 1
	`

	var admin entity.Admin
	err := r.db.QueryRow(ctx, query, email).Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Phone,
		&admin.IsActive,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find admin by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find admin by email %s: %w", email, err)
	}

	return &admin, nil
}
