package repository

import (
	"context"
	"fmt"
	"time"

	"admin-2fa/internal/data/entity"
	"admin-2fa/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TwoFACodeRepository interface {
	Create(ctx context.Context, code *entity.TwoFACode) error
	// FindLatestUnconsumed returns the newest unconsumed code for the admin,
	// expired or not. Expiry is the caller's call to make.
	FindLatestUnconsumed(ctx context.Context, adminID uuid.UUID) (*entity.TwoFACode, error)
	// Consume flips consumed to true iff the code is still unconsumed and
	// unexpired. Returns whether the update applied. This single conditional
	// UPDATE is what keeps concurrent verify attempts from both winning.
	Consume(ctx context.Context, codeID uuid.UUID, now time.Time) (bool, error)
	DeleteByAdmin(ctx context.Context, adminID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type twoFACodeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTwoFACodeRepository(db database.PgxIface, log *zap.Logger) TwoFACodeRepository {
	return &twoFACodeRepository{
		db:  db,
		log: log.With(zap.String("repository", "twofa_code")),
	}
}

func (r *twoFACodeRepository) Create(ctx context.Context, code *entity.TwoFACode) error {
	query := `
		INSERT INTO two_factor_codes (id, admin_id, email, code_hash,
		                              expires_at, consumed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		code.ID,
		code.AdminID,
		code.Email,
		code.CodeHash,
		code.ExpiresAt,
		code.Consumed,
		code.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create login code",
			zap.Error(err),
			zap.String("admin_id", code.AdminID.String()),
		)
		return fmt.Errorf("create login code for admin %s: %w", code.AdminID.String(), err)
	}

	return nil
}

func (r *twoFACodeRepository) FindLatestUnconsumed(ctx context.Context, adminID uuid.UUID) (*entity.TwoFACode, error) {
	query := `
		SELECT id, admin_id, email, code_hash, expires_at, consumed, created_at
		FROM two_factor_codes
		WHERE admin_id = $1
		  AND consumed = false
		ORDER BY created_at DESC
		LIMIT 1
	`

	var code entity.TwoFACode
	err := r.db.QueryRow(ctx, query, adminID).Scan(
		&code.ID,
		&code.AdminID,
		&code.Email,
		&code.CodeHash,
		&code.ExpiresAt,
		&code.Consumed,
		&code.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find pending login code",
			zap.Error(err),
			zap.String("admin_id", adminID.String()),
		)
		return nil, fmt.Errorf("find pending login code for admin %s: %w", adminID.String(), err)
	}

	return &code, nil
}

func (r *twoFACodeRepository) Consume(ctx context.Context, codeID uuid.UUID, now time.Time) (bool, error) {
	query := `
		UPDATE two_factor_codes
		SET consumed = true
		WHERE id = $1
		  AND consumed = false
		  AND expires_at > $2
	`

	result, err := r.db.Exec(ctx, query, codeID, now)
	if err != nil {
		r.log.Error("Failed to consume login code",
			zap.Error(err),
			zap.String("code_id", codeID.String()),
		)
		return false, fmt.Errorf("consume login code %s: %w", codeID.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *twoFACodeRepository) DeleteByAdmin(ctx context.Context, adminID uuid.UUID) error {
	query := `
		DELETE FROM two_factor_codes
		WHERE admin_id = $1
	`

	if _, err := r.db.Exec(ctx, query, adminID); err != nil {
		r.log.Error("Failed to delete previous login codes",
			zap.Error(err),
			zap.String("admin_id", adminID.String()),
		)
		return fmt.Errorf("delete login codes for admin %s: %w", adminID.String(), err)
	}

	return nil
}

func (r *twoFACodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM two_factor_codes
		WHERE expires_at <= $1
	`

	result, err := r.db.Exec(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to delete expired login codes", zap.Error(err))
		return 0, fmt.Errorf("delete expired login codes: %w", err)
	}

	return result.RowsAffected(), nil
}
