package usecase

import (
	"context"
	"fmt"
	"strings"

	"admin-2fa/internal/data/entity"
	"admin-2fa/internal/data/repository"
	"admin-2fa/pkg/utils"

	"go.uber.org/zap"
)

// CredentialService checks the primary credential (email + password).
// Stateless; a login code is only ever issued after Verify succeeds.
type CredentialService interface {
	Verify(ctx context.Context, email, password string) (*entity.Admin, error)
}

type credentialService struct {
	admins repository.AdminRepository
	log    *zap.Logger
}

func NewCredentialService(admins repository.AdminRepository, log *zap.Logger) CredentialService {
	return &credentialService{
		admins: admins,
		log:    log,
	}
}

// Verify returns the admin on success. Unknown email, wrong password and
// deactivated accounts all collapse into ErrNotAuthenticated so the caller
// cannot enumerate accounts; the logs keep the distinction.
func (s *credentialService) Verify(ctx context.Context, email, password string) (*entity.Admin, error) {
	admin, err := s.admins.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		s.log.Error("Failed to look up admin", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("look up admin: %w", err)
	}

	if admin == nil {
		s.log.Warn("Login with unknown email", zap.String("email", email))
		return nil, ErrNotAuthenticated
	}

	if !utils.CheckPasswordHash(password, admin.PasswordHash) {
		s.log.Warn("Login with wrong password", zap.String("admin_id", admin.ID.String()))
		return nil, ErrNotAuthenticated
	}

	if !admin.IsActive {
		s.log.Warn("Login on deactivated admin", zap.String("admin_id", admin.ID.String()))
		return nil, ErrNotAuthenticated
	}

	return admin, nil
}

// NormalizeEmail trims and lower-cases an email so lookups are stable no
// matter how the caller typed it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
