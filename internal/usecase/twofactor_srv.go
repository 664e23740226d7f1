package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"admin-2fa/internal/data/entity"
	"admin-2fa/internal/data/repository"
	"admin-2fa/internal/dto/request"
	"admin-2fa/internal/dto/response"
	"admin-2fa/pkg/notifier"
	"admin-2fa/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TwoFactorService owns the login-code lifecycle: issue on a successful
// password check, deliver out of band, then validate and consume exactly
// once. The store is the single synchronization point; nothing is cached
// in process.
type TwoFactorService interface {
	BeginLogin(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error)
	CompleteLogin(ctx context.Context, req *request.VerifyCodeRequest) (*response.VerifyResponse, error)
}

type twoFactorService struct {
	repo       *repository.Repository
	credential CredentialService
	notifier   notifier.Notifier
	config     *utils.Config
	log        *zap.Logger
}

func NewTwoFactorService(
	repo *repository.Repository,
	credential CredentialService,
	notif notifier.Notifier,
	config *utils.Config,
	log *zap.Logger,
) TwoFactorService {
	return &twoFactorService{
		repo:       repo,
		credential: credential,
		notifier:   notif,
		config:     config,
		log:        log,
	}
}

func (s *twoFactorService) BeginLogin(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	// 1. Validate input before touching the store
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Begin login validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, utils.FormatValidationErrors(errs))
	}

	// 2. Primary credential must pass first
	admin, err := s.credential.Verify(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// 3. Generate the code and hash it; plaintext is never persisted
	code, err := utils.GenerateLoginCode()
	if err != nil {
		s.log.Error("Failed to generate login code", zap.Error(err))
		return nil, fmt.Errorf("generate login code: %w", err)
	}

	codeHash, err := utils.HashPassword(code)
	if err != nil {
		s.log.Error("Failed to hash login code", zap.Error(err))
		return nil, fmt.Errorf("hash login code: %w", err)
	}

	// 4. Supersede older codes. Best-effort: validation picks the newest
	// unconsumed code anyway, so a failed delete is not fatal.
	if err := s.repo.TwoFACode.DeleteByAdmin(ctx, admin.ID); err != nil {
		s.log.Warn("Failed to clear previous login codes",
			zap.Error(err), zap.String("admin_id", admin.ID.String()))
	}

	ttl := time.Duration(s.config.TwoFA.TTLSeconds) * time.Second
	now := time.Now()

	record := &entity.TwoFACode{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		AdminID:   admin.ID,
		Email:     NormalizeEmail(admin.Email),
		CodeHash:  codeHash,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.repo.TwoFACode.Create(ctx, record); err != nil {
		s.log.Error("Failed to persist login code",
			zap.Error(err), zap.String("admin_id", admin.ID.String()))
		return nil, fmt.Errorf("persist login code: %w", err)
	}

	resp := &response.LoginResponse{ExpiresInSec: s.config.TwoFA.TTLSeconds}

	message := fmt.Sprintf("Your admin login code is %s. It expires in %d seconds.",
		code, s.config.TwoFA.TTLSeconds)

	// 5. Deliver. In direct-return mode the response itself carries the code,
	// so a delivery failure only costs a warning. In production the message
	// is the admin's only way to get the code: a failure must reach the
	// caller instead of leaving the login silently stuck.
	if s.config.TwoFA.DirectReturn {
		resp.Code = code
		if err := s.notifier.Send(ctx, s.config.WhatsApp.AdminPhone, message); err != nil {
			s.log.Warn("Code delivery failed in direct-return mode", zap.Error(err))
		}
	} else {
		if err := s.notifier.Send(ctx, s.config.WhatsApp.AdminPhone, message); err != nil {
			s.log.Error("Code delivery failed",
				zap.Error(err), zap.String("admin_id", admin.ID.String()))
			return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
	}

	s.log.Info("Login code issued",
		zap.String("admin_id", admin.ID.String()),
		zap.Time("expires_at", record.ExpiresAt))

	return resp, nil
}

func (s *twoFactorService) CompleteLogin(ctx context.Context, req *request.VerifyCodeRequest) (*response.VerifyResponse, error) {
	req.Code = strings.TrimSpace(req.Code)

	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Complete login validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, utils.FormatValidationErrors(errs))
	}

	// 2. Resolve the admin. An unknown email means there is no pending code
	// for it; same outcome, no enumeration value either way.
	email := NormalizeEmail(req.Email)
	admin, err := s.repo.Admin.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to look up admin", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("look up admin: %w", err)
	}
	if admin == nil {
		return nil, ErrCodeNotFound
	}

	// 3. Newest unconsumed code wins; older ones are dead by selection
	code, err := s.repo.TwoFACode.FindLatestUnconsumed(ctx, admin.ID)
	if err != nil {
		s.log.Error("Failed to find pending login code",
			zap.Error(err), zap.String("admin_id", admin.ID.String()))
		return nil, fmt.Errorf("find pending login code: %w", err)
	}
	if code == nil {
		return nil, ErrCodeNotFound
	}

	now := time.Now()

	// 4. Expiry is terminal and never consumes
	if now.After(code.ExpiresAt) {
		s.log.Warn("Expired login code submitted",
			zap.String("admin_id", admin.ID.String()),
			zap.Time("expired_at", code.ExpiresAt))
		return nil, ErrCodeExpired
	}

	// 5. The lookup filters consumed codes; guard anyway
	if code.Consumed {
		return nil, ErrCodeAlreadyConsumed
	}

	// 6. Compare against the stored hash. A mismatch never consumes.
	if !utils.CheckPasswordHash(req.Code, code.CodeHash) {
		s.log.Warn("Wrong login code submitted", zap.String("admin_id", admin.ID.String()))
		return nil, ErrCodeMismatch
	}

	// 7. Consume, conditionally. Under concurrent submissions of the same
	// code only one UPDATE applies; the loser lands here with applied=false.
	applied, err := s.repo.TwoFACode.Consume(ctx, code.ID, now)
	if err != nil {
		s.log.Error("Failed to consume login code",
			zap.Error(err), zap.String("code_id", code.ID.String()))
		return nil, fmt.Errorf("consume login code: %w", err)
	}
	if !applied {
		return nil, ErrCodeAlreadyConsumed
	}

	s.log.Info("Login code verified", zap.String("admin_id", admin.ID.String()))

	return &response.VerifyResponse{Verified: true}, nil
}
