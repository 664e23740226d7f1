package usecase

import (
	"admin-2fa/internal/data/repository"
	"admin-2fa/pkg/notifier"
	"admin-2fa/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Credential CredentialService
	TwoFactor  TwoFactorService
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger, notif notifier.Notifier) *Service {
	credential := NewCredentialService(repo.Admin, log)

	return &Service{
		Credential: credential,
		TwoFactor:  NewTwoFactorService(repo, credential, notif, config, log),
	}
}
