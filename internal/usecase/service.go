package usecase

import (
	"coffee-shop-api/internal/data/repository"
	"coffee-shop-api/pkg/cache"
	"coffee-shop-api/pkg/notifier"
	"coffee-shop-api/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth         AuthService
	Verification VerificationService
	User         UserService
}

func NewService(
	repo *repository.Repository,
	c cache.Cache,
	n notifier.Notifier,
	tokens TokenIssuer,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:         NewAuthService(repo.User, tokens, log),
		Verification: NewVerificationService(repo.User, n, config.Verification.CodeTTL, log),
		User: NewUserService(repo.User, c, UserServiceConfig{
			CacheTTL:  config.Redis.TTL,
			Retention: config.Sweep.Retention,
		}, log),
	}
}
