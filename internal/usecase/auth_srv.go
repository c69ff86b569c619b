package usecase

import (
	"context"
	"fmt"
	"sync"

	"coffee-shop-api/internal/data/repository"
	"coffee-shop-api/internal/dto/request"
	"coffee-shop-api/internal/dto/response"
	"coffee-shop-api/pkg/token"
	"coffee-shop-api/pkg/utils"

	"go.uber.org/zap"
)

// TokenIssuer signs session tokens for an account id.
type TokenIssuer interface {
	IssuePair(userID int64) (*token.Pair, error)
	Refresh(refreshToken string) (string, error)
}

type AuthService interface {
	Login(ctx context.Context, req *request.LoginRequest) (*response.TokenResponse, error)
	Refresh(ctx context.Context, req *request.RefreshRequest) (*response.RefreshResponse, error)
	Me(ctx context.Context, userID int64) (*response.UserResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, log *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log.With(zap.String("service", "auth")),
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends a bcrypt comparison so unknown emails cost the same as wrong passwords.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = utils.HashPassword("coffee-shop-dummy-password")
	})
	utils.CheckPasswordHash(password, dummyHash)
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.TokenResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, NewValidationError(errs)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", req.Email, err)
	}

	if user == nil {
		burnPasswordCheck(req.Password)
		s.log.Warn("Login for unknown email", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		s.log.Warn("Unverified user tried to login", zap.Int64("user_id", user.ID))
		return nil, ErrNotVerified
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		s.log.Error("Failed to issue tokens", zap.Error(err), zap.Int64("user_id", user.ID))
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.log.Info("User logged in", zap.Int64("user_id", user.ID))

	return &response.TokenResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	}, nil
}

func (s *authService) Refresh(_ context.Context, req *request.RefreshRequest) (*response.RefreshResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	access, err := s.tokens.Refresh(req.Refresh)
	if err != nil {
		s.log.Warn("Refresh rejected", zap.Error(err))
		return nil, ErrTokenInvalid
	}

	return &response.RefreshResponse{Access: access}, nil
}

func (s *authService) Me(ctx context.Context, userID int64) (*response.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile %d: %w", userID, err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}

	profile := response.UserToResponse(user)
	return &profile, nil
}
