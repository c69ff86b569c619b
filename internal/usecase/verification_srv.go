package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"coffee-shop-api/internal/data/entity"
	"coffee-shop-api/internal/data/repository"
	"coffee-shop-api/internal/dto/request"
	"coffee-shop-api/internal/dto/response"
	"coffee-shop-api/pkg/notifier"
	"coffee-shop-api/pkg/utils"

	"go.uber.org/zap"
)

const (
	msgSignedUp = "User registered successfully. Verification code sent to your email."
	msgResent   = "New verification code sent to your email."
)

type VerificationService interface {
	Signup(ctx context.Context, req *request.SignupRequest) (*response.VerificationResponse, error)
	ResendCode(ctx context.Context, req *request.ResendCodeRequest) (*response.VerificationResponse, error)
	Verify(ctx context.Context, req *request.VerifyRequest) error
}

type verificationService struct {
	userRepo repository.UserRepository
	notifier notifier.Notifier
	codeTTL  time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewVerificationService(
	userRepo repository.UserRepository,
	n notifier.Notifier,
	codeTTL time.Duration,
	log *zap.Logger,
) VerificationService {
	return &verificationService{
		userRepo: userRepo,
		notifier: n,
		codeTTL:  codeTTL,
		now:      time.Now,
		log:      log.With(zap.String("service", "verification")),
	}
}

func (s *verificationService) Signup(ctx context.Context, req *request.SignupRequest) (*response.VerificationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Signup validation failed", zap.Any("errors", errs))
		return nil, NewValidationError(errs)
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email %s: %w", req.Email, err)
	}
	if existing != nil {
		return nil, emailTakenError()
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		// the length tag counts characters; bcrypt counts bytes
		return nil, NewValidationError(map[string]string{
			"password": fmt.Sprintf("Maximum length is %d bytes", utils.MaxPasswordBytes),
		})
	}
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock()
	code, expiresAt, err := s.newCode(now)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Base: entity.Base{
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         entity.RoleRegular,
		IsVerified:   false,
	}
	user.SetVerification(code, expiresAt)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, emailTakenError()
		}
		return nil, fmt.Errorf("create account %s: %w", req.Email, err)
	}

	s.notifier.SendVerificationCode(user.Email, code)

	s.log.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
		zap.Time("expires_at", expiresAt))

	return &response.VerificationResponse{
		Message:   msgSignedUp,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *verificationService) ResendCode(ctx context.Context, req *request.ResendCodeRequest) (*response.VerificationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", req.Email, err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}

	code, expiresAt, err := s.newCode(s.clock())
	if err != nil {
		return nil, err
	}

	updated, err := s.userRepo.SetVerificationCode(ctx, user.ID, code, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("store verification code for %s: %w", req.Email, err)
	}
	if !updated {
		// verified or deleted since the lookup
		current, err := s.userRepo.FindByID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("reload user %d: %w", user.ID, err)
		}
		if current == nil {
			return nil, ErrNotFound
		}
		return nil, ErrAlreadyVerified
	}

	s.notifier.SendVerificationCode(user.Email, code)

	s.log.Info("Verification code resent",
		zap.Int64("user_id", user.ID),
		zap.Time("expires_at", expiresAt))

	return &response.VerificationResponse{
		Message:   msgResent,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *verificationService) Verify(ctx context.Context, req *request.VerifyRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return NewValidationError(errs)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("find user %s: %w", req.Email, err)
	}
	if user == nil {
		return ErrNotFound
	}

	if !user.HasPendingCode() {
		return ErrInvalidOrExpired
	}

	storedCode, expiresAt := *user.VerificationCode, *user.VerificationExpiresAt
	if subtle.ConstantTimeCompare([]byte(storedCode), []byte(req.Code)) != 1 {
		s.log.Warn("Verification code mismatch", zap.Int64("user_id", user.ID))
		return ErrInvalidOrExpired
	}
	// expiry is inclusive: the exact expiry instant still verifies
	if s.now().After(expiresAt) {
		s.log.Warn("Verification code expired", zap.Int64("user_id", user.ID), zap.Time("expires_at", expiresAt))
		return ErrInvalidOrExpired
	}

	confirmed, err := s.userRepo.ConfirmVerification(ctx, user.ID, storedCode, expiresAt)
	if err != nil {
		return fmt.Errorf("confirm verification for %s: %w", req.Email, err)
	}
	if !confirmed {
		// code replaced by a concurrent resend
		return ErrInvalidOrExpired
	}

	s.log.Info("Email verified", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return nil
}

// clock returns the current time at the store's microsecond precision.
func (s *verificationService) clock() time.Time {
	return s.now().Truncate(time.Microsecond)
}

func (s *verificationService) newCode(now time.Time) (string, time.Time, error) {
	code, err := utils.GenerateVerificationCode()
	if err != nil {
		s.log.Error("Failed to generate verification code", zap.Error(err))
		return "", time.Time{}, err
	}
	return code, now.Add(s.codeTTL), nil
}

func emailTakenError() error {
	return NewValidationError(map[string]string{"email": repository.ErrEmailTaken.Error()})
}
