package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coffee-shop-api/internal/data/entity"
	"coffee-shop-api/internal/data/repository"
	"coffee-shop-api/internal/dto/request"
	"coffee-shop-api/internal/dto/response"
	"coffee-shop-api/pkg/cache"
	"coffee-shop-api/pkg/utils"

	"go.uber.org/zap"
)

type UserService interface {
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	GetUser(ctx context.Context, id int64) (*response.UserResponse, error)
	UpdateUser(ctx context.Context, id int64, req *request.UpdateUserRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, id int64) error
	SweepUnverified(ctx context.Context) (int64, error)
}

type UserServiceConfig struct {
	CacheTTL  time.Duration
	Retention time.Duration
}

type userService struct {
	userRepo repository.UserRepository
	cache    cache.Cache
	cfg      UserServiceConfig
	now      func() time.Time
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, c cache.Cache, cfg UserServiceConfig, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		cache:    c,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With(zap.String("service", "user")),
	}
}

// GetAllUsers pages over the cached full listing.
func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	norm := req.Normalized()
	page, perPage := norm.Page, norm.PerPage

	users, err := us.listAll(ctx)
	if err != nil {
		return nil, err
	}

	start, end := utils.PageBounds(len(users), page, perPage)
	return response.NewPaginatedResponse(users[start:end], page, perPage, int64(len(users))), nil
}

func (us *userService) listAll(ctx context.Context) ([]response.UserResponse, error) {
	cached, err := us.cache.Get(ctx, repository.UsersCacheKey)
	switch {
	case err == nil:
		var users []response.UserResponse
		if err := json.Unmarshal(cached, &users); err == nil {
			return users, nil
		}
		us.log.Warn("Discarding unreadable user cache entry")
	case !errors.Is(err, cache.ErrMiss):
		us.log.Error("User cache read failed", zap.Error(err))
	}

	all, err := us.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]response.UserResponse, len(all))
	for i, user := range all {
		users[i] = response.UserToResponse(user)
	}

	payload, err := json.Marshal(users)
	if err == nil {
		err = us.cache.Set(ctx, repository.UsersCacheKey, payload, us.cfg.CacheTTL)
	}
	if err != nil {
		us.log.Error("User cache write failed", zap.Error(err))
	}

	us.log.Debug("User listing loaded from store", zap.Int("count", len(users)))
	return users, nil
}

func (us *userService) GetUser(ctx context.Context, id int64) (*response.UserResponse, error) {
	user, err := us.find(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateUser(ctx context.Context, id int64, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	if req.Email != nil {
		other, err := us.userRepo.FindByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("check email %s: %w", *req.Email, err)
		}
		if other != nil && other.ID != id {
			return nil, emailTakenError()
		}
	}

	patch := entity.UserPatch{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		IsStaff:    req.IsStaff,
		IsVerified: req.IsVerified,
		UpdatedAt:  us.now(),
	}
	if req.Role != nil {
		role := entity.UserRole(*req.Role)
		patch.Role = &role
	}

	user, err := us.userRepo.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, emailTakenError()
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}

	us.log.Info("User updated", zap.Int64("user_id", id))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) DeleteUser(ctx context.Context, id int64) error {
	if err := us.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	us.log.Info("User deleted", zap.Int64("user_id", id))
	return nil
}

// SweepUnverified deletes accounts still unverified after the retention window.
func (us *userService) SweepUnverified(ctx context.Context) (int64, error) {
	cutoff := us.now().Add(-us.cfg.Retention)

	n, err := us.userRepo.DeleteUnverifiedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep unverified users: %w", err)
	}

	us.log.Info(fmt.Sprintf("%d unverified users deleted", n), zap.Time("cutoff", cutoff))
	return n, nil
}

func (us *userService) find(ctx context.Context, id int64) (*entity.User, error) {
	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
