package repository

import (
	"context"
	"time"

	"coffee-shop-api/internal/data/entity"
	"coffee-shop-api/pkg/cache"

	"go.uber.org/zap"
)

// UsersCacheKey holds the materialized admin user listing.
const UsersCacheKey = "cached_users"

// invalidatingUserRepository drops the listing cache after every successful write.
type invalidatingUserRepository struct {
	UserRepository
	cache cache.Cache
	log   *zap.Logger
}

func NewInvalidatingUserRepository(inner UserRepository, c cache.Cache, log *zap.Logger) UserRepository {
	return &invalidatingUserRepository{
		UserRepository: inner,
		cache:          c,
		log:            log.With(zap.String("repository", "user_cache")),
	}
}

func (r *invalidatingUserRepository) invalidate(ctx context.Context, reason string) {
	if err := r.cache.Delete(ctx, UsersCacheKey); err != nil {
		r.log.Error("Failed to clear user cache", zap.Error(err), zap.String("reason", reason))
		return
	}
	r.log.Debug("User cache cleared", zap.String("reason", reason))
}

func (r *invalidatingUserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := r.UserRepository.Create(ctx, user); err != nil {
		return err
	}
	r.invalidate(ctx, "create")
	return nil
}

func (r *invalidatingUserRepository) Update(ctx context.Context, id int64, patch entity.UserPatch) (*entity.User, error) {
	user, err := r.UserRepository.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, "update")
	return user, nil
}

func (r *invalidatingUserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.UserRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, "delete")
	return nil
}

func (r *invalidatingUserRepository) SetVerificationCode(ctx context.Context, id int64, code string, expiresAt time.Time) (bool, error) {
	ok, err := r.UserRepository.SetVerificationCode(ctx, id, code, expiresAt)
	if err == nil && ok {
		r.invalidate(ctx, "verification code")
	}
	return ok, err
}

func (r *invalidatingUserRepository) ConfirmVerification(ctx context.Context, id int64, code string, expiresAt time.Time) (bool, error) {
	ok, err := r.UserRepository.ConfirmVerification(ctx, id, code, expiresAt)
	if err == nil && ok {
		r.invalidate(ctx, "verify")
	}
	return ok, err
}

func (r *invalidatingUserRepository) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := r.UserRepository.DeleteUnverifiedBefore(ctx, cutoff)
	if err == nil && n > 0 {
		r.invalidate(ctx, "sweep")
	}
	return n, err
}
