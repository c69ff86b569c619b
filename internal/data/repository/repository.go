package repository

import (
	"coffee-shop-api/pkg/cache"
	"coffee-shop-api/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User UserRepository
}

func NewRepository(db database.PgxIface, c cache.Cache, log *zap.Logger) *Repository {
	return &Repository{
		User: NewInvalidatingUserRepository(NewUserRepository(db, log), c, log),
	}
}
