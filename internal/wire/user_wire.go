package wire

import (
	"coffee-shop-api/internal/adaptor"
	"coffee-shop-api/internal/data/repository"
	"coffee-shop-api/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser mounts account management; every route needs an admin caller.
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	tokens middleware.TokenVerifier,
	log *zap.Logger,
) {
	r.With(
		middleware.AuthJWT(tokens, log),
		middleware.Admin(repo.User, log),
	).Route("/api/users", func(r chi.Router) {
		r.Get("/", userHandler.ListUsers)
		r.Get("/{id}/", userHandler.GetUser)
		r.Patch("/{id}/", userHandler.PatchUser)
		r.Delete("/{id}/", userHandler.DeleteUser)
	})
}
