package wire

import (
	"coffee-shop-api/internal/adaptor"
	"coffee-shop-api/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	tokens middleware.TokenVerifier,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup/", authHandler.Signup)
		r.Post("/login/", authHandler.Login)
		r.Post("/verify/", authHandler.Verify)
		r.Post("/resend-code/", authHandler.ResendCode)
		r.Post("/refresh/", authHandler.Refresh)
	})

	// ==================== PROTECTED ROUTES ====================
	r.With(middleware.AuthJWT(tokens, log)).Get("/api/me/", authHandler.Me)
}
