package middleware

import (
	"net/http"
	"strings"

	"coffee-shop-api/internal/data/repository"
	"coffee-shop-api/internal/policy"
	"coffee-shop-api/pkg/token"
	"coffee-shop-api/pkg/utils"

	"go.uber.org/zap"
)

// TokenVerifier resolves a signed token to the account id it was issued for.
type TokenVerifier interface {
	Verify(tokenString string, want token.Type) (int64, error)
}

// AuthJWT requires a valid bearer access token and stores the caller id on the context.
func AuthJWT(tokens TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Authentication credentials were not provided")
				return
			}

			scheme, raw, found := strings.Cut(authHeader, " ")
			raw = strings.TrimSpace(raw)
			if !found || !strings.EqualFold(scheme, "Bearer") || raw == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			userID, err := tokens.Verify(raw, token.TypeAccess)
			if err != nil {
				logger.Warn("Rejected access token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Given token not valid for any token type")
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.SetUserContext(r.Context(), userID)))
		})
	}
}

// Admin lets through callers the access policy classifies as admin.
func Admin(userRepo repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("Admin check: failed to get user",
					zap.Error(err), zap.Int64("user_id", userID))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			// token outlived its account
			if user == nil {
				utils.ResponseUnauthorized(w, "User not found")
				return
			}

			if !policy.Allows(user, policy.Admin) {
				logger.Warn("Admin check: non-admin access attempt",
					zap.Int64("user_id", userID),
					zap.String("level", policy.Classify(user).String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "You do not have permission to perform this action")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
