package adaptor

import (
	"errors"
	"net/http"
	"strconv"

	"coffee-shop-api/internal/usecase"
	"coffee-shop-api/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth *AuthHandler
	User *UserHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth: NewAuthHandler(service.Auth, service.Verification, log),
		User: NewUserHandler(service.User, log),
	}
}

// handleServiceError maps usecase errors onto the response envelope.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var validationErr *usecase.ValidationError

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidCredentials):
		log.Warn(operation+" failed - invalid credentials")
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrUnauthenticated),
		errors.Is(err, usecase.ErrTokenInvalid):
		log.Warn(operation+" failed - unauthenticated", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrNotVerified),
		errors.Is(err, usecase.ErrInvalidOrExpired),
		errors.Is(err, usecase.ErrAlreadyVerified):
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// parseInt reads a positive integer query value, falling back to the default.
func parseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil || result < 1 {
		return defaultValue
	}

	return result
}
