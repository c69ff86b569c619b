package adaptor

import (
	"encoding/json"
	"net/http"

	"coffee-shop-api/internal/dto/request"
	"coffee-shop-api/internal/usecase"
	"coffee-shop-api/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	auth         usecase.AuthService
	verification usecase.VerificationService
	log          *zap.Logger
}

func NewAuthHandler(auth usecase.AuthService, verification usecase.VerificationService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		verification: verification,
		log:          log.With(zap.String("handler", "auth")),
	}
}

// decodeAndValidate reads a JSON body into req and writes a 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}

	return true
}

// Signup handles POST /api/auth/signup/
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.verification.Signup(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "signup")
		return
	}

	utils.ResponseCreated(w, resp.Message, resp)
}

// Login handles POST /api/auth/login/
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// Verify handles POST /api/auth/verify/
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.verification.Verify(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "verify email")
		return
	}

	utils.ResponseSuccess(w, "Email verified successfully", nil)
}

// ResendCode handles POST /api/auth/resend-code/
func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req request.ResendCodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.verification.ResendCode(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "resend code")
		return
	}

	utils.ResponseSuccess(w, resp.Message, resp)
}

// Refresh handles POST /api/auth/refresh/
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.auth.Refresh(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "refresh token")
		return
	}

	utils.ResponseSuccess(w, "Token refreshed", resp)
}

// Me handles GET /api/me/
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.auth.Me(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", profile)
}
