package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"otprelay/internal/models"
	"otprelay/internal/services"
	"otprelay/internal/utils"
)

// AuthHandler serves the app-facing reset flow: forgot-password starts a
// challenge from a username, verify-otp trades a code for a reset token,
// reset-password redeems the token and writes the new password.
type AuthHandler struct {
	resetService services.ResetService
	otpService   services.OTPService
}

func NewAuthHandler(resetService services.ResetService, otpService services.OTPService) *AuthHandler {
	return &AuthHandler{resetService: resetService, otpService: otpService}
}

func (a *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body for ForgotPassword")
		utils.SendJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	email, err := a.resetService.Initiate(r.Context(), req.Username)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrEmailNotFound) {
			statusCode = http.StatusNotFound
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"email": email})
}

func (a *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body for VerifyOTP")
		utils.SendJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	token, err := a.otpService.Verify(r.Context(), req.Email, req.OTP)
	if err != nil {
		if errors.Is(err, services.ErrNoMatch) {
			utils.SendJSONError(w, services.ErrNoMatch.Error(), http.StatusBadRequest)
			return
		}
		utils.SendJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"resetToken": token})
}

func (a *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body for ResetPassword")
		utils.SendJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.resetService.Complete(r.Context(), &req); err != nil {
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, services.ErrPasswordMismatch):
			statusCode = http.StatusBadRequest
		case errors.Is(err, services.ErrInvalidToken):
			statusCode = http.StatusUnauthorized
		case errors.Is(err, services.ErrUserNotFound):
			statusCode = http.StatusNotFound
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully."})
}
