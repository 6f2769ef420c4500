package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"otprelay/internal/models"
	"otprelay/internal/services"
	"otprelay/internal/utils"
)

// OTPHandler exposes the raw relay contract consumed by the mobile client:
// POST /send-otp and POST /verify-otp with {email, otp} bodies.
type OTPHandler struct {
	otpService services.OTPService
}

func NewOTPHandler(otpService services.OTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

// SendOTP stores and mails a caller-supplied code. Success is only reported
// once the mail transport has accepted the message.
func (h *OTPHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req models.OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body for SendOTP")
		utils.RespondWithJSON(w, http.StatusBadRequest, models.OTPResponse{Success: false, Message: "Invalid request body."})
		return
	}
	if req.Email == "" || req.OTP == "" {
		utils.RespondWithJSON(w, http.StatusBadRequest, models.OTPResponse{Success: false, Message: "Email and OTP are required."})
		return
	}

	if err := h.otpService.Dispatch(r.Context(), req.Email, req.OTP); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to dispatch OTP")
		utils.RespondWithJSON(w, http.StatusInternalServerError, models.OTPResponse{Success: false, Message: "Failed to send OTP."})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.OTPResponse{Success: true, Message: "OTP sent successfully."})
}

// VerifyOTP answers with a bare success flag; wrong, expired, consumed and
// unknown codes are indistinguishable in the response.
func (h *OTPHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body for VerifyOTP")
		utils.RespondWithJSON(w, http.StatusBadRequest, models.OTPResponse{Success: false})
		return
	}

	token, err := h.otpService.Verify(r.Context(), req.Email, req.OTP)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, models.OTPResponse{Success: false})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.OTPResponse{Success: true, ResetToken: token})
}
