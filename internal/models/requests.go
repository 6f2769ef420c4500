package models

// OTPRequest is the body of the relay endpoints: /send-otp and /verify-otp.
type OTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// OTPResponse is the relay endpoints' reply.
type OTPResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	ResetToken string `json:"reset_token,omitempty"`
}

// ForgotPasswordRequest starts the reset flow from a username.
type ForgotPasswordRequest struct {
	Username string `json:"username"`
}

// VerifyOTPRequest submits the user-entered code for the app flow.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ResetPasswordRequest completes the flow with the token issued on verify.
type ResetPasswordRequest struct {
	Username        string `json:"username"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
	ResetToken      string `json:"resetToken"`
}
