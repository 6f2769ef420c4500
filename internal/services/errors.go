package services

import "errors"

var (
	// ErrUserNotFound: the username does not resolve to an account.
	ErrUserNotFound = errors.New("no user found with this username")
	// ErrEmailNotFound: the account has no contact email on file.
	ErrEmailNotFound = errors.New("no email found for this user")
	// ErrNoMatch covers every verification failure (wrong code, expired,
	// consumed, no challenge, attempts exhausted). Callers must not be able
	// to tell these apart.
	ErrNoMatch = errors.New("invalid or expired OTP")
	// ErrTransport: the outbound mail transport rejected the dispatch.
	ErrTransport = errors.New("failed to send OTP email")
	// ErrPasswordMismatch: new password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidToken: the reset token is missing, forged, expired or spent.
	ErrInvalidToken = errors.New("invalid or expired reset token")
)
