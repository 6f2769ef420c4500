package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"otprelay/internal/clients"
	"otprelay/internal/metrics"
	"otprelay/internal/models"
	"otprelay/internal/utils"
)

// ResetService drives the password reset flow end to end: resolve a
// username to a contact email, issue a challenge, and later write the new
// password once a reset token proves the verification happened.
type ResetService interface {
	Initiate(ctx context.Context, username string) (string, error)
	Complete(ctx context.Context, req *models.ResetPasswordRequest) error
}

type resetService struct {
	store      clients.SchoolStoreClient
	otpService OTPService
	tokenSvc   TokenService
}

func NewResetService(store clients.SchoolStoreClient, otpService OTPService, tokenSvc TokenService) ResetService {
	return &resetService{store: store, otpService: otpService, tokenSvc: tokenSvc}
}

// Initiate resolves username to an email, generates a code and dispatches
// it. Returns the destination email so the client can carry it into the
// verification step.
func (s *resetService) Initiate(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", ErrUserNotFound
	}

	account, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			log.Warn().Str("username", username).Msg("Password reset for unknown username")
			return "", ErrUserNotFound
		}
		return "", err
	}

	student, err := s.store.FindStudentByUserID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			log.Warn().Str("username", username).Msg("Account has no student email on file")
			return "", ErrEmailNotFound
		}
		return "", err
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate OTP code")
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	if err := s.otpService.Dispatch(ctx, student.Email, code); err != nil {
		return "", err
	}

	metrics.ResetInitiatedTotal.Inc()
	log.Info().Str("username", username).Str("email", student.Email).Msg("Password reset initiated")
	return student.Email, nil
}

// Complete validates the new password locally, redeems the reset token and
// writes the password to the school store. The local validation runs before
// any network call so a mismatch never touches the store.
func (s *resetService) Complete(ctx context.Context, req *models.ResetPasswordRequest) error {
	if req.NewPassword == "" || req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}

	email, err := s.tokenSvc.Redeem(ctx, req.ResetToken)
	if err != nil {
		metrics.ResetCompletedTotal.WithLabelValues("failed").Inc()
		return err
	}

	// The token must belong to the account being reset, not just any
	// verified subject.
	account, err := s.store.FindUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			metrics.ResetCompletedTotal.WithLabelValues("failed").Inc()
			return ErrUserNotFound
		}
		return err
	}
	student, err := s.store.FindStudentByUserID(ctx, account.ID)
	if err != nil || student.Email != email {
		log.Warn().Str("username", req.Username).Msg("Reset token does not match the account's email")
		metrics.ResetCompletedTotal.WithLabelValues("failed").Inc()
		return ErrInvalidToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 8)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash new password")
		return fmt.Errorf("failed to hash password")
	}

	if err := s.store.ResetPassword(ctx, req.Username, string(hashedPassword)); err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Credential store write failed")
		metrics.ResetCompletedTotal.WithLabelValues("failed").Inc()
		return err
	}

	metrics.ResetCompletedTotal.WithLabelValues("success").Inc()
	log.Info().Str("username", req.Username).Msg("Password reset completed")
	return nil
}
