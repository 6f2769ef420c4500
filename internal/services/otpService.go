package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"otprelay/internal/metrics"
	"otprelay/internal/models"
	"otprelay/internal/repositories"
)

// OTPService is the relay's state machine: it records one live challenge
// per subject email, delivers the code out-of-band, and validates submitted
// codes. A challenge moves Created -> Consumed or Created -> Expired, both
// terminal; a fresh Dispatch starts an independent challenge and kills the
// previous one for the same subject.
type OTPService interface {
	Dispatch(ctx context.Context, email, code string) error
	Verify(ctx context.Context, email, code string) (string, error)
}

type otpService struct {
	challengeRepo repositories.ChallengeRepository
	tokenService  TokenService
	emailService  EmailService
	ttl           time.Duration
	maxAttempts   int
}

func NewOTPService(challengeRepo repositories.ChallengeRepository, tokenService TokenService, emailService EmailService, ttl time.Duration, maxAttempts int) OTPService {
	s := &otpService{
		challengeRepo: challengeRepo,
		tokenService:  tokenService,
		emailService:  emailService,
		ttl:           ttl,
		maxAttempts:   maxAttempts,
	}
	go s.sweepExpiredPeriodically()
	return s
}

func (s *otpService) Dispatch(ctx context.Context, email, code string) error {
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), 8)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash OTP code")
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	challenge, err := s.challengeRepo.Replace(ctx, &models.Challenge{
		Email:     email,
		CodeHash:  string(codeHash),
		Consumed:  false,
		Attempts:  0,
		ExpiresAt: time.Now().Add(s.ttl),
	})
	if err != nil {
		metrics.OTPDispatchedTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	subject := "Your OTP Code"
	body := fmt.Sprintf("Your OTP code is: %s", code)
	if err := s.emailService.SendEmail(email, subject, body); err != nil {
		// Dispatch only counts once the transport accepts; a challenge
		// the user never received must not stay live.
		log.Error().Err(err).Str("email", email).Msg("OTP email dispatch failed")
		if delErr := s.challengeRepo.Delete(ctx, challenge.ID); delErr != nil {
			log.Error().Err(delErr).Str("email", email).Msg("Failed to roll back undelivered challenge")
		}
		metrics.OTPDispatchedTotal.WithLabelValues("failed").Inc()
		return ErrTransport
	}

	metrics.OTPDispatchedTotal.WithLabelValues("accepted").Inc()
	log.Info().Str("email", email).Time("expires_at", challenge.ExpiresAt).Msg("OTP challenge dispatched")
	return nil
}

// Verify checks the submitted code against the live challenge for email.
// Every failure mode collapses into ErrNoMatch; the reasons are only
// distinguished in the logs. On a match it consumes the challenge and
// returns a single-use reset token.
func (s *otpService) Verify(ctx context.Context, email, code string) (string, error) {
	challenge, err := s.challengeRepo.FindLiveByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if challenge == nil {
		log.Warn().Str("email", email).Msg("OTP verification with no live challenge")
		metrics.OTPVerifiedTotal.WithLabelValues("no_match").Inc()
		return "", ErrNoMatch
	}

	if challenge.Attempts >= s.maxAttempts {
		log.Warn().Str("email", email).Int("attempts", challenge.Attempts).Msg("OTP verification attempts exhausted")
		metrics.OTPVerifiedTotal.WithLabelValues("no_match").Inc()
		return "", ErrNoMatch
	}

	if bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(code)) != nil {
		if err := s.challengeRepo.IncrementAttempts(ctx, challenge.ID); err != nil {
			log.Error().Err(err).Str("email", email).Msg("Failed to record OTP attempt")
		}
		log.Warn().Str("email", email).Msg("OTP verification with wrong code")
		metrics.OTPVerifiedTotal.WithLabelValues("no_match").Inc()
		return "", ErrNoMatch
	}

	// Conditional update: if a concurrent verify or a superseding dispatch
	// got here first, the challenge is no longer live and this one loses.
	consumed, err := s.challengeRepo.MarkConsumed(ctx, challenge.ID)
	if err != nil {
		return "", err
	}
	if !consumed {
		log.Warn().Str("email", email).Msg("OTP challenge no longer live at consumption")
		metrics.OTPVerifiedTotal.WithLabelValues("no_match").Inc()
		return "", ErrNoMatch
	}

	token, err := s.tokenService.Issue(ctx, email)
	if err != nil {
		return "", err
	}

	metrics.OTPVerifiedTotal.WithLabelValues("match").Inc()
	log.Info().Str("email", email).Msg("OTP verified")
	return token, nil
}

func (s *otpService) sweepExpiredPeriodically() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.challengeRepo.DeleteExpired(ctx); err != nil {
			log.Error().Err(err).Msg("Error sweeping expired OTP challenges")
		}
		cancel()
	}
}
