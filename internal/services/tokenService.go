package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"otprelay/internal/models"
	"otprelay/internal/repositories"
	"otprelay/internal/utils"
)

// TokenService issues and redeems the single-use reset tokens handed out
// after a successful OTP verification. The password reset endpoint only
// accepts a token minted here, so the reset step cannot be reached by
// forging navigation state.
type TokenService interface {
	Issue(ctx context.Context, email string) (string, error)
	Redeem(ctx context.Context, token string) (string, error)
}

type tokenService struct {
	tokenRepo repositories.ResetTokenRepository
	secret    []byte
	ttl       time.Duration
}

func NewTokenService(tokenRepo repositories.ResetTokenRepository, secret []byte, ttl time.Duration) TokenService {
	s := &tokenService{tokenRepo: tokenRepo, secret: secret, ttl: ttl}
	go s.sweepExpiredPeriodically()
	return s
}

func (s *tokenService) Issue(ctx context.Context, email string) (string, error) {
	signed, tokenID, err := utils.GenerateResetToken(s.secret, email, s.ttl)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign reset token")
		return "", err
	}

	_, err = s.tokenRepo.Create(ctx, &models.ResetToken{
		TokenID:   tokenID,
		Email:     email,
		Consumed:  false,
		ExpiresAt: time.Now().Add(s.ttl),
	})
	if err != nil {
		return "", err
	}

	log.Info().Str("email", email).Str("token_id", tokenID).Msg("Reset token issued")
	return signed, nil
}

// Redeem validates and consumes a token, returning the email it is bound to.
func (s *tokenService) Redeem(ctx context.Context, token string) (string, error) {
	claims, err := utils.ParseResetToken(s.secret, token)
	if err != nil {
		log.Warn().Err(err).Msg("Reset token failed signature or expiry check")
		return "", ErrInvalidToken
	}

	consumed, err := s.tokenRepo.Consume(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if !consumed {
		log.Warn().Str("token_id", claims.ID).Msg("Reset token already spent or unknown")
		return "", ErrInvalidToken
	}

	return claims.Email, nil
}

func (s *tokenService) sweepExpiredPeriodically() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.tokenRepo.DeleteExpired(ctx); err != nil {
			log.Error().Err(err).Msg("Error sweeping expired reset tokens")
		}
		cancel()
	}
}
