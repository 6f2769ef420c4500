package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"otprelay/internal/clients"
	"otprelay/internal/config"
	"otprelay/internal/database"
	"otprelay/internal/middlewares"
	"otprelay/internal/repositories"
	"otprelay/internal/services"
)

type Server struct {
	cfg          *config.Config
	httpServer   *http.Server
	db           database.Service
	otpService   services.OTPService
	resetService services.ResetService
}

func NewServer() *Server {
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET environment variable not set")
	}

	db := database.New()

	challengeRepo := repositories.NewChallengeRepository(db)
	tokenRepo := repositories.NewResetTokenRepository(db)

	emailService := services.NewEmailService(cfg.SMTP)
	tokenService := services.NewTokenService(tokenRepo, []byte(cfg.JWTSecret), cfg.ResetTokenTTL)
	otpService := services.NewOTPService(challengeRepo, tokenService, emailService, cfg.ChallengeTTL, cfg.MaxAttempts)

	storeClient := clients.NewSchoolStoreClient(cfg.SchoolStoreURL, cfg.SchoolStoreTimeout)
	resetService := services.NewResetService(storeClient, otpService, tokenService)

	s := &Server{
		cfg:          cfg,
		db:           db,
		otpService:   otpService,
		resetService: resetService,
	}

	go middlewares.CleanupVisitors()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Int("port", s.cfg.Port).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}

	if err := s.db.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database connection")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
