package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"otprelay/internal/handlers"
	"otprelay/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	prom := middlewares.NewPrometheusMiddleware()
	r.Use(middlewares.Cors(s.cfg.AllowedOrigins))
	r.Use(middlewares.RateLimit)
	r.Use(prom.Instrument)

	ch := handlers.NewCommonHandler(s.db)
	r.HandleFunc("/", ch.HelloWorldHandler)
	r.HandleFunc("/health", ch.HealthHandler)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.registerOTPRoutes(r)
	s.registerAuthRoutes(r)

	return r
}

// registerOTPRoutes wires the relay contract the mobile client consumes.
func (s *Server) registerOTPRoutes(r *mux.Router) {
	oh := handlers.NewOTPHandler(s.otpService)

	r.Handle("/send-otp", middlewares.OTPRateLimit(http.HandlerFunc(oh.SendOTP))).Methods("POST", "OPTIONS")
	r.Handle("/verify-otp", middlewares.OTPRateLimit(http.HandlerFunc(oh.VerifyOTP))).Methods("POST", "OPTIONS")
}

func (s *Server) registerAuthRoutes(r *mux.Router) {
	ah := handlers.NewAuthHandler(s.resetService, s.otpService)

	r.Handle("/api/auth/forgot-password", middlewares.OTPRateLimit(http.HandlerFunc(ah.ForgotPassword))).Methods("POST", "OPTIONS")
	r.Handle("/api/auth/verify-otp", middlewares.OTPRateLimit(http.HandlerFunc(ah.VerifyOTP))).Methods("POST", "OPTIONS")
	r.Handle("/api/auth/reset-password", middlewares.OTPRateLimit(http.HandlerFunc(ah.ResetPassword))).Methods("POST", "OPTIONS")
}
