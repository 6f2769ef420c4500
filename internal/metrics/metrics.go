package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OTP lifecycle metrics
	OTPDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_otp_dispatched_total",
		Help: "Total number of OTP dispatch requests.",
	}, []string{"status"}) // status: "accepted" or "failed"
	OTPVerifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_otp_verified_total",
		Help: "Total number of OTP verification attempts.",
	}, []string{"status"}) // status: "match" or "no_match"

	// Reset flow metrics
	ResetInitiatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_password_reset_initiated_total",
		Help: "Total number of password reset flows started.",
	})
	ResetCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_password_reset_completed_total",
		Help: "Total number of password reset completions.",
	}, []string{"status"}) // status: "success" or "failed"

	// Mail transport metrics
	EmailsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_emails_sent_total",
		Help: "Total number of outbound OTP emails.",
	}, []string{"status"})
)
