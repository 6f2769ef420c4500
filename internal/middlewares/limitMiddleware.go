package middlewares

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var ipVisitors = make(map[string]*visitor)
var otpVisitors = make(map[string]*visitor)
var mu sync.Mutex

func getLimiter(key string, strict bool) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	var v *visitor
	var exists bool

	if strict {
		v, exists = otpVisitors[key]
	} else {
		v, exists = ipVisitors[key]
	}

	if !exists {
		// OTP endpoints get a much tighter budget than the rest of the
		// API: brute-forcing a 6-digit code must not be cheap.
		limiter := rate.NewLimiter(3, 5)
		if strict {
			limiter = rate.NewLimiter(rate.Every(2*time.Second), 3)
		}
		v = &visitor{limiter, time.Now()}
		if strict {
			otpVisitors[key] = v
		} else {
			ipVisitors[key] = v
		}
	}

	v.lastSeen = time.Now()

	return v.limiter
}

func CleanupVisitors() {
	for {
		time.Sleep(time.Minute)

		mu.Lock()
		for ip, v := range ipVisitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(ipVisitors, ip)
			}
		}
		for ip, v := range otpVisitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(otpVisitors, ip)
			}
		}
		mu.Unlock()
	}
}

func limit(next http.Handler, strict bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !getLimiter(ip, strict).Allow() {
			http.Error(w, http.StatusText(429), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit applies the general per-IP request budget.
func RateLimit(next http.Handler) http.Handler {
	return limit(next, false)
}

// OTPRateLimit applies the strict per-IP budget for OTP endpoints.
func OTPRateLimit(next http.Handler) http.Handler {
	return limit(next, true)
}
