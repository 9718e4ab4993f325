package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/monterra-as/installer-api/internal/auth"
	"github.com/monterra-as/installer-api/internal/config"
	"go.uber.org/zap"
)

// RateLimiter throttles requests per client. Anonymous traffic is keyed by
// IP, authenticated traffic by user ID with a higher budget. Whitelisted
// IPs and paths (health probes, swagger) bypass the limiter entirely.
type RateLimiter struct {
	cfg    *config.RateLimitConfig
	logger *zap.Logger

	byIP   func(http.Handler) http.Handler
	byUser func(http.Handler) http.Handler

	allowedIPs   map[string]struct{}
	allowedPaths []string
}

// NewRateLimiter builds the limiter from config.
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:          cfg,
		logger:       logger,
		allowedIPs:   make(map[string]struct{}, len(cfg.WhitelistIPs)),
		allowedPaths: cfg.WhitelistPaths,
	}
	for _, ip := range cfg.WhitelistIPs {
		rl.allowedIPs[ip] = struct{}{}
	}

	rl.byIP = httprate.Limit(
		cfg.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rl.rejected),
	)
	rl.byUser = httprate.Limit(
		cfg.RequestsPerMinuteAuth,
		time.Minute,
		httprate.WithKeyFuncs(rl.userKey),
		httprate.WithLimitHandler(rl.rejected),
	)

	logger.Info("rate limiter configured",
		zap.Bool("enabled", cfg.Enabled),
		zap.Int("per_minute", cfg.RequestsPerMinute),
		zap.Int("per_minute_auth", cfg.RequestsPerMinuteAuth),
	)

	return rl
}

// Limit throttles by user when the request carries an authenticated context,
// by IP otherwise. Mount after authentication.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.bypass(r) {
			next.ServeHTTP(w, r)
			return
		}
		if _, ok := auth.FromContext(r.Context()); ok {
			rl.byUser(next).ServeHTTP(w, r)
			return
		}
		rl.byIP(next).ServeHTTP(w, r)
	})
}

// LimitByIP throttles strictly by client IP. Mount before authentication.
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.bypass(r) {
			next.ServeHTTP(w, r)
			return
		}
		rl.byIP(next).ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) bypass(r *http.Request) bool {
	for _, pattern := range rl.allowedPaths {
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if strings.HasPrefix(r.URL.Path, prefix) {
				return true
			}
		} else if r.URL.Path == pattern {
			return true
		}
	}

	_, ok := rl.allowedIPs[clientIP(r)]
	return ok
}

// userKey buckets authenticated requests per user so one busy client behind
// a shared NAT cannot exhaust the budget for everyone else.
func (rl *RateLimiter) userKey(r *http.Request) (string, error) {
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		return "user:" + userCtx.UserID.String(), nil
	}
	return "ip:" + clientIP(r), nil
}

func (rl *RateLimiter) rejected(w http.ResponseWriter, r *http.Request) {
	rl.logger.Warn("rate limit exceeded",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("client_ip", clientIP(r)),
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate_limited","message":"Too many requests. Please try again later."}`))
}

// clientIP resolves the originating address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First hop in a comma separated chain
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
