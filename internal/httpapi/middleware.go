package httpapi

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fitcoin-app/fitcoin/internal/apperr"
	"github.com/fitcoin-app/fitcoin/internal/ratelimit"
	"github.com/fitcoin-app/fitcoin/pkg/logger"
	"github.com/fitcoin-app/fitcoin/pkg/metrics"
)

// statusWriter captures the response status for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Logging logs request and response details with the correlation identifier.
func Logging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			if sw.status == 0 {
				sw.status = http.StatusOK
			}

			log.Info("handled http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("correlation_id", logger.CorrelationIDFromContext(r.Context())),
			)
		})
	}
}

// Metrics records request counts and durations per route.
func Metrics(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		metrics.RecordHTTPRequest(route, r.Method, sw.status, time.Since(start))
	})
}

// RateLimit guards an endpoint with the configured sliding-window rule,
// keyed by client address. Limiter failures fail open.
func RateLimit(limiter ratelimit.Limiter, rules *ratelimit.Rules, endpoint string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || rules == nil || !rules.Enabled() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit, window, err := rules.GetEndpointLimit(endpoint)
			if err != nil {
				if log != nil {
					log.Error("failed to load endpoint rate limit", slog.String("endpoint", endpoint), slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("%s:%s", endpoint, clientAddr(r))
			result, err := limiter.Check(r.Context(), key, limit, window)
			if err != nil && result == nil {
				if log != nil {
					log.Warn("rate limiter error", slog.String("endpoint", endpoint), slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}

			if result != nil && !result.Allowed {
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: errorBody{
					Code:      apperr.CodeValidation,
					Message:   "Too many requests. Try again later.",
					Retryable: true,
				}})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
