package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fitcoin-app/fitcoin/internal/ratelimit"
	"github.com/fitcoin-app/fitcoin/pkg/logger"
)

// NewRouter assembles the API mux with logging, correlation, metrics and
// per-endpoint rate limiting.
func NewRouter(h *Handlers, limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	guard := func(endpoint string, handler http.HandlerFunc) http.Handler {
		return RateLimit(limiter, rules, endpoint, log)(handler)
	}

	mux.Handle("GET /api/dashboard", Metrics("dashboard", http.HandlerFunc(h.Dashboard)))
	mux.Handle("POST /api/tracker/start", Metrics("tracker_start", http.HandlerFunc(h.TrackerStart)))
	mux.Handle("POST /api/tracker/stop", Metrics("tracker_stop", http.HandlerFunc(h.TrackerStop)))

	mux.Handle("GET /api/marketplace/items", Metrics("marketplace_items", http.HandlerFunc(h.MarketplaceItems)))
	mux.Handle("POST /api/marketplace/purchase", Metrics("purchase", guard("purchase", h.Purchase)))

	mux.Handle("GET /api/profile", Metrics("profile", http.HandlerFunc(h.Profile)))
	mux.Handle("POST /api/logout", Metrics("logout", http.HandlerFunc(h.Logout)))

	mux.Handle("POST /api/register", Metrics("register", guard("register", h.Register)))
	mux.Handle("POST /api/login", Metrics("login", guard("login", h.Login)))
	mux.Handle("POST /api/wallet/connect", Metrics("wallet_connect", guard("login", h.WalletConnect)))

	mux.Handle("GET /healthz", http.HandlerFunc(h.Healthz))
	mux.Handle("GET /metrics", promhttp.Handler())

	// Correlation first so the logging middleware sees the identifier.
	return logger.Middleware(Logging(log)(mux))
}
