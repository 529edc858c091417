package ratelimit

import (
	"errors"
	"time"

	"github.com/fitcoin-app/fitcoin/pkg/config"
)

// Rules encapsulates configured rate limits and helper methods.
type Rules struct {
	config config.RateLimitConfig
}

// NewRules constructs rate limiting rules from configuration settings.
func NewRules(cfg config.RateLimitConfig) *Rules {
	return &Rules{config: cfg}
}

// Enabled reports whether rate limiting is switched on at all.
func (r *Rules) Enabled() bool {
	return r.config.Enabled
}

// GetEndpointLimit returns the limit and window for a guarded endpoint.
func (r *Rules) GetEndpointLimit(endpoint string) (int, time.Duration, error) {
	switch endpoint {
	case "register":
		return parseRule(r.config.Endpoints.Register)
	case "login":
		return parseRule(r.config.Endpoints.Login)
	case "purchase":
		return parseRule(r.config.Endpoints.Purchase)
	default:
		return 0, 0, errors.New("unsupported endpoint")
	}
}

// GetPerClientLimit returns the per-client rate limiting rule.
func (r *Rules) GetPerClientLimit() (int, time.Duration, error) {
	return parseRule(r.config.PerClient)
}

func parseRule(rule config.RateLimitRule) (int, time.Duration, error) {
	if rule.Window == "" {
		return rule.Limit, 0, errors.New("window duration is not set")
	}
	window, err := time.ParseDuration(rule.Window)
	if err != nil {
		return 0, 0, err
	}
	return rule.Limit, window, nil
}
