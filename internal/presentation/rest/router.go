package rest

import (
	"log/slog"
	"net/http"

	"github.com/bibbank/decision-engine/internal/domain/port"
	"github.com/bibbank/decision-engine/pkg/auth"
)

// RouterConfig collects what NewRouter needs.
type RouterConfig struct {
	Version   string
	Decisions *DecisionHandler
	Health    *HealthHandler
	Metrics   http.Handler
	Tokens    auth.TokenValidator
	Limiter   port.RateLimiter
	Logger    *slog.Logger
}

// NewRouter builds the HTTP handler. Probes and /metrics are public; every
// /v1 route requires a bearer token and is rate limited per actor.
func NewRouter(cfg RouterConfig) http.Handler {
	api := http.NewServeMux()
	cfg.Decisions.RegisterRoutes(api)

	root := http.NewServeMux()
	cfg.Health.RegisterRoutes(root)
	if cfg.Metrics != nil {
		root.Handle("GET /metrics", cfg.Metrics)
	}
	root.Handle("/v1/", Chain(api,
		SecurityHeaders(cfg.Version),
		auth.HTTPMiddleware(cfg.Tokens, nil),
		RateLimit(cfg.Limiter, cfg.Logger),
	))

	return Chain(root,
		Recover(cfg.Logger),
		Logging(cfg.Logger),
	)
}
