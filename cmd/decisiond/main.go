package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/bibbank/decision-engine/internal/application/usecase"
	"github.com/bibbank/decision-engine/internal/domain/service"
	"github.com/bibbank/decision-engine/internal/infrastructure/audit"
	"github.com/bibbank/decision-engine/internal/infrastructure/authorization"
	"github.com/bibbank/decision-engine/internal/infrastructure/config"
	"github.com/bibbank/decision-engine/internal/infrastructure/kafka"
	"github.com/bibbank/decision-engine/internal/infrastructure/metrics"
	pgRepo "github.com/bibbank/decision-engine/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/decision-engine/internal/infrastructure/persistence/postgres/migrations"
	"github.com/bibbank/decision-engine/internal/infrastructure/ratelimit"
	grpcPresentation "github.com/bibbank/decision-engine/internal/presentation/grpc"
	"github.com/bibbank/decision-engine/internal/presentation/rest"
	"github.com/bibbank/decision-engine/pkg/auth"
	pkgkafka "github.com/bibbank/decision-engine/pkg/kafka"
	"github.com/bibbank/decision-engine/pkg/observability"
	pkgpostgres "github.com/bibbank/decision-engine/pkg/postgres"
	"github.com/bibbank/decision-engine/pkg/tlsutil"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("decision engine exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: cfg.ServiceName,
		Version:     cfg.Version,
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Info("starting decision engine",
		"grpc_port", cfg.GRPCPort,
		"http_port", cfg.HTTPPort,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ----------------------------------------------------------
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Version:     cfg.Version,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
		Version:     cfg.Version,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			logger.Error("meter provider shutdown error", "error", err)
		}
	}()

	// --- Database -----------------------------------------------------------
	pgCfg := cfg.Postgres()
	pool, err := pkgpostgres.NewPool(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pkgpostgres.RunMigrations(pgCfg.DSN(), migrations.FS); err != nil {
		return err
	}
	logger.Info("connected to database", "host", pgCfg.Host, "database", pgCfg.Database)

	// --- Rate limiting ------------------------------------------------------
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	limiter, err := ratelimit.NewLimiter(rdb, cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	if err != nil {
		return err
	}

	// --- Messaging ----------------------------------------------------------
	producer, err := pkgkafka.NewProducer(cfg.KafkaClient())
	if err != nil {
		return err
	}
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Error("kafka producer close error", "error", err)
		}
	}()

	publisher := kafka.NewEventPublisher(producer, cfg.Kafka.EventsTopic, logger)
	auditSink := audit.NewFanOut(
		audit.NewLogSink(logger),
		kafka.NewAuditSink(producer, cfg.Kafka.AuditTopic),
	)

	// --- Infrastructure adapters -------------------------------------------
	loanRepo := pgRepo.NewLoanRepo(pool)
	decisionRepo := pgRepo.NewDecisionRepo(pool)
	profileRepo := pgRepo.NewProfileRepo(pool)

	enforcer, err := authorization.NewEnforcer()
	if err != nil {
		return err
	}
	authz := authorization.NewAuthorizer(enforcer, profileRepo)

	decisionCfg := config.LoadDecisionConfig(logger)
	scorer := service.NewScorer(decisionCfg.Model, decisionCfg.Thresholds)
	logger.Info("scoring configured",
		"model", decisionCfg.Model.String(),
		"approve_threshold", decisionCfg.Thresholds.Approve,
		"review_threshold", decisionCfg.Thresholds.Review,
		"min_interval", decisionCfg.MinInterval.String(),
	)

	decisionMetrics, err := metrics.NewDecisionMetrics(meterProvider)
	if err != nil {
		return err
	}

	// --- Use cases ----------------------------------------------------------
	decideUC := usecase.NewDecideLoanUseCase(
		loanRepo, decisionRepo, authz, scorer, auditSink, publisher, decisionMetrics, logger,
		usecase.DecideLoanConfig{MinInterval: decisionCfg.MinInterval},
	)
	scoreUC := usecase.NewScoreApplicationUseCase(scorer)
	listUC := usecase.NewGetLoanDecisionsUseCase(loanRepo, decisionRepo, authz)
	quoteUC := usecase.NewQuoteAffordabilityUseCase()

	tokens, err := newTokenValidator(cfg.JWT)
	if err != nil {
		return err
	}

	var tlsCfg *tls.Config
	if cfg.TLSCertFile != "" {
		if tlsCfg, err = tlsutil.ServerConfig(cfg.TLSCertFile, cfg.TLSKeyFile); err != nil {
			return err
		}
	}

	// --- gRPC server --------------------------------------------------------
	grpcHandler := grpcPresentation.NewDecisionHandler(decideUC, scoreUC, listUC, quoteUC, logger)
	grpcServer := grpcPresentation.NewServer(grpcHandler, tokens, grpcPresentation.ServerConfig{
		ServiceName: cfg.ServiceName,
		Reflection:  cfg.GRPCReflection,
		Interceptors: []grpc.UnaryServerInterceptor{
			grpcPresentation.RateLimitInterceptor(limiter, logger),
		},
		TLS: tlsCfg,
	}, logger)

	errCh := make(chan error, 2)
	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- err
		}
	}()

	// --- HTTP server --------------------------------------------------------
	router := rest.NewRouter(rest.RouterConfig{
		Version:   cfg.Version,
		Decisions: rest.NewDecisionHandler(decideUC, scoreUC, listUC, quoteUC, logger),
		Health:    rest.NewHealthHandler(cfg.ServiceName, cfg.Version, pool, logger),
		Metrics:   metricsHandler,
		Tokens:    tokens,
		Limiter:   limiter,
		Logger:    logger,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         tlsCfg,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr(), "tls", tlsCfg != nil)
		var err error
		if tlsCfg != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- Graceful shutdown --------------------------------------------------
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("decision engine stopped")
	return serveErr
}

// newTokenValidator builds the bearer token validator. A public key, inline or
// from a file, takes precedence over the shared secret.
func newTokenValidator(cfg config.JWTConfig) (*auth.JWTService, error) {
	publicKey := cfg.PublicKey
	if publicKey == "" && cfg.PublicKeyFile != "" {
		pem, err := auth.LoadKeyFromFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		publicKey = string(pem)
	}
	return auth.NewJWTService(auth.JWTConfig{
		Secret:       cfg.Secret,
		PublicKeyPEM: publicKey,
		Issuer:       cfg.Issuer,
	})
}
