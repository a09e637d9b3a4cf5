// Command auditd drains decision audit messages from Kafka into the
// audit_log table.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bibbank/decision-engine/internal/domain/port"
	"github.com/bibbank/decision-engine/internal/infrastructure/config"
	"github.com/bibbank/decision-engine/internal/infrastructure/kafka"
	pgRepo "github.com/bibbank/decision-engine/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/decision-engine/internal/infrastructure/persistence/postgres/migrations"
	pkgkafka "github.com/bibbank/decision-engine/pkg/kafka"
	"github.com/bibbank/decision-engine/pkg/observability"
	pkgpostgres "github.com/bibbank/decision-engine/pkg/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("audit consumer exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: cfg.ServiceName + "-auditd",
		Version:     cfg.Version,
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCfg := cfg.Postgres()
	pool, err := pkgpostgres.NewPool(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pkgpostgres.RunMigrations(pgCfg.DSN(), migrations.FS); err != nil {
		return err
	}

	consumer, err := pkgkafka.NewConsumer(cfg.KafkaClient(), cfg.Kafka.AuditTopic,
		auditHandler(pgRepo.NewAuditLogRepo(pool), logger), logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	logger.Info("audit consumer started",
		"topic", cfg.Kafka.AuditTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("audit consumer stopped")
	return nil
}

// auditHandler persists each message. Undecodable messages are logged and
// skipped so they do not block the partition; store errors leave the message
// uncommitted.
func auditHandler(store port.AuditSink, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, msg pkgkafka.Message) error {
		entry, err := kafka.DecodeAuditMessage(msg)
		if err != nil {
			logger.WarnContext(ctx, "dropping malformed audit message",
				"key", string(msg.Key), "error", err)
			return nil
		}
		return store.Record(ctx, entry)
	}
}
