// Command consumer reads funds operation requests from a Kafka topic and
// drives them through the transaction engine. Completed operations are
// announced over NATS when NATS_ADDR is configured.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Ari-Ghosh/Banking-MS/internal/events"
	"github.com/Ari-Ghosh/Banking-MS/internal/infra/logging"
	"github.com/Ari-Ghosh/Banking-MS/internal/infra/pgutils"
	"github.com/Ari-Ghosh/Banking-MS/internal/repos/accounts"
	"github.com/Ari-Ghosh/Banking-MS/internal/services/funds"
	"github.com/Ari-Ghosh/Banking-MS/pkg/envconf"
	"github.com/Ari-Ghosh/Banking-MS/pkg/shutdownqueue"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/segmentio/kafka-go"
)

// operationRequest is the wire shape of one requested funds operation.
type operationRequest struct {
	Kind        string `json:"kind"`
	Amount      int64  `json:"amount"`
	Source      int64  `json:"source_account_id"`
	Destination int64  `json:"destination_account_id,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running consumer: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := new(consumerConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error { return db.Close() })

	var pub events.Publisher

	if cfg.NATSAddr != "" {
		nc, err := nats.Connect(cfg.NATSAddr)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}

		shutdownqueue.Add(func(context.Context) error {
			nc.Close()

			return nil
		})

		pub = events.NewNATSPublisher(nc, events.DefaultSubject)
	}

	engine := funds.New(db, pub)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.KafkaAddr},
		GroupID: cfg.KafkaGroup,
		Topic:   cfg.KafkaTopic,
	})

	shutdownqueue.Add(func(context.Context) error { return reader.Close() })

	slog.Info("consumer started", "topic", cfg.KafkaTopic, "group", cfg.KafkaGroup)

	return consume(ctx, reader, engine)
}

func consume(ctx context.Context, reader *kafka.Reader, engine *funds.Engine) error {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			// graceful path on signal
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return fmt.Errorf("read message: %w", err)
		}

		var req operationRequest

		err = json.Unmarshal(msg.Value, &req)
		if err != nil {
			slog.Error("skip malformed operation request",
				"partition", msg.Partition, "offset", msg.Offset, "error", err)

			continue
		}

		op := funds.Operation{
			Kind:        funds.Kind(strings.ToLower(strings.TrimSpace(req.Kind))),
			Amount:      req.Amount,
			Source:      req.Source,
			Destination: req.Destination,
		}

		err = engine.Execute(ctx, op)

		switch {
		case err == nil:
			slog.Info("operation applied",
				"kind", op.Kind, "source", op.Source, "destination", op.Destination, "amount", op.Amount)
		case errors.Is(err, funds.ErrInvalidRequest),
			errors.Is(err, accounts.ErrInsufficientFunds),
			errors.Is(err, accounts.ErrAccountNotFound):
			// terminal for this request; record and move on
			slog.Warn("operation rejected",
				"kind", op.Kind, "source", op.Source, "offset", msg.Offset, "error", err)
		case errors.Is(err, context.Canceled):
			return nil
		default:
			// persistence/lock trouble is retryable; surface it and stop
			// so the group rebalances and redelivers.
			return fmt.Errorf("execute operation at offset %d: %w", msg.Offset, err)
		}
	}
}
