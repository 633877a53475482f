// Command schema creates the database schema used by the eventing engine.
//
// The stores are described by the same environment variables used by
// eventing.WithOptionsFromEnvironment.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/dogmatiq/ferrite"
	"github.com/saastack/eventing/broker/outbox"
	"github.com/saastack/eventing/internal/engineconfig"
	"github.com/saastack/eventing/persistence/driver/aws/dynamodb"
	"github.com/saastack/eventing/persistence/driver/postgres"
	"github.com/saastack/eventing/persistence/driver/sqlite"
)

var (
	journalDSN = ferrite.
			URL("EVENTING_JOURNAL_DSN", "the DSN of the journal store").
			Optional()

	keyValueDSN = ferrite.
			URL("EVENTING_KV_DSN", "the DSN of the key/value store").
			Optional()

	outboxDSN = ferrite.
			URL("EVENTING_OUTBOX_DSN", "the DSN of the PostgreSQL database that holds the transactional outbox").
			Optional()
)

type store int

const (
	journalStore store = iota
	keyValueStore
)

func (s store) String() string {
	if s == journalStore {
		return "journal"
	}
	return "key/value"
}

func main() {
	ferrite.Init()

	logger := slog.New(
		slog.NewJSONHandler(
			os.Stdout,
			&slog.HandlerOptions{
				Level: slog.LevelDebug,
			},
		),
	)

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		logger.Error("unable to create schema", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	var errs []error

	if dsn, ok := journalDSN.Value(); ok {
		errs = append(errs, createSchema(ctx, logger, journalStore, dsn))
	}

	if dsn, ok := keyValueDSN.Value(); ok {
		errs = append(errs, createSchema(ctx, logger, keyValueStore, dsn))
	}

	if dsn, ok := outboxDSN.Value(); ok {
		errs = append(errs, createOutbox(ctx, logger, dsn))
	}

	return errors.Join(errs...)
}

func createSchema(
	ctx context.Context,
	logger *slog.Logger,
	s store,
	dsn *url.URL,
) error {
	logger = logger.With(
		slog.String("store", s.String()),
		slog.String("scheme", dsn.Scheme),
	)

	switch dsn.Scheme {
	case "memory":
		logger.Info("in-memory stores do not have a schema")
		return nil

	case "postgres", "postgresql":
		db, err := engineconfig.OpenPostgres(ctx, dsn)
		if err != nil {
			return err
		}
		defer db.Close()

		if s == journalStore {
			err = postgres.CreateJournalSchema(ctx, db)
		} else {
			err = postgres.CreateKeyValueStoreSchema(ctx, db)
		}
		if err != nil {
			return fmt.Errorf("cannot create %s schema: %w", s, err)
		}

	case "sqlite":
		db, err := sqlite.Open(ctx, engineconfig.SQLitePath(dsn))
		if err != nil {
			return err
		}
		defer db.Close()

	case "dynamodb":
		client, table, err := engineconfig.OpenDynamoDB(ctx, dsn)
		if err != nil {
			return err
		}

		if s == journalStore {
			err = dynamodb.CreateJournalTable(ctx, client, table)
		} else {
			err = dynamodb.CreateKeyValueStoreTable(ctx, client, table)
		}
		if err != nil {
			return fmt.Errorf("cannot create %s table %q: %w", s, table, err)
		}

	default:
		return fmt.Errorf("unsupported %s store DSN scheme: %q", s, dsn.Scheme)
	}

	logger.Info("schema created")

	return nil
}

func createOutbox(ctx context.Context, logger *slog.Logger, dsn *url.URL) error {
	db, err := engineconfig.OpenPostgres(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := outbox.Open(ctx, db); err != nil {
		return fmt.Errorf("cannot create outbox table: %w", err)
	}

	logger.Info(
		"schema created",
		slog.String("store", "outbox"),
	)

	return nil
}
