package engineconfig

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dogmatiq/ferrite"
	_ "github.com/jackc/pgx/v5/stdlib" // register "pgx" driver
	"github.com/saastack/eventing/internal/telemetry/instrumentedpersistence"
	"github.com/saastack/eventing/persistence/driver/aws/dynamodb"
	"github.com/saastack/eventing/persistence/driver/memory"
	"github.com/saastack/eventing/persistence/driver/postgres"
	"github.com/saastack/eventing/persistence/driver/sqlite"
	"github.com/saastack/eventing/persistence/journal"
	"github.com/saastack/eventing/persistence/kv"
)

var (
	// journalStoreDSN is the DSN describing which journal store to use.
	journalStoreDSN = ferrite.
			URL("EVENTING_JOURNAL_DSN", "the DSN of the journal store").
			Optional(ferrite.WithRegistry(FerriteRegistry))

	// keyValueStoreDSN is the DSN describing which key/value store to use.
	keyValueStoreDSN = ferrite.
				URL("EVENTING_KV_DSN", "the DSN of the key/value store").
				Optional(ferrite.WithRegistry(FerriteRegistry))
)

// JournalStoreFromDSN returns the journal store described by the given DSN,
// along with a function that releases its resources.
//
// The supported schemes are "memory", "postgres", "sqlite" and "dynamodb".
func JournalStoreFromDSN(ctx context.Context, dsn *url.URL) (journal.Store, func(), error) {
	switch dsn.Scheme {
	case "memory":
		return &memory.JournalStore{}, func() {}, nil

	case "postgres", "postgresql":
		db, err := openPostgres(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return &postgres.JournalStore{DB: db}, closeDB(db), nil

	case "sqlite":
		db, err := sqlite.Open(ctx, SQLitePath(dsn))
		if err != nil {
			return nil, nil, err
		}
		return &sqlite.JournalStore{DB: db}, closeDB(db), nil

	case "dynamodb":
		client, table, err := OpenDynamoDB(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return &dynamodb.JournalStore{Client: client, Table: table}, func() {}, nil
	}

	return nil, nil, fmt.Errorf("unsupported journal store DSN scheme: %q", dsn.Scheme)
}

// KeyValueStoreFromDSN returns the key/value store described by the given
// DSN, along with a function that releases its resources.
//
// The supported schemes are the same as [JournalStoreFromDSN].
func KeyValueStoreFromDSN(ctx context.Context, dsn *url.URL) (kv.Store, func(), error) {
	switch dsn.Scheme {
	case "memory":
		return &memory.KeyValueStore{}, func() {}, nil

	case "postgres", "postgresql":
		db, err := openPostgres(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return &postgres.KeyValueStore{DB: db}, closeDB(db), nil

	case "sqlite":
		db, err := sqlite.Open(ctx, SQLitePath(dsn))
		if err != nil {
			return nil, nil, err
		}
		return &sqlite.KeyValueStore{DB: db}, closeDB(db), nil

	case "dynamodb":
		client, table, err := OpenDynamoDB(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return &dynamodb.KeyValueStore{Client: client, Table: table}, func() {}, nil
	}

	return nil, nil, fmt.Errorf("unsupported key/value store DSN scheme: %q", dsn.Scheme)
}

// OpenPostgres opens the PostgreSQL database described by dsn using the pgx
// driver.
func OpenPostgres(ctx context.Context, dsn *url.URL) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn.String())
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}

	return db, nil
}

func openPostgres(ctx context.Context, dsn *url.URL) (*sql.DB, error) {
	db, err := OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := postgres.CreateSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create postgres schema: %w", err)
	}

	return db, nil
}

// SQLitePath returns the file path from a DSN of the form "sqlite:path" or
// "sqlite:///absolute/path".
func SQLitePath(dsn *url.URL) string {
	if dsn.Opaque != "" {
		return dsn.Opaque
	}
	return dsn.Host + dsn.Path
}

// OpenDynamoDB returns a DynamoDB client and table name from a DSN of the
// form "dynamodb://[key:secret@]table?region=...&endpoint=...".
func OpenDynamoDB(ctx context.Context, dsn *url.URL) (*awsdynamodb.Client, string, error) {
	table := dsn.Host
	if table == "" {
		return nil, "", fmt.Errorf("dynamodb DSN must specify a table name")
	}

	q := dsn.Query()

	var options []func(*config.LoadOptions) error

	if region := q.Get("region"); region != "" {
		options = append(options, config.WithRegion(region))
	}

	if endpoint := q.Get("endpoint"); endpoint != "" {
		options = append(
			options,
			config.WithEndpointResolverWithOptions(
				aws.EndpointResolverWithOptionsFunc(
					func(service, region string, _ ...any) (aws.Endpoint, error) {
						return aws.Endpoint{URL: endpoint}, nil
					},
				),
			),
		)
	}

	if user := dsn.User; user != nil {
		secret, _ := user.Password()
		options = append(
			options,
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(user.Username(), secret, ""),
			),
		)
	}

	cfg, err := config.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, "", fmt.Errorf("load aws config: %w", err)
	}

	return awsdynamodb.NewFromConfig(cfg), table, nil
}

func closeDB(db *sql.DB) func() {
	return func() { _ = db.Close() }
}

func (c *Config) finalizePersistence() {
	ctx := context.Background()

	if c.UseEnv {
		if c.Persistence.Journals == nil {
			if dsn, ok := journalStoreDSN.Value(); ok {
				s, closer, err := JournalStoreFromDSN(ctx, dsn)
				if err != nil {
					panic(fmt.Sprintf("EVENTING_JOURNAL_DSN: %s", err))
				}
				c.Persistence.Journals = s
				c.Closers = append(c.Closers, closer)
			}
		}

		if c.Persistence.Keyspaces == nil {
			if dsn, ok := keyValueStoreDSN.Value(); ok {
				s, closer, err := KeyValueStoreFromDSN(ctx, dsn)
				if err != nil {
					panic(fmt.Sprintf("EVENTING_KV_DSN: %s", err))
				}
				c.Persistence.Keyspaces = s
				c.Closers = append(c.Closers, closer)
			}
		}
	}

	if c.Persistence.Journals == nil {
		c.Telemetry.Logger.Warn(
			"no journal store is configured, events are kept in memory; set EVENTING_JOURNAL_DSN or provide the WithJournalStore() option",
		)
		c.Persistence.Journals = &memory.JournalStore{}
	}

	if c.Persistence.Keyspaces == nil {
		c.Telemetry.Logger.Warn(
			"no key/value store is configured, checkpoints and snapshots are kept in memory; set EVENTING_KV_DSN or provide the WithKeyValueStore() option",
		)
		c.Persistence.Keyspaces = &memory.KeyValueStore{}
	}

	c.Persistence.Journals = &instrumentedpersistence.JournalStore{
		Next:      c.Persistence.Journals,
		Telemetry: c.Telemetry,
	}

	c.Persistence.Keyspaces = &instrumentedpersistence.KeyValueStore{
		Next:      c.Persistence.Keyspaces,
		Telemetry: c.Telemetry,
	}
}
