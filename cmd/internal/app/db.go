package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"accounts/cmd/account"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store backends selected by ACCOUNTS_DATABASE_URL.
const (
	storeMemory   = "memory"
	storePostgres = "postgres"
	storeMongo    = "mongo"
)

func storeKind(databaseURL string) (string, error) {
	raw := strings.TrimSpace(databaseURL)
	if raw == "" {
		return storeMemory, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("config: ACCOUNTS_DATABASE_URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return storePostgres, nil
	case "mongodb", "mongodb+srv":
		return storeMongo, nil
	default:
		return "", fmt.Errorf("config: ACCOUNTS_DATABASE_URL: unsupported scheme %q", u.Scheme)
	}
}

// NewDBPool builds a pgxpool with sane defaults and validates connectivity.
// It does not run migrations; see account.Migrate.
func NewDBPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.DBMaxConns > 0 {
		pcfg.MaxConns = cfg.DBMaxConns
	}
	if cfg.DBMinConns >= 0 {
		pcfg.MinConns = cfg.DBMinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	if err := PingDB(ctx, pool, 3*time.Second); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// PingDB checks if we can acquire a connection within timeout.
func PingDB(parent context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	conn.Release()
	return nil
}

// NewMongoClient connects to MongoDB and validates connectivity.
func NewMongoClient(ctx context.Context, cfg Config) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(cfg.DatabaseURL)
	if cfg.DBMaxConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.DBMaxConns))
	}
	if cfg.DBMinConns > 0 {
		opts.SetMinPoolSize(uint64(cfg.DBMinConns))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := PingMongo(ctx, client, 3*time.Second); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// PingMongo checks the primary is reachable within timeout.
func PingMongo(parent context.Context, client *mongo.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	return client.Ping(ctx, readpref.Primary())
}

// storeHandle bundles the chosen account store with its lifecycle hooks.
type storeHandle struct {
	kind  string
	store account.Store
	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func (h storeHandle) Close(ctx context.Context) error {
	if h.close == nil {
		return nil
	}
	return h.close(ctx)
}

// openStore decides between the in-memory dev store, Postgres and MongoDB.
func openStore(ctx context.Context, cfg Config, log Logger) (storeHandle, error) {
	kind, err := storeKind(cfg.DatabaseURL)
	if err != nil {
		return storeHandle{}, err
	}

	switch kind {
	case storePostgres:
		return openPostgresStore(ctx, cfg, log)
	case storeMongo:
		return openMongoStore(ctx, cfg, log)
	default:
		log.Info("db.disabled.inmemory_store")
		return storeHandle{kind: storeMemory, store: account.NewMemoryStore()}, nil
	}
}

func openPostgresStore(ctx context.Context, cfg Config, log Logger) (storeHandle, error) {
	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return storeHandle{}, err
	}

	if cfg.RunMigrations {
		if err := account.Migrate(ctx, pool, cfg.DBSchema); err != nil {
			pool.Close()
			return storeHandle{}, err
		}
		log.Info("db.migrations.applied", "schema", cfg.DBSchema)
	}

	st, err := account.NewPostgresStore(pool, account.WithSchema(cfg.DBSchema))
	if err != nil {
		pool.Close()
		return storeHandle{}, err
	}

	log.Info("db.enabled.postgres_store", "schema", st.Schema())

	// The app owns the pool; PostgresStore never closes it.
	return storeHandle{
		kind:  storePostgres,
		store: st,
		ping: func(ctx context.Context) error {
			return PingDB(ctx, pool, 2*time.Second)
		},
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func openMongoStore(ctx context.Context, cfg Config, log Logger) (storeHandle, error) {
	client, err := NewMongoClient(ctx, cfg)
	if err != nil {
		return storeHandle{}, err
	}

	st, err := account.NewMongoStore(client.Database(cfg.MongoDatabase).Collection(account.MongoCollection))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return storeHandle{}, err
	}
	if err := st.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return storeHandle{}, err
	}

	log.Info("db.enabled.mongo_store", "database", cfg.MongoDatabase)

	return storeHandle{
		kind:  storeMongo,
		store: st,
		ping: func(ctx context.Context) error {
			return PingMongo(ctx, client, 2*time.Second)
		},
		close: client.Disconnect,
	}, nil
}
