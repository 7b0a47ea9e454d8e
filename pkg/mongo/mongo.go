// Package mongo creates the MongoDB client the catalog repository runs
// on, with connection retries and a health check for readiness probes.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	ErrFailedToConnect   = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed = errors.New("mongo healthcheck failed")
)

// Config represents the configuration for the database connection.
type Config struct {
	ConnectionURL   string        `env:"MONGODB_URL,required"`                         // ConnectionURL is the URL of the database.
	Database        string        `env:"MONGODB_DATABASE" envDefault:"shelfstream"`    // Database is the database name the service operates on.
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`     // ConnectTimeout is the timeout for connecting to the database.
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`       // MaxPoolSize is the maximum number of pooled connections.
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`         // MinPoolSize is the minimum number of pooled connections.
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"` // MaxConnIdleTime is how long a connection may sit idle in the pool.
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`        // RetryAttempts is the number of connection attempts at startup.
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`       // RetryInterval is the wait between connection attempts.
}

// New creates a mongo client, retrying the initial connection so the
// service survives a database that comes up slightly later.
func New(ctx context.Context, cfg Config) (*mongo.Client, error) {
	for range max(cfg.RetryAttempts, 1) {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime),
		)
		if err == nil {
			if err := client.Ping(ctx, nil); err == nil {
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToConnect, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrFailedToConnect
}

// NewWithDatabase connects and returns the configured database handle.
func NewWithDatabase(ctx context.Context, cfg Config) (*mongo.Database, error) {
	client, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Database(cfg.Database), nil
}

// Healthcheck returns a probe function for the health endpoint. It pings
// the server without touching any collection.
func Healthcheck(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, nil); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
