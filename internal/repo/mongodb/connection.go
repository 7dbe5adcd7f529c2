package mongodb

import (
	"context"
	"fmt"

	"github.com/nguyentranbao-ct/message-core/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewConnection connects and pings the configured deployment.
func NewConnection(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("message-core").
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetTimeout(cfg.Timeout)

	// Only set auth if password is provided
	if cfg.Password != "" {
		clientOptions.SetAuth(options.Credential{
			AuthSource: cfg.AuthDB,
			Username:   cfg.Username,
			Password:   cfg.Password,
		})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &DB{
		Client:   client,
		Database: client.Database(cfg.Database),
	}, nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}
