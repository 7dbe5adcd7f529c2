package app

import (
	"context"

	"go.uber.org/fx"

	"github.com/nguyentranbao-ct/message-core/internal/config"
	"github.com/nguyentranbao-ct/message-core/internal/repo/mongodb"
)

func newMongoDB(lc fx.Lifecycle, cfg *config.Config) (*mongodb.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
	defer cancel()
	db, err := mongodb.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return db.Client.Ping(ctx, nil)
		},
		OnStop: func(ctx context.Context) error {
			return db.Close(ctx)
		},
	})

	return db, nil
}
