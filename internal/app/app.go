package app

import (
	"context"

	"github.com/carousell/ct-go/pkg/logger"
	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/nguyentranbao-ct/message-core/internal/config"
	"github.com/nguyentranbao-ct/message-core/internal/kafka"
	"github.com/nguyentranbao-ct/message-core/internal/repo/mongodb"
	"github.com/nguyentranbao-ct/message-core/internal/server"
	"github.com/nguyentranbao-ct/message-core/internal/usecase"
)

func Invoke(funcs ...any) *fx.App {
	log := logger.MustNamed("app")
	conf := config.MustLoad()
	log.Debugw("config loaded", log.Reflect("config", conf))
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Unwrap().Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			newMongoDB,

			server.NewHandler,

			usecase.NewMessageUsecase,

			mongodb.NewMessageRepository,
			mongodb.NewMigrationRepository,

			kafka.NewPublisher,
		),
		fx.Supply(conf),
		fx.Invoke(RunMigrations),
		fx.Invoke(funcs...),
	)
}

// RunMigrations prepares indexes and normalizes legacy documents on startup.
// Both steps are idempotent.
func RunMigrations(lc fx.Lifecycle, migrationRepo mongodb.MigrationRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := migrationRepo.EnsureMessageIndexes(ctx); err != nil {
				return err
			}
			if err := migrationRepo.NormalizeMessageSets(ctx); err != nil {
				return err
			}
			log.Infow(ctx, "message migrations applied")
			return nil
		},
	})
}
