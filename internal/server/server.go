package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/carousell/ct-go/pkg/logger"
	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"

	"github.com/nguyentranbao-ct/message-core/internal/config"
	pkgmdw "github.com/nguyentranbao-ct/message-core/internal/server/middleware"
)

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	handler Controller,
) {
	e := NewEcho(handler)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow(ctx, "starting HTTP server", "addr", conf.Server.Addr)
				if err := e.Start(conf.Server.Addr); !errors.Is(err, http.ErrServerClosed) {
					log.Errorw(ctx, "HTTP server stopped", "error", err)
					sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

// NewEcho builds the http engine with middlewares and message routes.
func NewEcho(handler Controller) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = pkgmdw.NewValidator()
	e.HTTPErrorHandler = pkgmdw.ErrorHandler(logger.MustNamed("http_error"))

	logConfig := pkgmdw.LogRequestConfig{
		Logger: logger.MustNamed("http"),
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/metrics"
		},
		RequestBody: true,
	}

	e.Use(pkgmdw.Metrics())
	e.Use(pkgmdw.RequestID())
	e.Use(pkgmdw.LogRequest(logConfig))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Errorw(c.Request().Context(), "PANIC RECOVER", "error", err, "stack", string(stack))
			return nil
		},
	}))

	e.GET("/health", handler.Health)

	api := e.Group("/api/v1")

	messages := api.Group("/messages")
	messages.POST("", pkgmdw.WrapHandler(handler.CreateMessage))
	messages.GET("", pkgmdw.WrapHandler(handler.GetMessages))
	messages.GET("/by-tags", pkgmdw.WrapHandler(handler.GetMessagesByTags))
	messages.GET("/:id", pkgmdw.WrapHandler(handler.GetMessage))
	messages.DELETE("/:id", pkgmdw.WrapHandler(handler.DeleteMessage))
	messages.POST("/:id/resolve", pkgmdw.WrapHandler(handler.ResolveMessage))
	messages.DELETE("/:id/resolve", pkgmdw.WrapHandler(handler.UnresolveMessage))
	messages.PUT("/:id/likes", pkgmdw.WrapHandler(handler.Like))
	messages.DELETE("/:id/likes", pkgmdw.WrapHandler(handler.Unlike))
	messages.POST("/:id/tags", pkgmdw.WrapHandler(handler.AddTag))
	messages.PUT("/:id/tags/:tag_id", pkgmdw.WrapHandler(handler.UpdateTag))
	messages.POST("/:id/reactions", pkgmdw.WrapHandler(handler.AddReaction))
	messages.DELETE("/:id/reactions/:reaction", pkgmdw.WrapHandler(handler.RemoveReaction))
	messages.POST("/:id/votes", pkgmdw.WrapHandler(handler.AddVote))
	messages.DELETE("/:id/votes", pkgmdw.WrapHandler(handler.RemoveVote))

	conversations := api.Group("/conversations")
	conversations.GET("/grouped-messages", pkgmdw.WrapHandler(handler.GetGroupedMessages))
	conversations.GET("/:id/messages", pkgmdw.WrapHandler(handler.GetConversationMessages))

	return e
}
