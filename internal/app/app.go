package app

import (
	"context"

	"github.com/sadaqat12/snapconnect/internal/httpapi"
	"github.com/sadaqat12/snapconnect/internal/identity"
	"github.com/sadaqat12/snapconnect/internal/identity/identityimpl"
	"github.com/sadaqat12/snapconnect/internal/lifecycle"
	"github.com/sadaqat12/snapconnect/internal/lifecycle/lifecycleimpl"
	"github.com/sadaqat12/snapconnect/internal/media"
	"github.com/sadaqat12/snapconnect/internal/media/mediaimpl"
	"github.com/sadaqat12/snapconnect/internal/metrics"
	"github.com/sadaqat12/snapconnect/internal/ratelimit"
	"github.com/sadaqat12/snapconnect/internal/realtime"
	"github.com/sadaqat12/snapconnect/internal/realtime/realtimeimpl"
	repositories "github.com/sadaqat12/snapconnect/internal/repositories/fx"
	"github.com/sadaqat12/snapconnect/pkg/config"
	"github.com/sadaqat12/snapconnect/pkg/logger"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		metrics.New,
	),
	repositories.Module,
	fx.Provide(
		fx.Annotate(
			mediaimpl.New,
			fx.As(new(media.Store)),
		),
		fx.Annotate(
			identityimpl.New,
			fx.As(new(identity.Client)),
		),
		fx.Annotate(
			realtimeimpl.New,
			fx.As(new(realtime.Notifier)),
			fx.As(new(httpapi.Streamer)),
		),
		fx.Annotate(
			ratelimit.New,
			fx.As(new(ratelimit.Limiter)),
		),
		fx.Annotate(
			lifecycleimpl.New,
			fx.As(new(lifecycle.Service)),
		),
		httpapi.New,
	),
	fx.Invoke(run),
)

// run starts the background jobs. The HTTP server is pulled in here so its
// lifecycle hooks are registered.
func run(lc fx.Lifecycle, log logger.Logger, svc lifecycle.Service, _ *httpapi.Server) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := svc.ScheduleSweep(ctx); err != nil {
				log.Error("Schedule sweep error", "error", err)
				return err
			}
			if err := svc.SchedulePurge(ctx); err != nil {
				log.Error("Schedule purge error", "error", err)
				return err
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
