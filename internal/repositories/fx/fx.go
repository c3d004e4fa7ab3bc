package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/sadaqat12/snapconnect/internal/migrations"
	"github.com/sadaqat12/snapconnect/internal/repositories/content"
	"github.com/sadaqat12/snapconnect/internal/repositories/scope"
	"github.com/sadaqat12/snapconnect/pkg/config"
	"github.com/sadaqat12/snapconnect/pkg/logger"
	"github.com/sadaqat12/snapconnect/pkg/pgx"
	"go.uber.org/fx"
)

const migrateTimeout = time.Minute

type Opts struct {
	fx.In

	LC     fx.Lifecycle
	Logger logger.Logger
	Config *config.Config
}

// Backend exposes the repositories of the configured store driver.
type Backend struct {
	fx.Out

	Content content.Repository
	Scopes  scope.Repository
}

func NewBackend(opts Opts) (Backend, error) {
	switch opts.Config.Store.Driver {
	case config.StoreDriverMemory:
		opts.Logger.Warn("Using in-memory store, data will not survive a restart")
		items := content.NewMemoryRepository()
		return Backend{
			Content: items,
			Scopes:  scope.NewMemoryRepository().WithOwnership(items.OwnsScope),
		}, nil

	case config.StoreDriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
		defer cancel()
		if err := migrations.Up(ctx, opts.Config.GetDSN()); err != nil {
			return Backend{}, err
		}

		pool, err := pgx.New(pgx.Opts{LC: opts.LC, Logger: opts.Logger, Config: opts.Config})
		if err != nil {
			return Backend{}, err
		}
		return Backend{
			Content: content.NewPgxRepository(pool, opts.Logger),
			Scopes:  scope.NewPgxRepository(pool, opts.Logger),
		}, nil

	default:
		return Backend{}, fmt.Errorf("unknown store driver %q", opts.Config.Store.Driver)
	}
}

var Module = fx.Module("repositories",
	fx.Provide(NewBackend),
)
