// Command shelfstream runs the catalog API: books CRUD over MongoDB,
// cover image intake, and a websocket hub pushing change notifications
// to every connected client.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	catalogmod "github.com/shelfstream/shelfstream/modules/catalog"
	storagemod "github.com/shelfstream/shelfstream/modules/storage"
	"github.com/shelfstream/shelfstream/pkg/config"
	"github.com/shelfstream/shelfstream/pkg/httpserver"
	"github.com/shelfstream/shelfstream/pkg/logger"
	"github.com/shelfstream/shelfstream/pkg/mongo"
	"github.com/shelfstream/shelfstream/pkg/storage"
	"github.com/shelfstream/shelfstream/pkg/wshub"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"APP_SERVICE_NAME" envDefault:"shelfstream"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("service stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg     appConfig
		serverCfg  httpserver.Config
		mongoCfg   mongo.Config
		storageCfg storage.Config
		hubCfg     wshub.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&serverCfg)
	config.MustLoad(&mongoCfg)
	config.MustLoad(&storageCfg)
	config.MustLoad(&hubCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, appCfg.ServiceName))
	logger.SetAsDefault(log)

	db, err := mongo.NewWithDatabase(ctx, mongoCfg)
	if err != nil {
		return fmt.Errorf("connect to mongodb: %w", err)
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Warn("failed to disconnect from mongodb", logger.Error(err))
		}
	}()

	store, err := newStore(ctx, storageCfg)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}
	if storageCfg.PurgeOnStartup {
		if err := store.Purge(ctx); err != nil {
			return fmt.Errorf("purge file store: %w", err)
		}
		log.Info("file store purged on startup")
	}

	registry := wshub.NewRegistry()
	hub := wshub.NewHub(registry,
		wshub.WithWriteTimeout(hubCfg.WriteTimeout),
		wshub.WithLogger(log),
	)
	svc := catalogmod.NewService(
		catalogmod.NewMongoRepository(db),
		store,
		hub,
		catalogmod.WithServiceLogger(log),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Mount(catalogmod.Route, catalogmod.NewHandler(svc).Router())
	r.Mount(storagemod.Route, storagemod.NewHandler(store, storagemod.WithHandlerLogger(log)).Router())
	r.Method(http.MethodGet, "/ws", wshub.NewHandler(hub, wshub.WithHandlerLogger(log)))
	r.Get("/health", httpserver.HealthCheckHandler(log, mongo.Healthcheck(db.Client())))

	log.Info("starting server",
		slog.String("addr", serverCfg.Addr),
		slog.String("storage_driver", storageCfg.Driver),
	)
	return httpserver.New(serverCfg, httpserver.WithLogger(log)).Run(ctx, r)
}

// newStore selects the file store backend from configuration.
func newStore(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	switch cfg.Driver {
	case "", "local":
		return storage.NewLocalStore(cfg)
	case "s3":
		var s3Cfg storage.S3Config
		config.MustLoad(&s3Cfg)
		return storage.NewS3Store(ctx, cfg, s3Cfg)
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", storage.ErrInvalidConfig, cfg.Driver)
	}
}
