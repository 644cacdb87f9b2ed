package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/eventpix/eventpix/modules/gallery"
	"github.com/eventpix/eventpix/pkg/config"
	"github.com/eventpix/eventpix/pkg/httpserver"
	"github.com/eventpix/eventpix/pkg/logger"
	"github.com/eventpix/eventpix/pkg/pg"
	"github.com/eventpix/eventpix/pkg/quota"
	"github.com/eventpix/eventpix/pkg/redis"
	"github.com/eventpix/eventpix/pkg/requestid"
	"github.com/eventpix/eventpix/pkg/tenant"
)

type appConfig struct {
	Environment    string        `env:"APP_ENV" envDefault:"development"`
	DefaultTenant  string        `env:"DEFAULT_TENANT" envDefault:"public"`
	TenantHeader   string        `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"`
	TenantCacheTTL time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`
}

func main() {
	var (
		appCfg   appConfig
		pgCfg    pg.Config
		redisCfg redis.Config
		httpCfg  httpserver.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)

	log := logger.New(
		logger.WithEnvironment(appCfg.Environment, "eventpix"),
		logger.WithContextExtractors(requestid.LoggerExtractor(), tenant.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	ctx := context.Background()

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		log.Error("postgres connection failed", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		log.Error("migrations failed", logger.Error(err))
		os.Exit(1)
	}

	rdb, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		log.Error("redis connection failed", logger.Error(err))
		os.Exit(1)
	}
	defer rdb.Close()

	provider := tenant.NewPGProvider(pool)
	domains, err := provider.DomainMapping(ctx)
	if err != nil {
		log.Error("loading domain mapping failed", logger.Error(err))
		os.Exit(1)
	}

	resolver := tenant.NewResolver(appCfg.DefaultTenant,
		tenant.WithDomainMapping(domains),
		tenant.WithHeaderName(appCfg.TenantHeader),
	)

	store := quota.NewPGStore(pool)
	guard := quota.New(store, quota.WithLogger(log))
	svc := gallery.NewService(store, log, gallery.WithGuard(guard))

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(chimw.Recoverer)
	r.Get("/healthz", httpserver.Healthcheck(log))
	r.Get("/readyz", httpserver.Healthcheck(log, pg.Healthcheck(pool), redis.Healthcheck(rdb)))

	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(resolver, provider,
			tenant.WithCache(tenant.NewRedisCache(rdb, tenant.DefaultRedisKeyPrefix)),
			tenant.WithCacheTTL(appCfg.TenantCacheTTL),
			tenant.WithLogger(log),
		))
		r.Mount("/", gallery.Router(svc))
	})

	srv := httpserver.New(httpCfg, r, httpserver.WithLogger(log))
	if err := srv.Run(ctx); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
