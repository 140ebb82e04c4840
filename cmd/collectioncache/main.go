// Command collectioncache serves the demo company collections over HTTP,
// cached through the collection proxy.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-collection-cache/internal/config"
	"github.com/goliatone/go-collection-cache/internal/demo"
	"github.com/goliatone/go-collection-cache/internal/server"
	"github.com/goliatone/go-collection-cache/pkg/di"
	"github.com/goliatone/go-collection-cache/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.Setup(logging.DefaultConfig())
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.Setup(logging.Config{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
		Output:  os.Stderr,
		Service: "collectioncache",
	})

	if err := run(cfg, logger); err != nil {
		logging.Error(logger, err).Msg("server stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	db, err := demo.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Database.SeedCompanies > 0 {
		if err := demo.CreateSchema(ctx, db); err != nil {
			return err
		}
		if err := demo.Seed(ctx, db, cfg.Database.SeedCompanies, cfg.Database.SeedEmployees); err != nil {
			return err
		}
		logger.Info().
			Int("companies", cfg.Database.SeedCompanies).
			Int("employees_per_company", cfg.Database.SeedEmployees).
			Msg("seeded demo database")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []di.Option{
		di.WithLogger(logging.NewLogger("collectioncache")),
		di.WithRegisterer(reg),
	}
	if cfg.Cache.UsesRedis() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		logger.Info().Str("addr", cfg.Cache.RedisAddress()).Msg("redis store connected")
		opts = append(opts, di.WithRedis(client))
	}

	container, err := di.NewContainer(cfg.Cache.StoreConfig(), db, opts...)
	if err != nil {
		return err
	}
	if err := demo.RegisterTypes(container.Types()); err != nil {
		return err
	}
	if err := demo.RegisterBlueprints(container.Proxy(), db, cfg.Cache.ExpiresIn); err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Server.Address(),
		Handler: server.NewRouter(server.Config{
			Proxy:          container.Proxy(),
			Logger:         logging.NewLogger("http"),
			Gatherer:       reg,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("store", cfg.Cache.Type).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
		close(errs)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
