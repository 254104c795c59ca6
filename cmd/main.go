package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"boost-engine/internal/adapter/clock"
	httpadapter "boost-engine/internal/adapter/http"
	"boost-engine/internal/adapter/memory"
	"boost-engine/internal/adapter/metrics"
	"boost-engine/internal/adapter/payment"
	"boost-engine/internal/adapter/postgres"
	redisadapter "boost-engine/internal/adapter/redis"
	"boost-engine/internal/adapter/usecase"
	"boost-engine/internal/config"
	"boost-engine/internal/config/configs"
	"boost-engine/internal/core/admission"
	"boost-engine/internal/core/port"
	"boost-engine/internal/core/ranking"
	"boost-engine/internal/db"
)

// main is the entry point of the boost engine. It loads configuration,
// selects the storage, lock and payment backends, starts the lifecycle
// sweeper and serves HTTP until it receives a termination signal.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(cfg.Log.Handler(os.Stdout)).With(slog.String("env", cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = run(ctx, cfg, logger); err != nil {
		logger.Error("boost engine stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server gracefully stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	clk := clock.System{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNewMetrics(reg)

	prices, err := cfg.Pricing.Table()
	if err != nil {
		return fmt.Errorf("pricing config: %w", err)
	}

	store, closeStore, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	locker, closeLocker, err := openLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	var gateway port.PaymentGateway = payment.NewLocal()
	if cfg.Payment.URL != "" {
		gateway = payment.NewGateway(cfg.Payment.URL, cfg.Payment.Timeout, cfg.Payment.BreakerFailures, cfg.Payment.BreakerCooldown)
	} else {
		logger.Warn("PAYMENT_URL not set, approving every payment locally")
	}

	controller := admission.NewController(store, cfg.Admission.Rules(), cfg.Storage.Timeout)
	boosts := usecase.NewBoostUseCase(usecase.BoostDeps{
		Logger:    logger,
		Clock:     clk,
		Store:     store,
		Admission: controller,
		Pricing:   prices,
		Payment:   gateway,
		Locker:    locker,
		Metrics:   m,
	}, usecase.BoostConfig{MaxBoostDuration: cfg.Pricing.MaxDuration, StorageTimeout: cfg.Storage.Timeout})
	feed := usecase.NewFeedUseCase(logger, store, ranking.NewEngine(), m, cfg.Storage.Timeout)
	sweeper := usecase.NewSweeper(logger, clk, store, m, usecase.SweeperConfig{
		Interval:       cfg.Sweep.Interval,
		Retention:      cfg.Sweep.Retention,
		StorageTimeout: cfg.Storage.Timeout,
	}, controller.Lookback())

	handler := httpadapter.NewHandler(boosts, feed, clk, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.Storage, func(), error) {
	if cfg.Storage.Backend() != configs.DriverPostgres {
		logger.Info("using in-memory storage")
		return memory.NewStore(), func() {}, nil
	}

	if cfg.Psql.RunMigrations {
		change, err := db.Migrate(cfg.Psql.Addr.String())
		if err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("schema ready",
			slog.Uint64("from_version", uint64(change.From)),
			slog.Uint64("version", uint64(change.To)),
			slog.Bool("applied", change.Applied()),
		)
	}
	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection: %w", err)
	}
	if cfg.Psql.Seed {
		n, err := db.Seed(ctx, pool, clock.System{}.Now())
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("seed: %w", err)
		}
		logger.Info("demo campaigns seeded", slog.Int("created", n))
	}
	return postgres.NewStore(pool), pool.Close, nil
}

func openLocker(ctx context.Context, cfg config.Config) (port.SellerLocker, func(), error) {
	if cfg.Lock.Backend() != configs.DriverRedis {
		return memory.NewSellerLocker(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return redisadapter.NewSellerLocker(client, "", cfg.Redis.LockTTL, cfg.Redis.LockRetry), func() { _ = client.Close() }, nil
}
