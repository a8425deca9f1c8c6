package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/crumbhq/crumb-backend/internal/bakeries"
	"github.com/crumbhq/crumb-backend/internal/cron"
	"github.com/crumbhq/crumb-backend/internal/orders"
	"github.com/crumbhq/crumb-backend/internal/timeslots"
	"github.com/crumbhq/crumb-backend/pkg/config"
	"github.com/crumbhq/crumb-backend/pkg/db"
	"github.com/crumbhq/crumb-backend/pkg/logger"
	"github.com/crumbhq/crumb-backend/pkg/metrics"
	"github.com/crumbhq/crumb-backend/pkg/migrate"
	"github.com/crumbhq/crumb-backend/pkg/redis"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry, err := buildRegistry(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron jobs", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, "cron-worker:"+envName(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"jobs":        len(registry.Jobs()),
	})

	if *once {
		logg.Info(ctx, "running single cron cycle")
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	slotLocation, err := cfg.Slots.Location()
	if err != nil {
		return nil, err
	}
	slotsRepo := timeslots.NewRepository(dbClient.DB())
	slotsService, err := timeslots.NewService(timeslots.ServiceParams{
		Repo:               slotsRepo,
		Logger:             logg,
		MinDurationMinutes: cfg.Slots.MinDurationMinutes,
		Location:           slotLocation,
	})
	if err != nil {
		return nil, err
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:    ordersRepo,
		Slots:   slotsRepo,
		Tx:      dbClient,
		Logger:  logg,
		Metrics: metrics.NewBookingMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		return nil, err
	}

	registry := cron.NewRegistry()
	if cfg.FeatureFlags.SlotSeeding {
		seedJob, err := cron.NewSlotSeedJob(cron.SlotSeedJobParams{
			Logger:   logg,
			Bakeries: bakeries.NewRepository(dbClient.DB()),
			Slots:    slotsService,
		})
		if err != nil {
			return nil, err
		}
		registry.Register(seedJob)
	}

	staleJob, err := cron.NewStaleOrderJob(cron.StaleOrderJobParams{
		Logger: logg,
		Repo:   ordersRepo,
		Orders: ordersService,
	})
	if err != nil {
		return nil, err
	}
	registry.Register(staleJob)
	return registry, nil
}

func envName(env string) string {
	if env == "" {
		return "local"
	}
	return env
}
