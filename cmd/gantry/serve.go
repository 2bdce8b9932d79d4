package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/gantry"
	"github.com/aretw0/gantry/internal/adapters/file"
	"github.com/aretw0/gantry/internal/adapters/redis"
	"github.com/aretw0/gantry/internal/config"
	"github.com/aretw0/gantry/internal/logging"
	"github.com/aretw0/gantry/internal/runtime"
	httpAdapter "github.com/aretw0/gantry/pkg/adapters/http"
	"github.com/aretw0/gantry/pkg/observability"
	"github.com/aretw0/gantry/pkg/persistence/middleware"
	"github.com/aretw0/gantry/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the event intake server and schedule runner",
	Long: `Starts the engine in server mode: an HTTP API for event deliveries and
run inspection, plus a scheduler that fires the workflows' cron triggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		dirFlag, _ := cmd.Flags().GetString("dir")
		debug, _ := cmd.Flags().GetBool("debug")

		if err := runServe(configPath, dirFlag, debug); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "Path to the config file")
}

func runServe(configPath, dirFlag string, debug bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dirFlag != "" {
		cfg.WorkflowDir = dirFlag
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	store, locker, err := openStore(cfg)
	if err != nil {
		return err
	}

	eng, err := gantry.New(cfg.WorkflowDir,
		gantry.WithLogger(logger),
		gantry.WithActionRunner(buildRunner(true)),
		gantry.WithStore(store),
		gantry.WithRuntimeOptions(
			runtime.WithMetrics(metrics),
			runtime.WithTokenTTL(cfg.TokenTTL.Std()),
		),
	)
	if err != nil {
		return err
	}

	schedulerOpts := []runtime.SchedulerOption{
		runtime.WithSchedulerLogger(logger),
		runtime.WithSchedulerMetrics(metrics),
	}
	if locker != nil {
		schedulerOpts = append(schedulerOpts, runtime.WithScheduleLock(locker, time.Hour))
	}
	scheduler := runtime.NewScheduler(eng, schedulerOpts...)
	if err := scheduler.RegisterAll(eng.Loader()); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := httpAdapter.NewServer(eng, eng.Loader(),
		httpAdapter.WithSecret(cfg.WebhookSecret),
		httpAdapter.WithStore(store),
		httpAdapter.WithMetrics(metrics, registry),
		httpAdapter.WithLogger(logger),
		httpAdapter.WithRateLimit(cfg.RateLimit, int(cfg.RateLimit)*2),
	)

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: server.Handler(),
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("server started", "addr", srv.Addr, "store", cfg.Store)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt or terminate signals.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("shutdown started", "signal", sig.String())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("failed to stop server: %w", err)
			}
		}
		logger.Info("server stopped")
	}

	return nil
}

// openStore selects the run persistence backend from the config and wraps
// it with the configured store middlewares. The locker is non-nil only for
// redis, where replicas can coordinate.
func openStore(cfg config.Config) (ports.RunStore, ports.DistributedLocker, error) {
	var store ports.RunStore
	var locker ports.DistributedLocker

	switch cfg.Store {
	case config.StoreFile:
		store = file.New(cfg.StateDir)
	case config.StoreRedis:
		redisStore := redis.New(cfg.RedisAddr, "", 0)
		store = redisStore
		locker = redis.NewLocker(redisStore.Client(), "gantry:")
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}

	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mws = append(mws, middleware.NewRedactionMiddleware(cfg.Redact))
	}
	key, err := cfg.EncryptionKeyBytes()
	if err != nil {
		return nil, nil, err
	}
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}

	return middleware.Chain(store, mws...), locker, nil
}
