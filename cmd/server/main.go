package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storeassist/api"
	boothapi "storeassist/api/booth"
	fittingroomapi "storeassist/api/fittingroom"
	"storeassist/api/health"
	notificationapi "storeassist/api/notification"
	wishlistapi "storeassist/api/wishlist"
	"storeassist/application/booth"
	"storeassist/application/fittingroom"
	"storeassist/application/notification"
	"storeassist/application/wishlist"
	"storeassist/config"
	"storeassist/infrastructure/outbox"
	"storeassist/infrastructure/persistence"
	"storeassist/infrastructure/realtime"
	"storeassist/pkg/logger"
	"storeassist/pkg/retry"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if err := run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "storeassist: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	gormLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		gormLevel = gormlogger.Info
	}
	db, err := persistence.Open(context.Background(), &cfg.Database, logger.NewGormAdapter(gormLevel))
	if err != nil {
		return err
	}
	if err := persistence.Migrate(db); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	redisClient := realtime.NewRedisClient(&cfg.Redis)
	defer redisClient.Close()
	err = retry.Do(context.Background(), retry.DefaultConfig, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	dispatcher := realtime.NewRedisDispatcher(redisClient)

	worker, err := outbox.NewWorker(db, dispatcher,
		cfg.Outbox.PollInterval, cfg.Outbox.BatchSize, cfg.Outbox.MaxRetries)
	if err != nil {
		return fmt.Errorf("build outbox worker: %w", err)
	}

	uowFactory := persistence.NewFactory(db)

	router := api.NewRouter(
		cfg,
		health.NewController(cfg.App.Version),
		wishlistapi.NewController(wishlist.NewService(uowFactory)),
		fittingroomapi.NewController(fittingroom.NewService(uowFactory)),
		notificationapi.NewController(notification.NewService(uowFactory)),
		boothapi.NewController(booth.NewService(uowFactory)),
	)
	router.SetupRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", zap.Error(err))
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
