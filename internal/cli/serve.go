package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/davincicode/client-go/internal/dependencies/clock"
	"github.com/davincicode/client-go/internal/dependencies/random"
	"github.com/davincicode/client-go/internal/devserver"
	"github.com/davincicode/client-go/internal/storage"
	"github.com/davincicode/client-go/internal/storage/memory"
	redisstorage "github.com/davincicode/client-go/internal/storage/redis"
)

func newServeCmd() *cobra.Command {
	var (
		addr     string
		redisURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a game server",
		Long: `Run the game server locally. By default state lives in memory and is
lost on restart; pass --redis to persist rooms and games in Redis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(addr, redisURL)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", getEnvOrDefault("DVC_ADDR", ":8080"), "Listen address (env: DVC_ADDR)")
	cmd.Flags().StringVar(&redisURL, "redis", os.Getenv("DVC_REDIS_URL"), "Redis URL (e.g. redis://localhost:6379); empty for in-memory storage (env: DVC_REDIS_URL)")
	return cmd
}

func runServer(addr, redisURL string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var store storage.Storage
	if redisURL != "" {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("error", err.Error()))
			return err
		}
		defer func() { _ = redisStore.Close() }()
		store = redisStore
		logger.Info("using redis storage", slog.String("url", redisURL))
	} else {
		store = memory.New()
		logger.Info("using in-memory storage")
	}

	hubs := devserver.NewHubManager(logger)
	svc := devserver.NewService(devserver.ServiceConfig{
		Storage: store,
		Hubs:    hubs,
		Clock:   clock.New(),
		Random:  random.New(),
		Logger:  logger,
	})
	defer svc.Close()

	server := &http.Server{
		Addr:    addr,
		Handler: devserver.NewRouter(svc, hubs, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		return err
	}
	return nil
}
