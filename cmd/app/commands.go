package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/mongotask-api/internal/config"
	"github.com/BuzzLyutic/mongotask-api/internal/database"
	"github.com/BuzzLyutic/mongotask-api/internal/handler"
	"github.com/BuzzLyutic/mongotask-api/internal/logger"
	"github.com/BuzzLyutic/mongotask-api/internal/repo"
	"github.com/BuzzLyutic/mongotask-api/internal/service"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "app",
		Short:         "Task CRUD API over a document store",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "ping",
			Short: "Connect to the configured store and ping it",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPing(cmd.Context())
			},
		},
	)
	return root
}

// openStore connects to the backend selected by cfg.StoreDriver. The returned
// close func releases the connection.
func openStore(ctx context.Context, cfg config.Config) (repo.TaskRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		return repo.NewMongoTaskRepo(db), closeFn, nil

	case config.DriverPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		r := repo.NewPostgresTaskRepo(pool)
		if err := r.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return r, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func runPing(ctx context.Context) error {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Ping(ctx); err != nil {
		return err
	}
	fmt.Printf("%s store is reachable\n", cfg.StoreDriver)
	return nil
}

func runServe(ctx context.Context) error {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	store, closeStore, err := openStore(connectCtx, cfg)
	cancel()
	if err != nil {
		log.Error("Failed to connect to the store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
		return err
	}
	defer closeStore()
	log.Info("Successfully connected to the store", zap.String("driver", cfg.StoreDriver))

	taskService := service.NewTaskService(store)
	taskHandler := handler.NewTaskHandler(taskService, log)

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(taskHandler, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-quit:
	case err := <-errCh:
		log.Error("Server failed", zap.Error(err))
		return err
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
		return err
	}
	log.Info("Server stopped successfully")
	return nil
}
