package service

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"folio/app/backup"
	"folio/app/config"
	"folio/app/logger"
	"folio/app/middleware"
	"folio/app/routes"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

// RunAppServer serves the API until ctx is canceled or the process gets
// SIGINT or SIGTERM, then shuts down gracefully.
func RunAppServer(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", cfg.Addr())
	}
	return runServer(ctx, ln, cfg, log)
}

func runServer(ctx context.Context, ln net.Listener, cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		ln.Close()
		return errors.Wrapf(err, "failed to open %s store", cfg.Store)
	}
	defer store.Close()

	deps := routes.Dependencies{Config: cfg, Store: store, Log: log}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		deps.RateCounter = middleware.NewRedisCounter(client)
		log.Info("Rate limiting comment and share requests via redis at %s", cfg.RedisAddr)
	}

	sinks, err := backupSinks(cfg)
	if err != nil {
		ln.Close()
		return err
	}
	worker := backup.NewWorker(store, cfg.BackupInterval, log, sinks...)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	srv := &http.Server{
		Handler:           routes.SetupRoutes(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server running on %s using the %s store", ln.Addr(), store.Kind())
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		stop()
		wg.Wait()
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	wg.Wait()
	if err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}

// backupSinks lists where the periodic snapshots go.
func backupSinks(cfg *config.Config) ([]backup.Sink, error) {
	var sinks []backup.Sink
	if cfg.BackupFile != "" {
		sinks = append(sinks, backup.NewFileSink(cfg.BackupFile))
	}
	if cfg.S3Bucket != "" {
		client, err := backup.NewS3Client(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, backup.NewS3Sink(client, cfg.S3Bucket, cfg.S3Prefix))
	}
	return sinks, nil
}
