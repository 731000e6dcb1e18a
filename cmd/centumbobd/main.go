package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/aoperat/centumbob/internal/app"
	"github.com/aoperat/centumbob/internal/async"
	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/server"
	ingestsvc "github.com/aoperat/centumbob/internal/services/ingest"
)

const (
	shutdownTimeout = 30 * time.Second
	inboxDebounce   = 2 * time.Second
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := a.OCR.Available(); err != nil {
		logger.Warn("ocr unavailable, analyze requests will fail", "error", err)
	}

	// gRPC health
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	hs := server.NewHealthServer(a.Ping, 15*time.Second, logger)
	healthpb.RegisterHealthServer(grpcServer, hs)
	go hs.Run(ctx)
	go func() {
		logger.Info("grpc health listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve error", "error", err)
		}
	}()

	// inbox
	var queue *async.ProcessorQueue
	if cfg.Storage.InboxDir != "" {
		queue = async.NewProcessorQueue(a.InboxProcessor(false), logger,
			async.WithWorkers(1),
			async.WithQueueSize(64),
			async.WithProcessTimeout(3*time.Minute),
		)
		inbox := ingestsvc.NewService(cfg.Storage.InboxDir, queue, logger)
		go func() {
			if err := inbox.Watch(ctx, true, inboxDebounce); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("inbox watcher stopped", "error", err)
			}
		}()
	}

	// HTTP API
	handler, limiter := a.HTTPHandler()
	defer limiter.Stop()
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("centumbob listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
	grpcServer.GracefulStop()
	logger.Info("stopped")
}
