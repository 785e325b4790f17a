package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/veritrace/supplyview/internal/adapter"
	"github.com/veritrace/supplyview/internal/aggregate"
	"github.com/veritrace/supplyview/internal/api/middleware"
	"github.com/veritrace/supplyview/internal/api/server"
	"github.com/veritrace/supplyview/internal/config"
	"github.com/veritrace/supplyview/internal/domain"
	"github.com/veritrace/supplyview/internal/ledger"
	"github.com/veritrace/supplyview/internal/logger"
	"github.com/veritrace/supplyview/internal/repository"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting SupplyView API")

	// Resolve the program identifier
	programID, err := domain.ParseAddress(cfg.Ledger.ProgramID)
	if err != nil {
		logger.FatalCtx(ctx, "Invalid program identifier", zap.Error(err))
	}

	// Connect to the ledger RPC endpoint
	opts := []ledger.Option{}
	if cfg.Signer.Keypair != "" {
		signer, err := ledger.ParseKeypair(cfg.Signer.Keypair)
		if err != nil {
			logger.FatalCtx(ctx, "Invalid signer keypair", zap.Error(err))
		}
		opts = append(opts, ledger.WithSigner(signer))
		logger.InfoCtx(ctx, "Signer configured", zap.String("identity", signer.Identity().String()))
	} else {
		logger.WarnCtx(ctx, "No signer configured, submissions will be rejected")
	}

	client, err := ledger.Connect(ctx, adapter.NewRPCDialer(), ledger.Config{
		Endpoint:       cfg.Ledger.Endpoint,
		ProgramID:      programID,
		Commitment:     ledger.Commitment(cfg.Ledger.Commitment),
		RequestTimeout: cfg.Ledger.RequestTimeout,
		Retry: ledger.RetryConfig{
			MaxAttempts:     uint64(cfg.Ledger.RetryAttempts),
			InitialInterval: cfg.Ledger.RetryInterval,
			MaxInterval:     cfg.Ledger.RetryMaxWait,
		},
	}, opts...)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to ledger", zap.Error(err))
	}
	defer client.Close()
	logger.InfoCtx(ctx, "Connected to ledger",
		zap.String("endpoint", cfg.Ledger.Endpoint),
		zap.String("program_id", programID.String()),
		zap.String("commitment", cfg.Ledger.Commitment),
	)

	// Build repositories and the dashboard aggregator
	repos := repository.NewSet(client)
	agg := aggregate.New(repos, aggregate.Config{
		Workers:   cfg.Worker.WorkerPoolSize,
		QueueSize: cfg.Worker.WorkerQueueSize,
	})
	defer agg.Close()

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
	}

	// Create and start server
	srv := server.New(serverConfig, repos, agg, client)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	logger.Info("API server stopped")
}
