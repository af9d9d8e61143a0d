package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"supplychainx.org/internal/auth"
	"supplychainx.org/internal/config"
	"supplychainx.org/internal/fulfilment"
	"supplychainx.org/internal/httpapi"
	"supplychainx.org/internal/migrate"
	"supplychainx.org/internal/obs"
	"supplychainx.org/internal/planning"
	"supplychainx.org/internal/procurement"
	"supplychainx.org/internal/production"
	"supplychainx.org/internal/store/pg"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "supplychainx-api:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	obs.SetLogger(logger)
	obs.Init()
	obs.SetBuildInfo(version, commit)

	st, err := pg.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
		applied, err := migrate.Default(st.DB()).Up(migrateCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied", zap.Strings("migrations", applied))
	}

	svcs, err := buildServices(st, cfg)
	if err != nil {
		return err
	}
	api, err := httpapi.New(httpapi.ReadyProbe{Store: st}, version, svcs,
		httpapi.WithLoginRateLimit(cfg.LoginRatePerSec, cfg.LoginRateBurst),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http server starting", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		grpcSrv = grpc.NewServer()
		health := httpapi.NewGRPCHealth(httpapi.ReadyProbe{Store: st})
		health.Register(grpcSrv)
		go health.Run(ctx, 10*time.Second)
		go func() {
			logger.Info("grpc health server starting", zap.String("addr", cfg.GRPCAddr))
			if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- fmt.Errorf("grpc serve: %w", err)
			}
		}()
	}

	go svcs.Auth.RunSweeper(ctx, cfg.TokenSweepInterval)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	logger.Info("stopped")
	return nil
}

func buildServices(st *pg.Store, cfg config.Config) (httpapi.Services, error) {
	authSvc, err := auth.NewService(st, cfg.JWTSecret,
		auth.WithIssuer(cfg.JWTIssuer),
		auth.WithAccessTTL(cfg.AccessTokenTTL),
		auth.WithRefreshTTL(cfg.RefreshTokenTTL),
	)
	if err != nil {
		return httpapi.Services{}, err
	}
	proc, err := procurement.NewService(st)
	if err != nil {
		return httpapi.Services{}, err
	}
	prod, err := production.NewService(st)
	if err != nil {
		return httpapi.Services{}, err
	}
	ful, err := fulfilment.NewService(st)
	if err != nil {
		return httpapi.Services{}, err
	}
	plan, err := planning.NewService(st)
	if err != nil {
		return httpapi.Services{}, err
	}
	return httpapi.Services{
		Auth:        authSvc,
		Procurement: proc,
		Production:  prod,
		Fulfilment:  ful,
		Planning:    plan,
	}, nil
}
