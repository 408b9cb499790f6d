package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bugTracker/internal/auth"
	"bugTracker/internal/config"
	"bugTracker/internal/db"
	grpcserver "bugTracker/internal/grpc"
	"bugTracker/internal/httpapi"
	"bugTracker/internal/logging"
	"bugTracker/internal/metrics"
	"bugTracker/internal/service"
	"bugTracker/internal/store"
	"bugTracker/internal/telemetry"
	"bugTracker/repository"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	EnvFile  string
	HTTPAddr string
	GRPCAddr string
	Dev      bool
}

func newServeCommand() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&opts.EnvFile, "env-file", ".env", "optional file of KEY=VALUE settings")
	cmd.Flags().StringVar(&opts.HTTPAddr, "http-addr", "", "HTTP listen address (overrides HTTP_ADDRESS)")
	cmd.Flags().StringVar(&opts.GRPCAddr, "grpc-addr", "", "gRPC listen address (overrides GRPC_ADDRESS; empty env disables)")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "allow a default JWT secret for local development")
	return cmd
}

func loadConfig(cmd *cobra.Command, opts *serveOptions) (*config.Config, error) {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}
	load := config.Load
	if opts.Dev {
		load = config.LoadWithDefaults
	}
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("http-addr") {
		cfg.HTTP.Address = opts.HTTPAddr
	}
	if cmd.Flags().Changed("grpc-addr") {
		cfg.GRPC.Address = opts.GRPCAddr
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	logger.Infof("Configuration loaded: %v", cfg)

	stopTracing, err := telemetry.Init(ctx, "bugtracker", version, cfg.Telemetry.Stdout, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := stopTracing(sctx); err != nil {
			logger.WithError(err).Warn("stop tracing")
		}
	}()

	d, err := db.Open(ctx, db.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.WithError(err).Warn("close db")
		}
	}()

	gw := store.WithTracing(store.NewSQLGateway(d, logger))
	users := repository.NewUserRepository(gw)
	projects := repository.NewProjectRepository(gw)
	bugs := repository.NewBugRepository(gw)
	comments := repository.NewCommentRepository(gw)

	commentSvc := service.NewCommentService(gw, comments, bugs, users, logger)
	api := httpapi.New(httpapi.Options{
		Comments:  commentSvc,
		Bugs:      service.NewBugService(gw, bugs, comments, projects, users, logger),
		Projects:  service.NewProjectService(gw, projects, users, logger),
		Users:     service.NewUserService(gw, users, auth.NewBcryptHasher(), auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), logger),
		Store:     gw,
		Metrics:   metrics.New(),
		Log:       logger,
		JWTSecret: cfg.Auth.JWTSecret,
		Version:   version,
	})

	g, gctx := errgroup.WithContext(ctx)

	if cfg.GRPC.Address != "" {
		shutdown, err := grpcserver.StartGRPC(cfg, commentSvc, gw, logger)
		if err != nil {
			return err
		}
		logger.WithField("addr", cfg.GRPC.Address).Info("gRPC server listening")
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return shutdown(sctx)
		})
	}

	srv := httpapi.NewServer(cfg.HTTP.Address, api.Router())
	g.Go(func() error {
		logger.WithField("addr", cfg.HTTP.Address).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server stopped with error")
		return err
	}
	logger.Info("servers stopped")
	return nil
}
