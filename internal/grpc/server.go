package grpcserver

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"bugTracker/internal/auth"
	"bugTracker/internal/config"
	"bugTracker/internal/service"
)

const (
	healthCheckMethod   = "/grpc.health.v1.Health/Check"
	storeHealthInterval = 15 * time.Second
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewServer builds a gRPC server exposing the comment service and the
// standard health service. Every method except the health check requires a
// bearer token.
func NewServer(secret string, comments *service.CommentService, log logrus.FieldLogger) (*grpc.Server, *health.Server) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	srv := grpc.NewServer(grpc.UnaryInterceptor(auth.NewUnaryAuthInterceptor(secret, healthCheckMethod)))

	RegisterCommentServer(srv, &CommentServer{Comments: comments, Log: log.WithField("component", "grpc")})

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

// watchStore keeps the overall health status in line with store reachability
// until ctx is done.
func watchStore(ctx context.Context, hs *health.Server, store Pinger, interval time.Duration) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		st := healthpb.HealthCheckResponse_SERVING
		if err := store.Ping(pctx); err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", st)
		hs.SetServingStatus(commentServiceName, st)
	}
	check()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			check()
		}
	}
}

// StartGRPC starts the gRPC server on the configured address and returns a shutdown function.
func StartGRPC(cfg *config.Config, comments *service.CommentService, store Pinger, log logrus.FieldLogger) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}

	addr := cfg.GRPC.Address
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv, hs := NewServer(cfg.Auth.JWTSecret, comments, log)

	watchCtx, stopWatch := context.WithCancel(context.Background())
	go watchStore(watchCtx, hs, store, storeHealthInterval)
	go func() { _ = srv.Serve(lis) }()

	return func(ctx context.Context) error {
		stopWatch()
		hs.Shutdown()
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}
