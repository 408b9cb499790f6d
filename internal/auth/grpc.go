package auth

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewUnaryAuthInterceptor rejects calls without a valid bearer token in the
// "authorization" metadata and puts the caller's Principal on the context.
// Methods named in public (full method names) skip the check.
func NewUnaryAuthInterceptor(secret string, public ...string) grpc.UnaryServerInterceptor {
	open := make(map[string]bool, len(public))
	for _, m := range public {
		open[m] = true
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] {
			return next(ctx, req)
		}
		p, err := ParseFromMD(ctx, secret)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "%s: %v", info.FullMethod, err)
		}
		return next(WithPrincipal(ctx, p), req)
	}
}

// RequirePrincipal returns the caller or an Unauthenticated status.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	if p, ok := FromContext(ctx); ok {
		return p, nil
	}
	return nil, status.Error(codes.Unauthenticated, "no authenticated user")
}

// CallerID is the authenticated user's id, for requests that act on the
// caller's behalf when no explicit user is named.
func CallerID(ctx context.Context) (int64, error) {
	p, err := RequirePrincipal(ctx)
	if err != nil {
		return 0, err
	}
	return p.UserID, nil
}
