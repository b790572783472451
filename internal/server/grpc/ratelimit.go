package grpc

import (
	"context"

	"github.com/dmitrijs2005/claveo/internal/server/ratelimit"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// methodLimiter picks the per-method bucket on top of the global one.
func (s *GRPCServer) methodLimiter(method string) *ratelimit.Limiter {
	switch method {
	case fullMethod("Register"), fullMethod("Login"):
		return s.limits.Auth
	case fullMethod("GetSalt"):
		return s.limits.Salt
	}
	return nil
}

// rateLimitInterceptor applies the same per-host buckets as the REST API.
func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.limits == nil {
		return handler(ctx, req)
	}

	key := "unknown"
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		key = ratelimit.HostKey(p.Addr.String())
	}

	if !s.limits.Global.Allow(key) || !s.methodLimiter(info.FullMethod).Allow(key) {
		s.logger.Warn(ctx, "rate limit exceeded", "method", info.FullMethod, "peer", key)
		return nil, status.Error(codes.ResourceExhausted, "too many requests, try again later")
	}
	return handler(ctx, req)
}
