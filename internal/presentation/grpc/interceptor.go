package grpc

import (
	"context"
	"log/slog"
	"math"
	"runtime/debug"
	"strconv"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/bibbank/decision-engine/internal/domain/port"
)

// RecoveryInterceptor turns a panic in a handler into codes.Internal so one
// bad request cannot take the process down.
func RecoveryInterceptor(logger *slog.Logger) grpclib.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpclib.UnaryServerInfo, handler grpclib.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "panic in gRPC handler",
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// RateLimitInterceptor throttles calls per authenticated actor. Install it
// after the auth interceptor. Limiter failures let the call through.
func RateLimitInterceptor(limiter port.RateLimiter, logger *slog.Logger) grpclib.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpclib.UnaryServerInfo, handler grpclib.UnaryHandler) (interface{}, error) {
		key := actorID(ctx)
		if key == "" {
			return handler(ctx, req)
		}

		ok, retryAfter, err := limiter.Allow(ctx, key)
		if err != nil {
			logger.WarnContext(ctx, "rate limiter unavailable", "actor_id", key, "error", err)
			return handler(ctx, req)
		}
		if !ok {
			secs := int(math.Max(1, math.Ceil(retryAfter.Seconds())))
			_ = grpclib.SetHeader(ctx, metadata.Pairs("retry-after", strconv.Itoa(secs)))
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}
