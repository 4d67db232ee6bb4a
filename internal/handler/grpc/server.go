package grpc

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// NewServer returns a gRPC server with the lookup and health services registered.
func NewServer(h *Handler, logger *slog.Logger) *gogrpc.Server {
	s := gogrpc.NewServer(
		gogrpc.ChainUnaryInterceptor(Recovery(logger), Logger(logger)),
		gogrpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionAge:      5 * time.Minute,
			MaxConnectionAgeGrace: 30 * time.Second,
		}),
	)

	h.Register(s)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthServer)

	return s
}

// Logger logs every call with slog, at a level depending on the status code.
func Logger(logger *slog.Logger) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		attrs := []any{
			"method", info.FullMethod,
			"code", code.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		}

		switch code {
		case codes.OK:
			logger.Info("rpc completed", attrs...)
		case codes.Internal, codes.Unknown:
			logger.Error("rpc completed", append(attrs, "error", err)...)
		default:
			logger.Warn("rpc completed", attrs...)
		}
		return resp, err
	}
}

// Recovery turns a panicking handler into an Internal error.
func Recovery(logger *slog.Logger) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("caught panic in rpc", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
