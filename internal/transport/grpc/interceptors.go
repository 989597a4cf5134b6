package grpc

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryRecoveryInterceptor converts handler panics into Internal status
// errors so one bad request cannot take the server down. The panic value
// and stack stay in the logs, never on the wire.
func UnaryRecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
	) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in rpc handler",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// UnaryLoggingInterceptor emits one wide event per RPC. Health probes log
// at debug so periodic readiness checks do not drown the log.
func UnaryLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		switch {
		case strings.HasPrefix(info.FullMethod, "/grpc.health.v1.Health/"):
			logger.Debug("rpc handled", fields...)
		case code == codes.OK:
			logger.Info("rpc handled", fields...)
		case code == codes.Internal || code == codes.Unknown || code == codes.Unavailable:
			logger.Error("rpc failed", fields...)
		default:
			logger.Warn("rpc rejected", fields...)
		}
		return resp, err
	}
}
