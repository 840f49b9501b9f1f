package interceptors

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

const requestIDKey = "x-request-id"

// Logging возвращает UnaryServerInterceptor, логирующий каждый вызов
func Logging(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []any{
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"latency", time.Since(start).String(),
		}
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(requestIDKey); len(ids) > 0 {
				fields = append(fields, "requestID", ids[0])
			}
		}

		if err != nil {
			log.Warnw("gRPC request failed", append(fields, "error", err)...)
		} else {
			log.Debugw("gRPC request", fields...)
		}
		return resp, err
	}
}

// Recovery переводит панику обработчика в ошибку codes.Internal
func Recovery(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("gRPC handler panicked", "method", info.FullMethod, "panic", fmt.Sprint(r))
				err = status.Errorf(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
