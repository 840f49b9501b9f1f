package interceptors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

var info = &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

func TestLogging_PassesThrough(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(requestIDKey, "req-1"))

	resp, err := Logging(logger.NewNop())(ctx, "in", info, func(_ context.Context, req any) (any, error) {
		return req.(string) + "-out", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "in-out", resp)

	_, err = Logging(logger.NewNop())(ctx, "in", info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "unknown service")
	})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestRecovery(t *testing.T) {
	_, err := Recovery(logger.NewNop())(context.Background(), nil, info, func(context.Context, any) (any, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}
