package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

func TestToStatus(t *testing.T) {
	st, ok := status.FromError(toStatus(errorbank.NotFound("order not found")))
	require.True(t, ok)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, "order not found", st.Message())

	st, _ = status.FromError(toStatus(errors.New("dial tcp: refused")))
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "internal error", st.Message())

	original := status.Error(codes.Canceled, "gone")
	assert.Equal(t, original, toStatus(original))
}

func TestNewServer_RegistersHealth(t *testing.T) {
	hs := NewHealth()
	server := NewServer(zap.NewNop(), hs)
	t.Cleanup(server.Stop)

	_, registered := server.GetServiceInfo()[healthpb.Health_ServiceDesc.ServiceName]
	assert.True(t, registered)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
