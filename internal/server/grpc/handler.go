package grpc

import (
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/wsauth/internal/dbclient"
)

func servingStatus(s dbclient.State) healthpb.HealthCheckResponse_ServingStatus {
	if s == dbclient.Connected {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

// SetState publishes the connection state to health checkers. It is meant
// to be registered with Client.OnStateChange.
func (s *GRPCServer) SetState(state dbclient.State) {
	st := servingStatus(state)
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}
