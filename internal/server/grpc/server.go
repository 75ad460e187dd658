// Package grpc serves the standard gRPC health protocol. The serving status
// follows the database actor connection.
package grpc

import (
	"context"
	"net"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dmitrijs2005/wsauth/internal/logging"
)

// ServiceName is the health service name clients query for the auth API.
const ServiceName = "wsauth.Auth"

type GRPCServer struct {
	address string
	health  *health.Server
	metrics *grpc_prometheus.ServerMetrics
	logger  logging.Logger
}

// NewGRPCServer registers call metrics on reg; a nil reg disables them.
func NewGRPCServer(a string, l logging.Logger, reg prometheus.Registerer) *GRPCServer {
	s := &GRPCServer{
		address: a,
		health:  health.NewServer(),
		logger:  l.With("module", "grpc_server"),
	}
	if reg != nil {
		s.metrics = grpc_prometheus.NewServerMetrics()
		s.metrics.EnableHandlingTimeHistogram()
		reg.MustRegister(s.metrics)
	}
	// Not serving until the first connect succeeds.
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *GRPCServer) serverOptions() []grpc.ServerOption {
	unary := []grpc.UnaryServerInterceptor{s.loggingInterceptor}
	var stream []grpc.StreamServerInterceptor
	if s.metrics != nil {
		unary = append(unary, s.metrics.UnaryServerInterceptor())
		stream = append(stream, s.metrics.StreamServerInterceptor())
	}
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(s.serverOptions()...)
	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)
	if s.metrics != nil {
		s.metrics.InitializeMetrics(srv)
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		// Watch streams are ended so GracefulStop does not wait on them.
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
