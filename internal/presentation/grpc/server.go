package grpc

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/bibbank/decision-engine/pkg/auth"
	"github.com/bibbank/decision-engine/pkg/tlsutil"
)

// ServerConfig configures the gRPC server.
type ServerConfig struct {
	ServiceName string
	Reflection  bool
	// Interceptors run after recovery and authentication, in order.
	Interceptors []grpclib.UnaryServerInterceptor
	// TLS enables transport security when set.
	TLS *tls.Config
}

// Server wraps a gRPC server with the decision handler registered.
type Server struct {
	gs     *grpclib.Server
	health *health.Server
	logger *slog.Logger
}

// NewServer creates and configures the gRPC server.
func NewServer(handler DecisionServiceServer, tokens auth.TokenValidator, cfg ServerConfig, logger *slog.Logger) *Server {
	interceptors := append([]grpclib.UnaryServerInterceptor{
		RecoveryInterceptor(logger),
		auth.UnaryAuthInterceptor(tokens, []string{
			"/grpc.health.v1.Health/Check",
			"/grpc.health.v1.Health/Watch",
		}),
	}, cfg.Interceptors...)

	opts := []grpclib.ServerOption{grpclib.ChainUnaryInterceptor(interceptors...)}
	if cfg.TLS != nil {
		opts = append(opts, tlsutil.GRPCServerOption(cfg.TLS))
	}
	gs := grpclib.NewServer(opts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(cfg.ServiceName, healthpb.HealthCheckResponse_SERVING)

	if cfg.Reflection {
		reflection.Register(gs)
	}

	RegisterDecisionServiceServer(gs, handler)

	return &Server{
		gs:     gs,
		health: healthSrv,
		logger: logger,
	}
}

// Serve starts the gRPC server on the specified address.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// GracefulStop marks the service as not serving and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}
