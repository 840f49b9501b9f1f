// Package grpc поднимает gRPC сервер со стандартными сервисами health и reflection
// для оркестраторов и отладки через grpcurl.
package grpc

import (
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/Dhoini/personalized-gospels/config"
	"github.com/Dhoini/personalized-gospels/internal/interceptors"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// ServiceName имя сервиса в протоколе health
const ServiceName = "personalized-gospels"

// Server gRPC сервер
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	log        *logger.Logger
	addr       string
}

// NewServer создает новый gRPC сервер
func NewServer(cfg config.GRPCConfig, log *logger.Logger) (*Server, error) {
	kaParams := keepalive.ServerParameters{
		MaxConnectionIdle:     5 * time.Minute,
		MaxConnectionAge:      time.Hour,
		MaxConnectionAgeGrace: 5 * time.Minute,
		Time:                  2 * time.Minute,
		Timeout:               20 * time.Second,
	}

	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(kaParams),
		grpc.ChainUnaryInterceptor(
			interceptors.Recovery(log),
			interceptors.Logging(log),
		),
	}

	if cfg.UseTLS {
		creds, err := credentials.NewServerTLSFromFile(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}

	grpcServer := grpc.NewServer(opts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	// grpcurl
	reflection.Register(grpcServer)

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		log:        log,
		addr:       net.JoinHostPort(cfg.Host, cfg.Port),
	}, nil
}

// Start слушает адрес из конфигурации и обслуживает запросы до Stop
func (s *Server) Start() error {
	s.log.Info("Starting gRPC server on %s", s.addr)

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(listener)
}

// Serve обслуживает запросы на готовом listener
func (s *Server) Serve(listener net.Listener) error {
	if err := s.grpcServer.Serve(listener); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop переводит health в NOT_SERVING и останавливает сервер
func (s *Server) Stop() {
	s.log.Info("Stopping gRPC server")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
