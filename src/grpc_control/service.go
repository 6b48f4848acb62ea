package grpc_control

import (
	"fmt"
	"net"
	"sync"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// -----------------------------------------------------------------------------

// FeedService is the health service name of the live feed subscription.
const FeedService = "feed"

const defaultPort = 50051

// -----------------------------------------------------------------------------
// HealthService
// -----------------------------------------------------------------------------

// HealthService exposes grpc.health.v1. The overall server is SERVING; the
// feed service is NOT_SERVING until the first snapshot arrives.
type HealthService struct {
	Config *models.MConfig
	Logger *logger.Logger
	Server *grpc.Server
	Health *health.Server

	mu          sync.Mutex
	feedServing bool
}

// NewHealthService creates the gRPC server with the health service registered.
func NewHealthService(cfg *models.MConfig, log *logger.Logger) *HealthService {
	if log == nil {
		log = logger.NewNop()
	}

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(FeedService, healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	return &HealthService{
		Config: cfg,
		Logger: log,
		Server: grpcServer,
		Health: hs,
	}
}

// -----------------------------------------------------------------------------

// SetFeedServing updates the feed service status. Repeated calls with the
// same value are no-ops.
func (s *HealthService) SetFeedServing(serving bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feedServing == serving {
		return
	}
	s.feedServing = serving

	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.Health.SetServingStatus(FeedService, status)
	s.Logger.Info("Feed health: %s", status)
}

// -----------------------------------------------------------------------------

// Addr returns the configured listen address.
func (s *HealthService) Addr() string {
	port := s.Config.GrpcPort
	if port == 0 {
		port = defaultPort // Default fallback
	}
	return fmt.Sprintf("%s:%d", s.Config.GrpcHost, port)
}

// Start listens on the configured address and serves until Stop.
func (s *HealthService) Start() error {
	lis, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	return s.Serve(lis)
}

// Serve serves on lis until Stop.
func (s *HealthService) Serve(lis net.Listener) error {
	s.Logger.Info("Starting gRPC health server on %s", lis.Addr())
	return s.Server.Serve(lis)
}

// -----------------------------------------------------------------------------

// Stop marks every service NOT_SERVING and stops the server.
func (s *HealthService) Stop() {
	s.Health.Shutdown()
	s.Server.GracefulStop()
}
