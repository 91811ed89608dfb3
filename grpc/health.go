package grpc

import (
	"fmt"
	"log"
	"net"

	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// PipelineService is the health service name reflecting the last pipeline run.
const PipelineService = "news.pipeline"

// StatusServer exposes the standard gRPC health service so the bot can be
// probed by orchestrators and grpc-health-probe.
type StatusServer struct {
	server *grpc.Server
	health *health.Server
}

// NewStatusServer 创建状态服务器，整体状态为 SERVING，流水线状态在首次运行前为 UNKNOWN
func NewStatusServer() *StatusServer {
	server := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(PipelineService, healthpb.HealthCheckResponse_UNKNOWN)

	return &StatusServer{server: server, health: healthServer}
}

// SetPipelineHealthy 根据最近一次运行结果更新流水线状态
func (s *StatusServer) SetPipelineHealthy(healthy bool) {
	status := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(PipelineService, status)
}

// Serve 在给定 listener 上阻塞提供服务
func (s *StatusServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// Start 监听 addr 并在后台提供服务
func (s *StatusServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	go func() {
		if err := s.server.Serve(lis); err != nil {
			log.Printf("gRPC status server stopped: %v", err)
		}
	}()
	log.Printf("gRPC status server listening on %s", lis.Addr())
	return nil
}

// Stop 将所有服务标记为 NOT_SERVING 并优雅关闭
func (s *StatusServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
