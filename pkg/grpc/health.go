package grpc

import (
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Component names reported through the health service.
const (
	// ComponentProviders is serving while any generation backend is
	// available (offline-only deployments count as serving).
	ComponentProviders = "anima.providers"

	// ComponentMemory is serving while memory persistence is healthy.
	ComponentMemory = "anima.memory"
)

// HealthServer wraps the gRPC health check server
type HealthServer struct {
	server *health.Server
}

// NewHealthServer creates a new health check server
func NewHealthServer() *HealthServer {
	return &HealthServer{
		server: health.NewServer(),
	}
}

// SetServingStatus sets the serving status for a service
func (h *HealthServer) SetServingStatus(service string, status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus(service, status)
}

// SetServingStatusAll sets the serving status for all services
func (h *HealthServer) SetServingStatusAll(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
}

// SetComponentServing flips one component between SERVING and
// NOT_SERVING.
func (h *HealthServer) SetComponentServing(component string, serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus(component, status)
}

// SetProvidersServing updates the provider component after a health
// sweep. Satisfies the provider router's health sink.
func (h *HealthServer) SetProvidersServing(serving bool) {
	h.SetComponentServing(ComponentProviders, serving)
}

// SetMemoryServing updates the memory component when persistence
// health changes.
func (h *HealthServer) SetMemoryServing(serving bool) {
	h.SetComponentServing(ComponentMemory, serving)
}

// Shutdown gracefully shuts down the health server
func (h *HealthServer) Shutdown() {
	h.server.Shutdown()
}

// Resume resumes the health server
func (h *HealthServer) Resume() {
	h.server.Resume()
}

// GetServer returns the underlying health server for registration
func (h *HealthServer) GetServer() *health.Server {
	return h.server
}
