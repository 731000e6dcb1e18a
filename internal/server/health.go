package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const healthPingTimeout = 3 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := s.deps.Ping(ctx); err != nil {
			s.logger.Warn("http.health.failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "storage unavailable", nil, s.logger)
			return
		}
	}
	ok(w, map[string]string{"status": "ok"}, s.logger)
}

// HealthServer backs grpc.health.v1.Health with the result of a periodic storage ping.
type HealthServer struct {
	*health.Server
	ping     func(ctx context.Context) error
	interval time.Duration
	logger   *slog.Logger
}

func NewHealthServer(ping func(ctx context.Context) error, interval time.Duration, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &HealthServer{Server: health.NewServer(), ping: ping, interval: interval, logger: logger}
}

// Probe pings once and records SERVING or NOT_SERVING for the overall service.
func (h *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if h.ping != nil {
		pctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
		err := h.ping(pctx)
		cancel()
		if err != nil {
			h.logger.Error("grpc.health.ping_failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.SetServingStatus("", status)
	return status
}

// Run checks immediately and then every interval until ctx is done, when it marks the
// service NOT_SERVING for good.
func (h *HealthServer) Run(ctx context.Context) {
	h.Probe(ctx)
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			h.Shutdown()
			return
		case <-t.C:
			h.Probe(ctx)
		}
	}
}
