package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rigved526/master-qr-scanner/internal/bus"
	"github.com/rigved526/master-qr-scanner/internal/service"
	"github.com/rigved526/master-qr-scanner/pkg/response"
	"github.com/rigved526/master-qr-scanner/pkg/telemetry"
	"go.opentelemetry.io/otel/codes"
)

// heartbeatInterval keeps idle SSE connections from being reaped by
// proxies between scans.
const heartbeatInterval = 15 * time.Second

// DashboardHandler serves the live dashboard: a stats snapshot endpoint for
// polling clients and an SSE stream for push clients.
type DashboardHandler struct {
	stats    *service.StatsService
	eventBus *bus.CheckInBus
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(stats *service.StatsService, eventBus *bus.CheckInBus) *DashboardHandler {
	return &DashboardHandler{
		stats:    stats,
		eventBus: eventBus,
	}
}

// Stats handles GET /stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	_, span := telemetry.StartSpan(c.Request.Context(), "handler.dashboard.stats")
	defer span.End()

	span.SetStatus(codes.Ok, "")
	response.Success(c, h.stats.CurrentSnapshot())
}

// Stream handles GET /stream. The first frame is always a full stats
// snapshot; after that each admitted check-in is pushed as its own frame.
// A client that reconnects gets a fresh snapshot, so dropped frames only
// cost latency, never correctness.
func (h *DashboardHandler) Stream(c *gin.Context) {
	// Subscribe before snapshotting so no admit between the two is lost.
	// An admit landing in both the snapshot and the channel is harmless:
	// frames carry ticket data, counters come only from snapshots.
	events, cancel := h.eventBus.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.SSEvent("snapshot", h.stats.CurrentSnapshot())
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				// Evicted as a slow subscriber; closing forces the
				// client to reconnect and re-bootstrap from a snapshot
				return false
			}
			c.SSEvent("checkin", event)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-clientGone:
			return false
		}
	})
}
