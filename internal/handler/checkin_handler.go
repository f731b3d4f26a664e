package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rigved526/master-qr-scanner/internal/domain"
	"github.com/rigved526/master-qr-scanner/internal/dto"
	"github.com/rigved526/master-qr-scanner/internal/service"
	"github.com/rigved526/master-qr-scanner/pkg/response"
	"github.com/rigved526/master-qr-scanner/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CheckInHandler handles scan HTTP requests from gate stations.
// All three verdicts are successful responses: the scanner renders the
// verdict, it does not retry on them. Only a storage failure is an error.
type CheckInHandler struct {
	checkinService service.CheckInService
	stats          *service.StatsService
}

// NewCheckInHandler creates a new check-in handler
func NewCheckInHandler(checkinService service.CheckInService, stats *service.StatsService) *CheckInHandler {
	return &CheckInHandler{
		checkinService: checkinService,
		stats:          stats,
	}
}

// CheckIn handles POST /checkins
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.checkin.scan")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "code is required")
		return
	}

	span.SetAttributes(attribute.String("ticket_code", req.Code))

	result, err := h.checkinService.AttemptCheckIn(ctx, req.Code, time.Now().UTC())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		// Verdict unknown: the station shows an error state and the
		// operator rescans once storage is back
		response.ServiceUnavailable(c, "check-in storage unavailable")
		return
	}

	bucket := ""
	if result.Status != domain.CheckInStatusUnregistered {
		bucket = h.stats.Bucket(result.EventName)
	}

	span.SetAttributes(attribute.String("verdict", result.Status.String()))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, dto.CheckInResponseFromResult(result, bucket))
}
