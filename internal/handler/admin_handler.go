package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rigved526/master-qr-scanner/internal/domain"
	"github.com/rigved526/master-qr-scanner/internal/dto"
	"github.com/rigved526/master-qr-scanner/internal/service"
	"github.com/rigved526/master-qr-scanner/pkg/response"
	"github.com/rigved526/master-qr-scanner/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AdminHandler handles registration desk HTTP requests
type AdminHandler struct {
	registrationService service.RegistrationService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(registrationService service.RegistrationService) *AdminHandler {
	return &AdminHandler{
		registrationService: registrationService,
	}
}

// RegisterTicket handles POST /tickets (on-spot registration)
func (h *AdminHandler) RegisterTicket(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.register")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.RegisterTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "code, attendee_name and event_name are required")
		return
	}

	span.SetAttributes(
		attribute.String("ticket_code", req.Code),
		attribute.String("event_name", req.EventName),
	)

	ticket, err := h.registrationService.Register(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, dto.TicketResponseFromDomain(ticket))
}

// ImportTickets handles POST /tickets/import (bulk registration)
func (h *AdminHandler) ImportTickets(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.import")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.ImportTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "records array is required")
		return
	}

	span.SetAttributes(attribute.Int("record_count", len(req.Records)))

	inserted, rejected, err := h.registrationService.RegisterBatch(ctx, req.Records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		response.ServiceUnavailable(c, "import aborted, storage unavailable")
		return
	}

	span.SetAttributes(
		attribute.Int("inserted", inserted),
		attribute.Int("rejected", len(rejected)),
	)
	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.ImportTicketsResponse{
		Inserted: inserted,
		Rejected: rejected,
	})
}

// ListTickets handles GET /tickets
func (h *AdminHandler) ListTickets(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tickets, err := h.registrationService.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		response.InternalError(c, err)
		return
	}

	out := make([]*dto.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, dto.TicketResponseFromDomain(t))
	}

	span.SetAttributes(attribute.Int("ticket_count", len(out)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, out)
}

// GetTicket handles GET /tickets/:code
func (h *AdminHandler) GetTicket(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	code := c.Param("code")
	if code == "" {
		span.SetStatus(codes.Error, "code required")
		response.BadRequest(c, "ticket code is required")
		return
	}

	span.SetAttributes(attribute.String("ticket_code", code))

	ticket, err := h.registrationService.Lookup(ctx, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.TicketResponseFromDomain(ticket))
}

// handleError converts domain errors to HTTP responses
func (h *AdminHandler) handleError(c *gin.Context, err error) {
	switch {
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case domain.IsConflictError(err):
		response.Conflict(c, "DUPLICATE_CODE", err.Error())
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
