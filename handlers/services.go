package handlers

import (
	"net/http"

	"nexia/models"
	ai "nexia/services/intelligence"
	"nexia/services/scheduling"
	"nexia/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServicesHandler serves the catalog and the scheduling tools over HTTP, with
// the same semantics the agent gets.
type ServicesHandler struct {
	Catalog *scheduling.Services
	Tools   *ai.Toolbox
	Logger  *zap.Logger
}

func NewServicesHandler(catalog *scheduling.Services, tools *ai.Toolbox, logger *zap.Logger) *ServicesHandler {
	return &ServicesHandler{Catalog: catalog, Tools: tools, Logger: logger}
}

// ListServices handles GET /api/services.
func (h *ServicesHandler) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": h.Tools.ListServices(c.Request.Context())})
}

// GetService handles GET /api/services/:name.
func (h *ServicesHandler) GetService(c *gin.Context) {
	svc, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, svc.Definition())
}

// GetSlots handles GET /api/services/:name/slots, optionally narrowed with
// ?professional=. An unknown service yields an empty list.
func (h *ServicesHandler) GetSlots(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	var slots []models.CandidateSlot
	if prof := c.Query("professional"); prof != "" {
		slots = h.Tools.GetSlotsForProfessional(ctx, name, prof)
	} else {
		slots = h.Tools.GetAvailableSlots(ctx, name)
	}
	c.JSON(http.StatusOK, slots)
}

// GetProfessionals handles GET /api/services/:name/professionals?day=&time=.
func (h *ServicesHandler) GetProfessionals(c *gin.Context) {
	day, clock := c.Query("day"), c.Query("time")
	if day == "" || clock == "" {
		utils.JSONError(c, h.Logger, http.StatusBadRequest, "missing query parameters", "day and time are required")
		return
	}
	svc, ok := h.lookup(c)
	if !ok {
		return
	}

	professionals := svc.ListAvailableProfessionals(c.Request.Context(), day, clock)
	if professionals == nil {
		professionals = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"professionals": professionals})
}

// ScheduleAppointment handles POST /api/services/:name/appointments.
func (h *ServicesHandler) ScheduleAppointment(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, h.Logger, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	svc, ok := h.lookup(c)
	if !ok {
		return
	}

	h.Logger.Info("scheduling appointment",
		zap.String("user", req.UserName),
		zap.String("service", svc.Name()),
		zap.String("day", req.Day),
		zap.String("time", req.Time))
	result := svc.Schedule(c.Request.Context(), req)
	c.JSON(bookingStatusCode(result.Status), result)
}

func bookingStatusCode(status models.BookingStatus) int {
	switch status {
	case models.BookingSuccess:
		return http.StatusCreated
	case models.BookingNoAvailability:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (h *ServicesHandler) lookup(c *gin.Context) (*scheduling.Service, bool) {
	name := c.Param("name")
	svc, ok := h.Catalog.GetByName(name)
	if !ok {
		utils.JSONError(c, h.Logger, http.StatusNotFound, "service not found", name)
		return nil, false
	}
	return svc, true
}
