package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all your endpoint handlers into one struct.
type HandlerBundle struct {
	// Chat endpoints
	ChatHandler      gin.HandlerFunc
	ResetChatHandler gin.HandlerFunc

	// Service and scheduling endpoints
	ListServicesHandler        gin.HandlerFunc
	GetServiceHandler          gin.HandlerFunc
	GetSlotsHandler            gin.HandlerFunc
	GetProfessionalsHandler    gin.HandlerFunc
	ScheduleAppointmentHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}
