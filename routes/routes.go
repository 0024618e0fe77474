package routes

import (
	"time"

	"nexia/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAIRoutes registers the conversational endpoints.
func RegisterAIRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/ai")
	{
		api.POST("/chat", hb.ChatHandler)
		api.DELETE("/chat/:userID", hb.ResetChatHandler)
	}
}

// RegisterServiceRoutes registers the catalog and scheduling endpoints.
func RegisterServiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.GET("", hb.ListServicesHandler)
		api.GET("/:name", hb.GetServiceHandler)
		api.GET("/:name/slots", hb.GetSlotsHandler)
		api.GET("/:name/professionals", hb.GetProfessionalsHandler)
		api.POST("/:name/appointments", hb.ScheduleAppointmentHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAIRoutes(r, hb)
	RegisterServiceRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
