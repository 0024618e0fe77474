package handlers

import (
	"net/http"

	"nexia/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness together with the last dependency snapshot.
func HealthHandler(monitor *utils.HealthMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Hi, I'm Nexia",
			"checks":  monitor.Status(),
		})
	}
}
