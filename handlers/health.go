package handlers

import (
	"net/http"

	"innkeeper/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last storage and Redis health check.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.Storage {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "checks": status})
}
