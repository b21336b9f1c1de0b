package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "API BOVIPRED funcionando correctamente",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC(),
	})
}
