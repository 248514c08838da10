package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// serviceName имя сервиса в ответе health-check
const serviceName = "faceit-ai-bot-payments"

var startedAt = time.Now()

// HealthCheck обработчик для проверки работоспособности сервиса
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": serviceName,
		"time":    time.Now().Format(time.RFC3339),
		"uptime":  time.Since(startedAt).Round(time.Second).String(),
	})
}
