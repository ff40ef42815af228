package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haeksim/noonsongi/common"
	"github.com/haeksim/noonsongi/common/config"
	"github.com/haeksim/noonsongi/monitor"
)

// GetTest answers liveness probes in the same shape as the generation service.
func GetTest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "API server is running normally!",
	})
}

func GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data": gin.H{
			"version":            common.Version,
			"start_time":         common.StartTime,
			"system_name":        config.SystemName,
			"base_url":           config.BaseURL,
			"poll_interval_ms":   config.PollInterval.Milliseconds(),
			"require_attachment": config.RequireAttachment,
			"require_pdf":        config.RequirePDF,
			"max_attachment_mb":  config.MaxAttachmentSize >> 20,
		},
	})
}

func GetHealth(c *gin.Context) {
	var sessions func() int
	if sessionStore != nil {
		sessions = sessionStore.Len
	}
	stats := monitor.ReadRuntimeStats(sessions)
	running := 0
	if sessionStore != nil {
		running = sessionStore.Running()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"goroutines": stats.Goroutines,
		"sessions":   stats.Sessions,
		"running":    running,
		"memory":     stats.Memory,
	})
}
