package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   s.config.AppName,
		"version":   s.version,
		"rules":     s.registry.Rules(),
	})
}

// @Router /healthz [get]
// @Success 200 {string} string "OK"
func (s *Server) healthz(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// @Router /status [get]
// @Success 200 {object} recovery.Snapshot
func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.tracker.Snapshot())
}

func (s *Server) metricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
