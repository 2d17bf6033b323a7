package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse reports server health
type HealthResponse struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Uptime    string      `json:"uptime"`
	Checks    HealthCheck `json:"checks"`
	Archive   interface{} `json:"archive,omitempty"`
}

// HealthCheck lists individual health checks
type HealthCheck struct {
	ArchiveEnabled  bool `json:"archiveEnabled"`
	ArchiveReadable bool `json:"archiveReadable"`
	MemoryOK        bool `json:"memoryOk"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(c *gin.Context) {
	checks := HealthCheck{ArchiveEnabled: s.store != nil}

	var archive interface{}
	if s.store != nil {
		stats, err := s.store.Stats()
		if err == nil {
			checks.ArchiveReadable = true
			archive = stats
		} else {
			s.log.WithError(err).Warn("Archive health check failed")
		}
	}

	// Warn if > 1GB allocated
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	checks.MemoryOK = m.Alloc < 1024*1024*1024

	status := "healthy"
	code := http.StatusOK
	switch {
	case checks.ArchiveEnabled && !checks.ArchiveReadable:
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	case !checks.MemoryOK:
		status = "degraded"
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
		Checks:    checks,
		Archive:   archive,
	})
}
