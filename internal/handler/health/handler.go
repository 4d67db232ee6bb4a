package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oschwald/maxminddb-golang"
)

// Database is what the readiness probe inspects.
type Database interface {
	Ready() error
	Metadata() maxminddb.Metadata
}

// Handler manages health check endpoints
type Handler struct {
	db Database
}

// NewHandler creates a new health check handler. db may be nil, in which case the
// service is always ready.
func NewHandler(db Database) *Handler {
	return &Handler{db: db}
}

// Health is the liveness probe endpoint
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready is the readiness probe endpoint. It fails until a database is loaded and
// reports which one is served.
// GET /ready
func (h *Handler) Ready(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
		})
		return
	}

	if err := h.db.Ready(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}

	metadata := h.db.Metadata()
	c.JSON(http.StatusOK, gin.H{
		"status":        "ready",
		"database_type": metadata.DatabaseType,
		"build_time":    time.Unix(int64(metadata.BuildEpoch), 0).UTC().Format(time.RFC3339),
	})
}
