package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grocerypos/backend/internal/infrastructure/logger"
	"github.com/grocerypos/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler serves the health endpoint
type SystemHandler struct {
	BaseHandler
	db Pinger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{db: db}
}

// Health returns {status:"ok"} while the database answers pings
func (h *SystemHandler) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
				Status:   "error",
				Database: "unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}
