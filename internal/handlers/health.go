package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/minitrello-api/internal/dto"
	apierrors "github.com/yukikurage/minitrello-api/internal/errors"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db          *gorm.DB
	environment string
}

func NewHealthHandler(db *gorm.DB, environment string) *HealthHandler {
	return &HealthHandler{db: db, environment: environment}
}

// Health reports liveness and whether the database answers
func (h *HealthHandler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		apierrors.ServiceUnavailable(c, "Database unavailable")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Mini Trello API Server is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.environment,
	})
}

// Root lists the entry points of the API
func (h *HealthHandler) Root(c *gin.Context) {
	dto.OKWithMessage(c, gin.H{
		"version": "1.0.0",
		"endpoints": gin.H{
			"health":      "/health",
			"metrics":     "/metrics",
			"auth":        "/api/auth",
			"users":       "/api/users",
			"boards":      "/api/boards",
			"cards":       "/api/cards",
			"invitations": "/api/invitations",
			"github":      "/api/github",
		},
	}, "Welcome to Mini Trello API")
}

// NotFound answers unknown routes with the error envelope
func (h *HealthHandler) NotFound(c *gin.Context) {
	apierrors.NotFound(c, "Route not found")
}
