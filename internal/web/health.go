package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Embedder  string    `json:"embedder"`
}

type HealthHandler struct {
	serviceName string
	version     string
	configured  func() bool
}

func NewHealthHandler(serviceName, version string, configured func() bool) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		configured:  configured,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	embedder := "missing"
	if h.configured != nil && h.configured() {
		embedder = "configured"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Embedder:  embedder,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
