package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classroll/attendance-api/internal/service"
	"github.com/classroll/attendance-api/pkg/response"
)

// SeedHandler exposes the demo data reset.
type SeedHandler struct {
	service *service.SeedService
}

// NewSeedHandler creates a new handler.
func NewSeedHandler(svc *service.SeedService) *SeedHandler {
	return &SeedHandler{service: svc}
}

// Seed handles POST /dev/seed.
func (h *SeedHandler) Seed(c *gin.Context) {
	result, err := h.service.Reset(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result)
}
