package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classroll/attendance-api/internal/service"
	appErrors "github.com/classroll/attendance-api/pkg/errors"
	"github.com/classroll/attendance-api/pkg/response"
)

// AttendanceHandler wires the mark endpoint to the attendance service.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Mark handles POST /attendance/mark. A wrong-typed present flag fails JSON
// binding here, before the service sees the payload.
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	result, err := h.service.Mark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result)
}
