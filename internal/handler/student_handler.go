package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classroll/attendance-api/internal/service"
	appErrors "github.com/classroll/attendance-api/pkg/errors"
	"github.com/classroll/attendance-api/pkg/response"
)

// StudentHandler wires roster endpoints to the student service.
type StudentHandler struct {
	service *service.StudentService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(svc *service.StudentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// BulkUpsert handles POST /students.
func (h *StudentHandler) BulkUpsert(c *gin.Context) {
	var req service.BulkUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "body must contain a students array"))
		return
	}

	result, err := h.service.UpsertBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result)
}

// List handles GET /students?className=.
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.service.ListByClass(c.Request.Context(), c.Query("className"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, students)
}
