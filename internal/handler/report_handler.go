package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classroll/attendance-api/internal/service"
	appErrors "github.com/classroll/attendance-api/pkg/errors"
	"github.com/classroll/attendance-api/pkg/response"
)

// ReportHandler wires report endpoints to the report service.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Summary handles GET /reports/summary?className=&from=&to=.
func (h *ReportHandler) Summary(c *gin.Context) {
	className := c.Query("className")
	from := c.Query("from")
	to := c.Query("to")
	if className == "" || from == "" || to == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "className, from and to query parameters are required"))
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), className, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary)
}

// Export handles GET /reports/summary/export?className=&from=&to=&format=.
func (h *ReportHandler) Export(c *gin.Context) {
	className := c.Query("className")
	from := c.Query("from")
	to := c.Query("to")
	if className == "" || from == "" || to == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "className, from and to query parameters are required"))
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	result, err := h.service.Export(c.Request.Context(), className, from, to, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
