package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smp-yps/assignment-api/internal/service"
	"github.com/smp-yps/assignment-api/pkg/response"
)

type reportService interface {
	Ungraded(ctx context.Context, format service.ReportFormat) ([]byte, string, error)
}

// ReportHandler exposes downloadable reports (admin only).
type ReportHandler struct {
	service reportService
}

// NewReportHandler builds a new handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Ungraded godoc
// @Summary Download the ungraded assignments report
// @Tags Reports
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Router /reports/ungraded [get]
func (h *ReportHandler) Ungraded(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", string(service.ReportFormatCSV)))
	payload, contentType, err := h.service.Ungraded(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "ungraded-assignments." + string(format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}
