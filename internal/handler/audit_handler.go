package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smp-yps/assignment-api/internal/dto"
	"github.com/smp-yps/assignment-api/internal/models"
	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
	"github.com/smp-yps/assignment-api/pkg/response"
)

// MaxAuditLogLimit caps one audit listing page.
const MaxAuditLogLimit = 100

type auditService interface {
	Logs(ctx context.Context, q dto.AuditLogQuery) ([]models.AuditLog, error)
}

// AuditHandler exposes the audit trail (admin only).
type AuditHandler struct {
	service auditService
}

// NewAuditHandler builds a new handler.
func NewAuditHandler(service auditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List godoc
// @Summary List audit log entries
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size, max 100" default(50)
// @Param offset query int false "Offset"
// @Param userId query string false "Filter by actor"
// @Param action query string false "Filter by action"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be an integer"))
			return
		}
		limit = parsed
	}
	if limit > MaxAuditLogLimit {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit cannot exceed 100"))
		return
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "offset must be an integer"))
			return
		}
		offset = parsed
	}

	entries, err := h.service.Logs(c.Request.Context(), dto.AuditLogQuery{
		Limit:  limit,
		Offset: offset,
		UserID: c.Query("userId"),
		Action: c.Query("action"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
