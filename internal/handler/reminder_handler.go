package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smp-yps/assignment-api/internal/dto"
	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
	"github.com/smp-yps/assignment-api/pkg/response"
)

type reminderService interface {
	Send(ctx context.Context, assignmentID, actorID string) (dto.ReminderResult, error)
	SendAllPending(ctx context.Context, actorID string) ([]dto.ReminderResult, error)
}

type reminderMetrics interface {
	RecordReminder(success bool)
}

// ReminderHandler exposes WhatsApp reminder endpoints (admin only).
type ReminderHandler struct {
	service reminderService
	metrics reminderMetrics
}

// NewReminderHandler builds a new handler. Metrics may be nil.
func NewReminderHandler(service reminderService, metrics reminderMetrics) *ReminderHandler {
	return &ReminderHandler{service: service, metrics: metrics}
}

// Send godoc
// @Summary Send a reminder for one assignment
// @Tags Reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SendReminderRequest true "Target assignment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reminders [post]
func (h *ReminderHandler) Send(c *gin.Context) {
	var req dto.SendReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reminder payload"))
		return
	}
	if req.AssignmentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "assignment id is required"))
		return
	}
	claims := claimsFromContext(c)
	actorID := ""
	if claims != nil {
		actorID = claims.UserID
	}

	result, err := h.service.Send(c.Request.Context(), req.AssignmentID, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordReminder(result.Success)
	}
	if !result.Success {
		response.JSON(c, http.StatusBadRequest, result, nil)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SendAll godoc
// @Summary Send reminders for every pending assignment
// @Tags Reminders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /reminders [get]
func (h *ReminderHandler) SendAll(c *gin.Context) {
	claims := claimsFromContext(c)
	actorID := ""
	if claims != nil {
		actorID = claims.UserID
	}
	results, err := h.service.SendAllPending(c.Request.Context(), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		for _, result := range results {
			h.metrics.RecordReminder(result.Success)
		}
	}
	response.JSON(c, http.StatusOK, results, nil)
}
