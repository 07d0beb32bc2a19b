package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smp-yps/assignment-api/internal/dto"
	"github.com/smp-yps/assignment-api/internal/models"
	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
	"github.com/smp-yps/assignment-api/pkg/response"
)

type settingService interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	List(ctx context.Context) ([]models.Setting, error)
	Upsert(ctx context.Context, req dto.UpsertSettingRequest, actorID string) (*models.Setting, error)
}

// SettingHandler exposes settings endpoints (admin only).
type SettingHandler struct {
	service settingService
}

// NewSettingHandler builds a new handler.
func NewSettingHandler(service settingService) *SettingHandler {
	return &SettingHandler{service: service}
}

// List godoc
// @Summary List settings
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Param key query string false "Fetch a single key"
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingHandler) List(c *gin.Context) {
	if key := c.Query("key"); key != "" {
		setting, err := h.service.Get(c.Request.Context(), key)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, setting, nil)
		return
	}
	settings, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Upsert godoc
// @Summary Create or update a setting
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpsertSettingRequest true "Setting payload"
// @Success 200 {object} response.Envelope
// @Router /settings [put]
func (h *SettingHandler) Upsert(c *gin.Context) {
	var req dto.UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid setting payload"))
		return
	}
	claims := claimsFromContext(c)
	actorID := ""
	if claims != nil {
		actorID = claims.UserID
	}
	setting, err := h.service.Upsert(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setting, nil)
}
