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

type classService interface {
	Create(ctx context.Context, req dto.CreateClassRequest, actorID string) (*models.Class, error)
	List(ctx context.Context) ([]models.Class, bool, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, bool, error)
}

type cacheMetrics interface {
	RecordCacheHit()
	RecordCacheMiss()
}

// ClassHandler exposes class endpoints.
type ClassHandler struct {
	service classService
	metrics cacheMetrics
}

// NewClassHandler builds a new handler. Metrics may be nil.
func NewClassHandler(service classService, metrics cacheMetrics) *ClassHandler {
	return &ClassHandler{service: service, metrics: metrics}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param mine query bool false "Only classes owned by the caller"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var classes []models.Class
	var cached bool
	var err error
	if c.Query("mine") == "true" {
		classes, cached, err = h.service.ListByTeacher(c.Request.Context(), claims.UserID)
	} else {
		classes, cached, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		if cached {
			h.metrics.RecordCacheHit()
		} else {
			h.metrics.RecordCacheMiss()
		}
	}
	response.JSON(c, http.StatusOK, classes, nil, map[string]interface{}{"cached": cached})
}

// Create godoc
// @Summary Create a class
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	claims := claimsFromContext(c)
	actorID := ""
	if claims != nil {
		actorID = claims.UserID
	}
	class, err := h.service.Create(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}
