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

type assignmentService interface {
	Create(ctx context.Context, req dto.CreateAssignmentRequest, teacherID string) (*models.Assignment, error)
	List(ctx context.Context, teacherID, classID string) ([]models.AssignmentDetail, error)
	ClassQuotas(ctx context.Context, teacherID string) ([]dto.ClassQuota, error)
	UpdateGradeStatus(ctx context.Context, req dto.UpdateGradeStatusRequest, actorID string) (*models.AssignmentStatus, error)
}

type quotaMetrics interface {
	RecordQuotaRejection()
}

// AssignmentHandler exposes assignment endpoints.
type AssignmentHandler struct {
	service assignmentService
	metrics quotaMetrics
}

// NewAssignmentHandler builds a new handler. Metrics may be nil.
func NewAssignmentHandler(service assignmentService, metrics quotaMetrics) *AssignmentHandler {
	return &AssignmentHandler{service: service, metrics: metrics}
}

// Create godoc
// @Summary Create an assignment for one or more classes
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	assignment, err := h.service.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		if h.metrics != nil && appErrors.FromError(err).Code == appErrors.ErrQuotaExceeded.Code {
			h.metrics.RecordQuotaRejection()
		}
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// List godoc
// @Summary List assignments or class quotas
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param type query string false "Set to class-quotas for quota usage"
// @Param classId query string false "Filter by class"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if c.Query("type") == "class-quotas" {
		teacherID := claims.UserID
		if claims.Role == models.RoleAdmin && c.Query("teacherId") != "" {
			teacherID = c.Query("teacherId")
		}
		quotas, err := h.service.ClassQuotas(c.Request.Context(), teacherID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, quotas, nil)
		return
	}

	// Teachers only see their own assignments; admins see everything.
	teacherID := ""
	if claims.Role == models.RoleTeacher {
		teacherID = claims.UserID
	}
	details, err := h.service.List(c.Request.Context(), teacherID, c.Query("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// UpdateGradeStatus godoc
// @Summary Toggle the graded flag on an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateGradeStatusRequest true "Grade status payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/grade [put]
func (h *AssignmentHandler) UpdateGradeStatus(c *gin.Context) {
	var req dto.UpdateGradeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade status payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	status, err := h.service.UpdateGradeStatus(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
