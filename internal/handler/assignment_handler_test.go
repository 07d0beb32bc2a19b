package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smp-yps/assignment-api/internal/dto"
	"github.com/smp-yps/assignment-api/internal/middleware"
	"github.com/smp-yps/assignment-api/internal/models"
	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
)

type assignmentServiceMock struct {
	createErr     error
	created       *models.Assignment
	listTeacherID string
	details       []models.AssignmentDetail
	quotas        []dto.ClassQuota
	quotaTeacher  string
	status        *models.AssignmentStatus
	statusErr     error
}

func (m *assignmentServiceMock) Create(ctx context.Context, req dto.CreateAssignmentRequest, teacherID string) (*models.Assignment, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = &models.Assignment{ID: "a-1", Subject: req.Subject, TeacherID: teacherID}
	return m.created, nil
}

func (m *assignmentServiceMock) List(ctx context.Context, teacherID, classID string) ([]models.AssignmentDetail, error) {
	m.listTeacherID = teacherID
	return m.details, nil
}

func (m *assignmentServiceMock) ClassQuotas(ctx context.Context, teacherID string) ([]dto.ClassQuota, error) {
	m.quotaTeacher = teacherID
	return m.quotas, nil
}

func (m *assignmentServiceMock) UpdateGradeStatus(ctx context.Context, req dto.UpdateGradeStatusRequest, actorID string) (*models.AssignmentStatus, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return m.status, nil
}

type metricsMock struct {
	quotaRejections int
}

func (m *metricsMock) RecordQuotaRejection() { m.quotaRejections++ }

func teacherClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}
}

func TestAssignmentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &assignmentServiceMock{}
	handler := NewAssignmentHandler(mock, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.CreateAssignmentRequest{
		Subject:      "Matematika",
		LearningGoal: "Aljabar",
		Type:         "task",
		ClassIDs:     []string{"class-1"},
	})
	req, _ := http.NewRequest(http.MethodPost, "/assignments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, teacherClaims())

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "teacher-1", mock.created.TeacherID)
}

func TestAssignmentHandlerCreateQuotaExceededCountsRejection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &assignmentServiceMock{createErr: appErrors.Clone(appErrors.ErrQuotaExceeded, "Kuota tugas untuk kelas 7A sudah mencapai batas maksimal 2 per minggu")}
	metrics := &metricsMock{}
	handler := NewAssignmentHandler(mock, metrics)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.CreateAssignmentRequest{Subject: "Matematika", LearningGoal: "Aljabar", Type: "task", ClassIDs: []string{"class-1"}})
	req, _ := http.NewRequest(http.MethodPost, "/assignments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, teacherClaims())

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, metrics.quotaRejections)
	assert.Contains(t, w.Body.String(), "QUOTA_EXCEEDED")
}

func TestAssignmentHandlerCreateWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAssignmentHandler(&assignmentServiceMock{}, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.CreateAssignmentRequest{Subject: "IPA", LearningGoal: "Sel", Type: "task", ClassIDs: []string{"class-1"}})
	req, _ := http.NewRequest(http.MethodPost, "/assignments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAssignmentHandlerListScopesTeacher(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &assignmentServiceMock{details: []models.AssignmentDetail{}}
	handler := NewAssignmentHandler(mock, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/assignments", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, teacherClaims())

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "teacher-1", mock.listTeacherID)
}

func TestAssignmentHandlerListAdminSeesAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &assignmentServiceMock{details: []models.AssignmentDetail{}}
	handler := NewAssignmentHandler(mock, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/assignments", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mock.listTeacherID)
}

func TestAssignmentHandlerListClassQuotas(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &assignmentServiceMock{quotas: []dto.ClassQuota{}}
	handler := NewAssignmentHandler(mock, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/assignments?type=class-quotas", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, teacherClaims())

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "teacher-1", mock.quotaTeacher)
}

func TestAssignmentHandlerUpdateGradeStatusNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &assignmentServiceMock{statusErr: appErrors.Clone(appErrors.ErrNotFound, "assignment not found")}
	handler := NewAssignmentHandler(mock, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	graded := true
	body, _ := json.Marshal(dto.UpdateGradeStatusRequest{AssignmentID: "missing", IsGraded: &graded})
	req, _ := http.NewRequest(http.MethodPut, "/assignments/grade", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, teacherClaims())

	handler.UpdateGradeStatus(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
