package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smp-yps/assignment-api/internal/dto"
	"github.com/smp-yps/assignment-api/internal/models"
)

type auditServiceMock struct {
	query   dto.AuditLogQuery
	entries []models.AuditLog
}

func (m *auditServiceMock) Logs(ctx context.Context, q dto.AuditLogQuery) ([]models.AuditLog, error) {
	m.query = q
	return m.entries, nil
}

func TestAuditHandlerListRejectsOversizedLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuditHandler(&auditServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/audit-logs?limit=101", nil)
	c.Request = req

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot exceed 100")
}

func TestAuditHandlerListAcceptsBoundaryLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &auditServiceMock{entries: []models.AuditLog{}}
	handler := NewAuditHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/audit-logs?limit=100", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, mock.query.Limit)
}

func TestAuditHandlerListDefaultsAndFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &auditServiceMock{entries: []models.AuditLog{}}
	handler := NewAuditHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/audit-logs?userId=user-1&action=update_settings", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, mock.query.Limit)
	assert.Equal(t, "user-1", mock.query.UserID)
	assert.Equal(t, "update_settings", mock.query.Action)
}

func TestAuditHandlerListRejectsNonIntegerLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuditHandler(&auditServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/audit-logs?limit=banyak", nil)
	c.Request = req

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
