package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Codeveil-Studio/QResolve-app/internal/application"
	pginfra "github.com/Codeveil-Studio/QResolve-app/internal/infrastructure/postgres"
)

// newMockDB returns a pool with no expectations: any statement that reaches
// it fails the ExpectationsWereMet check.
func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestReportShow_MalformedAssetID(t *testing.T) {
	mock := newMockDB(t)
	svc := &application.ReportService{Assets: pginfra.NewAssetRepository(mock)}

	w := do(reportEngine(svc), http.MethodGet, "/api/public/report/abc123", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "asset_not_found", decode(t, w).Error.Code)
}

func TestIssueRoutes_MalformedIDs(t *testing.T) {
	mock := newMockDB(t)
	h := NewIssueHandler(&application.IssueService{
		Issues: pginfra.NewIssueRepository(mock),
		Assets: pginfra.NewAssetRepository(mock),
	}, nil)
	r := gin.New()
	r.Use(withState(admitted()))
	r.GET("/api/issues", h.List)
	r.POST("/api/issues", h.Create)
	r.GET("/api/issues/:id", h.Get)
	r.DELETE("/api/issues/:id", h.Delete)

	w := do(r, http.MethodGet, "/api/issues/abc123", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "issue_not_found", decode(t, w).Error.Code)

	w = do(r, http.MethodDelete, "/api/issues/abc123", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/issues?asset_id=abc123", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error.Details, "asset_id")

	w = do(r, http.MethodPost, "/api/issues", map[string]any{"title": "Leak", "asset_id": "abc123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error.Details, "asset_id")
}
