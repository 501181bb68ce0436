package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/1gassner/energy-management-mvp-sub002/internal/logger"
	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository"
	"github.com/1gassner/energy-management-mvp-sub002/internal/service"
)

// ---- Service Mocks ----

type mockAlerts struct {
	listResp []models.Alert
	listErr  error
	resolErr error
	readErr  error

	lastFilter    repository.AlertFilter
	lastResolveID string
	lastUserID    string
	lastNote      string
	lastReadID    string
	resolveCalls  int
	markReadCalls int
}

func (m *mockAlerts) List(_ context.Context, f repository.AlertFilter) ([]models.Alert, error) {
	m.lastFilter = f
	return m.listResp, m.listErr
}

func (m *mockAlerts) Resolve(_ context.Context, id, userID, note string) error {
	m.resolveCalls++
	m.lastResolveID = id
	m.lastUserID = userID
	m.lastNote = note
	return m.resolErr
}

func (m *mockAlerts) MarkRead(_ context.Context, id string) error {
	m.markReadCalls++
	m.lastReadID = id
	return m.readErr
}

type mockGenerator struct {
	resp  models.GenerationResult
	err   error
	calls int
}

func (m *mockGenerator) GenerateForAllBuildings(context.Context) (models.GenerationResult, error) {
	m.calls++
	return m.resp, m.err
}

type mockAutoResolver struct {
	resp  models.ResolutionResult
	err   error
	calls int
}

func (m *mockAutoResolver) AutoResolveAll(context.Context) (models.ResolutionResult, error) {
	m.calls++
	return m.resp, m.err
}

type mockInsights struct {
	resp models.AlertInsights
	err  error

	lastBuildingIDs []string
	lastPeriod      string
}

func (m *mockInsights) Summarize(_ context.Context, buildingIDs []string, period string) (models.AlertInsights, error) {
	m.lastBuildingIDs = buildingIDs
	m.lastPeriod = period
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, logger.Nop())
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
