package service

import (
	"context"
	"time"

	"github.com/1gassner/energy-management-mvp-sub002/internal/config"
	"github.com/1gassner/energy-management-mvp-sub002/internal/logger"
	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/notify"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository"
)

// TelemetrySnapshot is the read-only building telemetry handed to a rule
// evaluator. Each evaluator consumes only the fields its rules need; the
// orchestrator fills them per evaluator from the stores.
type TelemetrySnapshot struct {
	Now            time.Time
	HourlyReadings []models.EnergyReading // newest-first, trailing 24h window
	DailyReadings  []models.EnergyReading // newest-first, trailing 7d window
	Sensors        []models.Sensor
	OpenAlerts     []models.Alert // unresolved alerts of the building
	RecentAlerts   []models.Alert // alerts created in the trailing 2h
}

// RuleEvaluator inspects one category of telemetry and emits candidate
// alerts. Implementations are pure: no mutation, no persistence, no
// deduplication.
type RuleEvaluator interface {
	Name() string
	Evaluate(b models.Building, snap TelemetrySnapshot) []models.AlertCandidate
}

// Alerts exposes the human side of the alert lifecycle plus queries.
type Alerts interface {
	List(ctx context.Context, f repository.AlertFilter) ([]models.Alert, error)
	Resolve(ctx context.Context, id, userID, note string) error
	MarkRead(ctx context.Context, id string) error
}

// Generator drives a full "evaluate all buildings" pass.
type Generator interface {
	GenerateForAllBuildings(ctx context.Context) (models.GenerationResult, error)
}

// AutoResolver re-checks open alerts and closes those whose condition cleared.
type AutoResolver interface {
	AutoResolveAll(ctx context.Context) (models.ResolutionResult, error)
}

// Insights summarizes alert history for a set of buildings.
type Insights interface {
	Summarize(ctx context.Context, buildingIDs []string, period string) (models.AlertInsights, error)
}

// Service aggregates all sub-services.
type Service struct {
	Alerts
	Generator
	AutoResolver
	Insights
}

// NewService wires the repository layer, notification sink, and engine
// configuration into concrete services.
func NewService(repos *repository.Repository, sink notify.Sink, eng config.Engine, log *logger.Logger) *Service {
	writer := NewAlertWriter(repos.Alerts, sink, eng.DedupWindow, log)
	return &Service{
		Alerts:       NewAlertService(repos.Alerts, sink, log),
		Generator:    NewOrchestrator(repos, writer, eng, log),
		AutoResolver: NewResolutionService(repos, sink, eng.StoreTimeout, log),
		Insights:     NewInsightService(repos.Alerts),
	}
}
