package service

import (
	"context"
	"strings"
	"time"

	"github.com/1gassner/energy-management-mvp-sub002/internal/logger"
	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/notify"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository"
)

// Auto-resolution thresholds.
const (
	freshSensorMaxAge      = 60 * time.Minute
	normalConsumptionBand  = 1.2 // multiple of expected hourly
	infoExpiryAge          = 24 * time.Hour
	improvedEfficiencyBar  = 70.0
	consumptionCheckWindow = 3
	efficiencyCheckWindow  = 6
)

// Resolution reason strings recorded on auto-resolved alerts.
const (
	reasonSensorFresh       = "sensor now reporting fresh data"
	reasonConsumptionNormal = "consumption returned to normal"
	reasonSensorRestored    = "sensor restored to active"
	reasonInfoExpired       = "info alert auto-expired"
	reasonEfficiencyBetter  = "efficiency improved"
)

// Decision is the outcome of re-checking one open alert.
type Decision struct {
	Resolve bool
	Reason  string
}

// ResolutionService closes open alerts whose triggering condition has
// cleared. Resolution is terminal; resolved alerts are never revisited.
type ResolutionService struct {
	buildings    repository.BuildingRepo
	readings     repository.ReadingRepo
	sensors      repository.SensorRepo
	alerts       repository.AlertRepo
	sink         notify.Sink
	storeTimeout time.Duration
	log          *logger.Logger
	now          func() time.Time
}

func NewResolutionService(repos *repository.Repository, sink notify.Sink, storeTimeout time.Duration, log *logger.Logger) *ResolutionService {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &ResolutionService{
		buildings:    repos.Buildings,
		readings:     repos.Readings,
		sensors:      repos.Sensors,
		alerts:       repos.Alerts,
		sink:         sink,
		storeTimeout: storeTimeout,
		log:          log,
		now:          time.Now,
	}
}

// AutoResolveAll re-checks every unresolved alert and closes those that
// qualify. A failure on one alert is counted and skipped; the pass always
// completes.
func (s *ResolutionService) AutoResolveAll(ctx context.Context) (models.ResolutionResult, error) {
	unresolved := false
	open, err := s.listAlerts(ctx, repository.AlertFilter{IsResolved: &unresolved})
	if err != nil {
		return models.ResolutionResult{}, err
	}

	var result models.ResolutionResult
	for _, alert := range open {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		result.Checked++

		decision, err := s.ShouldAutoResolve(ctx, alert)
		if err != nil {
			result.Failed++
			s.log.Warnw("auto_resolve_check_failed", "alert_id", alert.ID, "title", alert.Title, "err", err)
			continue
		}
		if !decision.Resolve {
			continue
		}
		if err := s.resolve(ctx, alert, decision.Reason); err != nil {
			result.Failed++
			s.log.Warnw("auto_resolve_apply_failed", "alert_id", alert.ID, "err", err)
			continue
		}
		result.Resolved++
	}
	return result, nil
}

// ShouldAutoResolve runs the ordered resolution checks against fresh
// telemetry. The first matching rule wins; at most one reason is recorded.
func (s *ResolutionService) ShouldAutoResolve(ctx context.Context, alert models.Alert) (Decision, error) {
	if alert.IsResolved {
		return Decision{}, nil
	}
	now := s.now().UTC()

	// 1. Stale-data alert whose sensor reports again.
	if alert.Category == models.CategoryStaleData {
		if sensorID, ok := alert.SensorID(); ok {
			sensor, err := s.getSensor(ctx, sensorID)
			if err != nil {
				return Decision{}, err
			}
			if sensor != nil && !sensor.LastReadingAt.IsZero() && now.Sub(sensor.LastReadingAt) < freshSensorMaxAge {
				return Decision{Resolve: true, Reason: reasonSensorFresh}, nil
			}
		}
	}

	// 2. Consumption back inside the expected band.
	if strings.Contains(alert.Title, TitleHighConsumption) {
		expected, err := s.expectedHourly(ctx, alert.BuildingID)
		if err != nil {
			return Decision{}, err
		}
		readings, err := s.listHourly(ctx, alert.BuildingID, consumptionCheckWindow)
		if err != nil {
			return Decision{}, err
		}
		if len(readings) > 0 && mean(consumptions(readings)) <= normalConsumptionBand*expected {
			return Decision{Resolve: true, Reason: reasonConsumptionNormal}, nil
		}
	}

	// 3. Errored sensor back to active.
	if strings.Contains(alert.Title, titlePrefixSensorError) {
		if sensorID, ok := alert.SensorID(); ok {
			sensor, err := s.getSensor(ctx, sensorID)
			if err != nil {
				return Decision{}, err
			}
			if sensor != nil && sensor.Status == models.SensorActive {
				return Decision{Resolve: true, Reason: reasonSensorRestored}, nil
			}
		}
	}

	// 4. Informational alerts expire after a day.
	if alert.Type == models.AlertInfo && alert.Age(now) > infoExpiryAge {
		return Decision{Resolve: true, Reason: reasonInfoExpired}, nil
	}

	// 5. Efficiency recovered.
	if strings.Contains(alert.Title, TitleLowEfficiency) {
		readings, err := s.listHourly(ctx, alert.BuildingID, efficiencyCheckWindow)
		if err != nil {
			return Decision{}, err
		}
		if len(readings) > 0 && mean(efficiencies(readings)) >= improvedEfficiencyBar {
			return Decision{Resolve: true, Reason: reasonEfficiencyBetter}, nil
		}
	}

	return Decision{}, nil
}

// resolve closes the alert as system-resolved (ResolvedBy stays nil) and
// broadcasts the update. Publish failures are logged and swallowed.
func (s *ResolutionService) resolve(ctx context.Context, alert models.Alert, reason string) error {
	resolvedAt := s.now().UTC()

	cctx, cancel := s.storeCtx(ctx)
	err := s.alerts.UpdateResolution(cctx, alert.ID, resolvedAt, nil, reason)
	cancel()
	if err != nil {
		return err
	}

	alert.IsResolved = true
	alert.ResolvedAt = &resolvedAt
	alert.ResolvedBy = nil
	alert.ResolutionNote = reason

	if err := s.sink.Publish(ctx, alert.BuildingID, notify.Event{Type: notify.EventUpdate, Alert: alert}); err != nil {
		s.log.Warnw("resolution_publish_failed", "alert_id", alert.ID, "err", err)
	}
	return nil
}

// expectedHourly derives the baseline from the building record. The
// generation-time derivation is the single source of truth; a missing
// building falls back to the same documented default.
func (s *ResolutionService) expectedHourly(ctx context.Context, buildingID string) (float64, error) {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()
	b, err := s.buildings.GetByID(cctx, buildingID)
	if err != nil {
		return 0, err
	}
	if b == nil {
		return models.Building{}.ExpectedHourly(), nil
	}
	return b.ExpectedHourly(), nil
}

func (s *ResolutionService) getSensor(ctx context.Context, id string) (*models.Sensor, error) {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.sensors.GetByID(cctx, id)
}

func (s *ResolutionService) listHourly(ctx context.Context, buildingID string, limit int) ([]models.EnergyReading, error) {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.readings.ListByBuilding(cctx, buildingID, models.GranularityHour, limit, time.Time{})
}

func (s *ResolutionService) listAlerts(ctx context.Context, f repository.AlertFilter) ([]models.Alert, error) {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.alerts.List(cctx, f)
}

func (s *ResolutionService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}
