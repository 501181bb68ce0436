package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/1gassner/energy-management-mvp-sub002/internal/config"
	"github.com/1gassner/energy-management-mvp-sub002/internal/logger"
	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository"
)

const (
	defaultConcurrency  = 8
	defaultStoreTimeout = 5 * time.Second
	hourlyWindowSize    = 24
	dailyWindowSize     = 7
)

// Orchestrator drives a full generation pass: it fans building evaluation
// out over a bounded worker pool and funnels every candidate through the
// dedup writer. Per-building failures are captured in the result; they
// never abort the batch.
type Orchestrator struct {
	repos        *repository.Repository
	writer       *AlertWriter
	evaluators   []RuleEvaluator
	concurrency  int
	storeTimeout time.Duration
	log          *logger.Logger
	now          func() time.Time
}

func NewOrchestrator(repos *repository.Repository, writer *AlertWriter, eng config.Engine, log *logger.Logger) *Orchestrator {
	concurrency := eng.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	storeTimeout := eng.StoreTimeout
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &Orchestrator{
		repos: repos,
		writer: writer,
		evaluators: []RuleEvaluator{
			NewEnergyEvaluator(),
			NewSensorEvaluator(),
			NewPerformanceEvaluator(),
			NewSystemEvaluator(),
		},
		concurrency:  concurrency,
		storeTimeout: storeTimeout,
		log:          log,
		now:          time.Now,
	}
}

// GenerateForAllBuildings evaluates every online building. Cancelling ctx
// stops dispatching new buildings; in-flight evaluations complete.
func (o *Orchestrator) GenerateForAllBuildings(ctx context.Context) (models.GenerationResult, error) {
	startedAt := o.now().UTC()

	cctx, cancel := context.WithTimeout(ctx, o.storeTimeout)
	buildings, err := o.repos.Buildings.List(cctx, models.BuildingOnline)
	cancel()
	if err != nil {
		return models.GenerationResult{}, fmt.Errorf("list online buildings: %w", err)
	}

	results := make([]models.BuildingRunResult, len(buildings))
	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup

dispatch:
	for i, b := range buildings {
		select {
		case <-ctx.Done():
			for j := i; j < len(buildings); j++ {
				results[j] = models.BuildingRunResult{
					BuildingID:   buildings[j].ID,
					BuildingName: buildings[j].Name,
					Error:        "skipped: run cancelled",
				}
			}
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, b models.Building) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = o.evaluateBuilding(ctx, b)
		}(i, b)
	}
	wg.Wait()

	result := models.GenerationResult{
		Buildings:  results,
		StartedAt:  startedAt,
		FinishedAt: o.now().UTC(),
	}
	for _, r := range results {
		result.TotalGenerated += r.Generated
	}
	o.log.Infow("generation_pass_done",
		"buildings", len(buildings),
		"generated", result.TotalGenerated,
		"duration", result.FinishedAt.Sub(result.StartedAt),
	)
	return result, nil
}

// evaluateBuilding runs the four evaluators for one building concurrently
// and submits the merged candidates. A panic inside an evaluator is caught
// and recorded as the building's error.
func (o *Orchestrator) evaluateBuilding(ctx context.Context, b models.Building) (result models.BuildingRunResult) {
	result = models.BuildingRunResult{BuildingID: b.ID, BuildingName: b.Name}
	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Sprintf("evaluation panic: %v", r)
			o.log.Errorw("building_evaluation_panic", "building_id", b.ID, "panic", r)
		}
	}()

	candidates := o.runEvaluators(ctx, b)

	for _, cand := range candidates {
		cctx, cancel := context.WithTimeout(ctx, o.storeTimeout)
		alert, err := o.writer.Submit(cctx, b.ID, cand)
		cancel()
		if err != nil {
			// Record the first failure; keep submitting the rest.
			if result.Error == "" {
				result.Error = fmt.Sprintf("submit %q: %v", cand.Title, err)
			}
			o.log.Warnw("candidate_submit_failed", "building_id", b.ID, "title", cand.Title, "err", err)
			continue
		}
		if alert != nil {
			result.Generated++
		}
	}
	return result
}

// runEvaluators fans the four evaluators out, each over its own telemetry
// slice, and joins their candidates. A failed telemetry fetch degrades that
// evaluator only: it is skipped rather than fed an empty snapshot it would
// misread as missing data.
func (o *Orchestrator) runEvaluators(ctx context.Context, b models.Building) []models.AlertCandidate {
	now := o.now().UTC()

	type evalResult struct {
		name       string
		candidates []models.AlertCandidate
		err        error
	}
	ch := make(chan evalResult, len(o.evaluators))

	for _, ev := range o.evaluators {
		go func(ev RuleEvaluator) {
			snap, err := o.snapshotFor(ctx, ev.Name(), b, now)
			if err != nil {
				ch <- evalResult{name: ev.Name(), err: err}
				return
			}
			ch <- evalResult{name: ev.Name(), candidates: ev.Evaluate(b, snap)}
		}(ev)
	}

	var out []models.AlertCandidate
	for range o.evaluators {
		res := <-ch
		if res.err != nil {
			o.log.Warnw("evaluator_skipped", "building_id", b.ID, "evaluator", res.name, "err", res.err)
			continue
		}
		out = append(out, res.candidates...)
	}
	return out
}

// snapshotFor fetches only the telemetry the named evaluator consumes.
func (o *Orchestrator) snapshotFor(ctx context.Context, evaluator string, b models.Building, now time.Time) (TelemetrySnapshot, error) {
	snap := TelemetrySnapshot{Now: now}

	cctx, cancel := context.WithTimeout(ctx, o.storeTimeout)
	defer cancel()

	switch evaluator {
	case "energy":
		readings, err := o.repos.Readings.ListByBuilding(cctx, b.ID, models.GranularityHour, hourlyWindowSize, now.Add(-24*time.Hour))
		if err != nil {
			return snap, err
		}
		snap.HourlyReadings = readings
	case "sensor":
		sensors, err := o.repos.Sensors.ListByBuilding(cctx, b.ID)
		if err != nil {
			return snap, err
		}
		snap.Sensors = sensors
	case "performance":
		readings, err := o.repos.Readings.ListByBuilding(cctx, b.ID, models.GranularityDay, dailyWindowSize, now.AddDate(0, 0, -7))
		if err != nil {
			return snap, err
		}
		snap.DailyReadings = readings
	case "system":
		unresolved := false
		open, err := o.repos.Alerts.List(cctx, repository.AlertFilter{BuildingID: b.ID, IsResolved: &unresolved})
		if err != nil {
			return snap, err
		}
		recent, err := o.repos.Alerts.List(cctx, repository.AlertFilter{BuildingID: b.ID, Since: now.Add(-alertStormWindow)})
		if err != nil {
			return snap, err
		}
		snap.OpenAlerts = open
		snap.RecentAlerts = recent
	}
	return snap, nil
}
