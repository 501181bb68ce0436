package service

import (
	"context"
	"sync"
	"time"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/notify"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository"
)

// fakeAlertRepo is an in-memory repository.AlertRepo with the same dedup
// and terminal-resolution semantics as the SQL implementation.
type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts []models.Alert

	findOpenErr error
	insertErr   error
	listErr     error
}

func (f *fakeAlertRepo) Insert(_ context.Context, a models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, existing := range f.alerts {
		if existing.BuildingID == a.BuildingID && existing.Title == a.Title && !existing.IsResolved {
			return repository.ErrDuplicateAlert
		}
	}
	f.alerts = append(f.alerts, a)
	return nil
}

func (f *fakeAlertRepo) GetByID(_ context.Context, id string) (*models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			a := f.alerts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAlertRepo) FindOpen(_ context.Context, buildingID, title string, since time.Time) (*models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findOpenErr != nil {
		return nil, f.findOpenErr
	}
	for i := range f.alerts {
		a := f.alerts[i]
		if a.BuildingID == buildingID && a.Title == title && !a.IsResolved && !a.CreatedAt.Before(since) {
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAlertRepo) List(_ context.Context, filter repository.AlertFilter) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Alert
	for _, a := range f.alerts {
		if filter.BuildingID != "" && a.BuildingID != filter.BuildingID {
			continue
		}
		if filter.IsResolved != nil && a.IsResolved != *filter.IsResolved {
			continue
		}
		if filter.Priority != "" && a.Priority != filter.Priority {
			continue
		}
		if !filter.Since.IsZero() && a.CreatedAt.Before(filter.Since) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAlertRepo) UpdateResolution(_ context.Context, id string, resolvedAt time.Time, resolvedBy *string, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.alerts {
		if f.alerts[i].ID == id && !f.alerts[i].IsResolved {
			f.alerts[i].IsResolved = true
			f.alerts[i].ResolvedAt = &resolvedAt
			f.alerts[i].ResolvedBy = resolvedBy
			f.alerts[i].ResolutionNote = note
			return nil
		}
	}
	return repository.ErrAlertNotFound
}

func (f *fakeAlertRepo) MarkRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			f.alerts[i].IsRead = true
			return nil
		}
	}
	return repository.ErrAlertNotFound
}

func (f *fakeAlertRepo) snapshot() []models.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Alert, len(f.alerts))
	copy(out, f.alerts)
	return out
}

// fakeBuildingRepo serves a fixed building list.
type fakeBuildingRepo struct {
	buildings []models.Building
	listErr   error
}

func (f *fakeBuildingRepo) List(_ context.Context, status string) ([]models.Building, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Building
	for _, b := range f.buildings {
		if status == "" || b.Status == status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBuildingRepo) GetByID(_ context.Context, id string) (*models.Building, error) {
	for i := range f.buildings {
		if f.buildings[i].ID == id {
			b := f.buildings[i]
			return &b, nil
		}
	}
	return nil, nil
}

// fakeReadingRepo serves fixed reading slices keyed by granularity.
type fakeReadingRepo struct {
	hourly  map[string][]models.EnergyReading
	daily   map[string][]models.EnergyReading
	listErr error
}

func (f *fakeReadingRepo) ListByBuilding(_ context.Context, buildingID, granularity string, limit int, _ time.Time) ([]models.EnergyReading, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var readings []models.EnergyReading
	if granularity == models.GranularityHour {
		readings = f.hourly[buildingID]
	} else {
		readings = f.daily[buildingID]
	}
	if limit > 0 && len(readings) > limit {
		readings = readings[:limit]
	}
	return readings, nil
}

func (f *fakeReadingRepo) Append(_ context.Context, _ models.EnergyReading) error { return nil }

// fakeSensorRepo serves fixed sensors.
type fakeSensorRepo struct {
	sensors []models.Sensor
	listErr error
}

func (f *fakeSensorRepo) ListByBuilding(_ context.Context, buildingID string) ([]models.Sensor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Sensor
	for _, s := range f.sensors {
		if s.BuildingID == buildingID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSensorRepo) GetByID(_ context.Context, id string) (*models.Sensor, error) {
	for i := range f.sensors {
		if f.sensors[i].ID == id {
			s := f.sensors[i]
			return &s, nil
		}
	}
	return nil, nil
}

// recordingSink captures published events.
type recordingSink struct {
	mu         sync.Mutex
	events     []notify.Event
	publishErr error
}

func (r *recordingSink) Publish(_ context.Context, _ string, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.publishErr != nil {
		return r.publishErr
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingSink) published() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Event, len(r.events))
	copy(out, r.events)
	return out
}

func testRepos(alerts *fakeAlertRepo, buildings *fakeBuildingRepo, readings *fakeReadingRepo, sensors *fakeSensorRepo) *repository.Repository {
	if alerts == nil {
		alerts = &fakeAlertRepo{}
	}
	if buildings == nil {
		buildings = &fakeBuildingRepo{}
	}
	if readings == nil {
		readings = &fakeReadingRepo{}
	}
	if sensors == nil {
		sensors = &fakeSensorRepo{}
	}
	return &repository.Repository{
		Buildings: buildings,
		Readings:  readings,
		Sensors:   sensors,
		Alerts:    alerts,
	}
}

func floatPtr(v float64) *float64 { return &v }
