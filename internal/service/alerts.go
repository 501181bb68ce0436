package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/1gassner/energy-management-mvp-sub002/internal/logger"
	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/notify"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository"
)

var errEmptyUserID = errors.New("userId is required for a manual resolution")

// AlertService covers the human side of the lifecycle: queries, manual
// resolution, and read flags.
type AlertService struct {
	alerts repository.AlertRepo
	sink   notify.Sink
	log    *logger.Logger
	now    func() time.Time
}

func NewAlertService(alerts repository.AlertRepo, sink notify.Sink, log *logger.Logger) *AlertService {
	return &AlertService{alerts: alerts, sink: sink, log: log, now: time.Now}
}

// List returns alerts matching the filter, newest first.
func (s *AlertService) List(ctx context.Context, f repository.AlertFilter) ([]models.Alert, error) {
	return s.alerts.List(ctx, f)
}

// Resolve closes an open alert on behalf of a user. ResolvedBy records the
// user, distinguishing it from system resolutions.
func (s *AlertService) Resolve(ctx context.Context, id, userID, note string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errEmptyUserID
	}

	resolvedAt := s.now().UTC()
	if err := s.alerts.UpdateResolution(ctx, id, resolvedAt, &userID, note); err != nil {
		return err
	}

	// Re-read for the broadcast payload; a miss here only degrades the
	// notification, the resolution already stuck.
	if a, err := s.alerts.GetByID(ctx, id); err == nil && a != nil {
		if perr := s.sink.Publish(ctx, a.BuildingID, notify.Event{Type: notify.EventUpdate, Alert: *a}); perr != nil {
			s.log.Warnw("manual_resolve_publish_failed", "alert_id", id, "err", perr)
		}
	}
	return nil
}

// MarkRead flags an alert as read. Read state never affects resolution.
func (s *AlertService) MarkRead(ctx context.Context, id string) error {
	return s.alerts.MarkRead(ctx, id)
}
