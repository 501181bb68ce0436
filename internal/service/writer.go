package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/1gassner/energy-management-mvp-sub002/internal/logger"
	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/notify"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository"
)

const defaultDedupWindow = 6 * time.Hour

// AlertWriter persists candidate alerts after duplicate suppression and
// broadcasts the result. At most one open alert per (building, title)
// exists within the dedup window.
type AlertWriter struct {
	alerts      repository.AlertRepo
	sink        notify.Sink
	dedupWindow time.Duration
	log         *logger.Logger
	now         func() time.Time
}

func NewAlertWriter(alerts repository.AlertRepo, sink notify.Sink, dedupWindow time.Duration, log *logger.Logger) *AlertWriter {
	if dedupWindow <= 0 {
		dedupWindow = defaultDedupWindow
	}
	return &AlertWriter{
		alerts:      alerts,
		sink:        sink,
		dedupWindow: dedupWindow,
		log:         log,
		now:         time.Now,
	}
}

// Submit writes one candidate for a building. It returns the persisted
// alert, or nil when the candidate was suppressed as a duplicate.
// Broadcasting is best-effort: a publish failure never rolls back the write.
func (w *AlertWriter) Submit(ctx context.Context, buildingID string, cand models.AlertCandidate) (*models.Alert, error) {
	now := w.now().UTC()
	since := now.Add(-w.dedupWindow)

	existing, err := w.alerts.FindOpen(ctx, buildingID, cand.Title, since)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	alert := models.Alert{
		ID:         uuid.NewString(),
		BuildingID: buildingID,
		Type:       cand.Type,
		Title:      cand.Title,
		Message:    cand.Message,
		Priority:   cand.Priority,
		Category:   cand.Category,
		Metadata:   cand.Metadata,
		CreatedAt:  now,
	}
	if err := w.alerts.Insert(ctx, alert); err != nil {
		// A concurrent run won the check-then-write race; same outcome
		// as the FindOpen hit above.
		if errors.Is(err, repository.ErrDuplicateAlert) {
			return nil, nil
		}
		return nil, err
	}

	if err := w.sink.Publish(ctx, buildingID, notify.Event{Type: notify.EventInsert, Alert: alert}); err != nil {
		w.log.Warnw("alert_publish_failed", "building_id", buildingID, "title", alert.Title, "err", err)
	}

	return &alert, nil
}
