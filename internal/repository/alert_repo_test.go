package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository/db"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newMockConn(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn, mock
}

func alertRows(alerts ...models.Alert) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "building_id", "type", "title", "message", "priority", "category", "metadata",
		"created_at", "is_read", "is_resolved", "resolved_at", "resolved_by", "resolution_note",
	})
	for _, a := range alerts {
		var meta, resolvedAt, resolvedBy any
		if a.Metadata != nil {
			b, _ := json.Marshal(a.Metadata)
			meta = string(b)
		}
		if a.ResolvedAt != nil {
			resolvedAt = *a.ResolvedAt
		}
		if a.ResolvedBy != nil {
			resolvedBy = *a.ResolvedBy
		}
		rows.AddRow(a.ID, a.BuildingID, string(a.Type), a.Title, a.Message, string(a.Priority),
			a.Category, meta, a.CreatedAt, a.IsRead, a.IsResolved, resolvedAt, resolvedBy, a.ResolutionNote)
	}
	return rows
}

func TestAlertInsert_Success(t *testing.T) {
	t.Parallel()

	conn, mock := newMockConn(t)
	repo := NewAlertSQL(conn, db.DriverSQLite)

	created := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO alerts").
		WithArgs("a1", "b1", "warning", "High Energy Consumption", "way above baseline",
			"high", "high_consumption", sqlmock.AnyArg(), created, false, false, nil, nil, "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(ctx(t), models.Alert{
		ID:         "a1",
		BuildingID: "b1",
		Type:       models.AlertWarning,
		Title:      "High Energy Consumption",
		Message:    "way above baseline",
		Priority:   models.PriorityHigh,
		Category:   models.CategoryHighConsumption,
		Metadata:   map[string]any{"currentConsumption": 25.0},
		CreatedAt:  created,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAlertInsert_UniqueViolation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		driver string
		err    error
	}{
		{
			name:   "sqlite constraint message",
			driver: db.DriverSQLite,
			err:    errors.New("constraint failed: UNIQUE constraint failed: alerts.building_id, alerts.title"),
		},
		{
			name:   "postgres 23505",
			driver: db.DriverPostgres,
			err:    &pq.Error{Code: "23505"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			conn, mock := newMockConn(t)
			repo := NewAlertSQL(conn, tc.driver)

			mock.ExpectExec("INSERT INTO alerts").WillReturnError(tc.err)

			err := repo.Insert(ctx(t), models.Alert{ID: "a1", BuildingID: "b1", Title: "High Energy Consumption"})
			if !errors.Is(err, ErrDuplicateAlert) {
				t.Fatalf("want ErrDuplicateAlert, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("mock expectations: %v", err)
			}
		})
	}
}

func TestAlertFindOpen(t *testing.T) {
	t.Parallel()

	conn, mock := newMockConn(t)
	repo := NewAlertSQL(conn, db.DriverSQLite)

	since := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	open := models.Alert{
		ID:         "a1",
		BuildingID: "b1",
		Type:       models.AlertWarning,
		Title:      "High Energy Consumption",
		Priority:   models.PriorityHigh,
		Category:   models.CategoryHighConsumption,
		Metadata:   map[string]any{"exceedsBy": 15.0},
		CreatedAt:  since.Add(2 * time.Hour),
	}

	mock.ExpectQuery("SELECT (.+) FROM alerts").
		WithArgs("b1", "High Energy Consumption", since).
		WillReturnRows(alertRows(open))

	got, err := repo.FindOpen(ctx(t), "b1", "High Energy Consumption", since)
	if err != nil {
		t.Fatalf("FindOpen: %v", err)
	}
	if got == nil || got.ID != "a1" {
		t.Fatalf("unexpected alert: %+v", got)
	}
	if got.Metadata["exceedsBy"] != 15.0 {
		t.Fatalf("metadata not parsed: %#v", got.Metadata)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAlertFindOpen_NoRowIsNil(t *testing.T) {
	t.Parallel()

	conn, mock := newMockConn(t)
	repo := NewAlertSQL(conn, db.DriverSQLite)

	mock.ExpectQuery("SELECT (.+) FROM alerts").
		WillReturnRows(alertRows())

	got, err := repo.FindOpen(ctx(t), "b1", "High Energy Consumption", time.Time{})
	if err != nil {
		t.Fatalf("FindOpen: %v", err)
	}
	if got != nil {
		t.Fatalf("want nil for no match, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAlertList_FilterArgsAndOrder(t *testing.T) {
	t.Parallel()

	conn, mock := newMockConn(t)
	repo := NewAlertSQL(conn, db.DriverSQLite)

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	unresolved := false

	query := `FROM alerts WHERE building_id = ? AND is_resolved = ? AND created_at >= ? ORDER BY created_at DESC`
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("b1", false, since).
		WillReturnRows(alertRows(
			models.Alert{ID: "a2", BuildingID: "b1", CreatedAt: since.Add(2 * time.Hour)},
			models.Alert{ID: "a1", BuildingID: "b1", CreatedAt: since.Add(time.Hour)},
		))

	got, err := repo.List(ctx(t), AlertFilter{BuildingID: "b1", IsResolved: &unresolved, Since: since})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a2" || got[1].ID != "a1" {
		t.Fatalf("unexpected alerts: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAlertList_PostgresPlaceholders(t *testing.T) {
	t.Parallel()

	conn, mock := newMockConn(t)
	repo := NewAlertSQL(conn, db.DriverPostgres)

	query := `FROM alerts WHERE building_id = $1 AND priority = $2 ORDER BY created_at DESC`
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("b1", "critical").
		WillReturnRows(alertRows())

	if _, err := repo.List(ctx(t), AlertFilter{BuildingID: "b1", Priority: models.PriorityCritical}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAlertUpdateResolution_Terminal(t *testing.T) {
	t.Parallel()

	conn, mock := newMockConn(t)
	repo := NewAlertSQL(conn, db.DriverSQLite)

	resolvedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE alerts SET is_resolved = TRUE").
		WithArgs(resolvedAt, nil, "info alert auto-expired", "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The guard refuses a second resolution of the same row.
	mock.ExpectExec("UPDATE alerts SET is_resolved = TRUE").
		WithArgs(resolvedAt, nil, "info alert auto-expired", "a1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateResolution(ctx(t), "a1", resolvedAt, nil, "info alert auto-expired"); err != nil {
		t.Fatalf("first resolution: %v", err)
	}
	err := repo.UpdateResolution(ctx(t), "a1", resolvedAt, nil, "info alert auto-expired")
	if !errors.Is(err, ErrAlertNotFound) {
		t.Fatalf("second resolution: want ErrAlertNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAlertMarkRead(t *testing.T) {
	t.Parallel()

	conn, mock := newMockConn(t)
	repo := NewAlertSQL(conn, db.DriverSQLite)

	mock.ExpectExec("UPDATE alerts SET is_read = TRUE").
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE alerts SET is_read = TRUE").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.MarkRead(ctx(t), "a1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := repo.MarkRead(ctx(t), "missing"); !errors.Is(err, ErrAlertNotFound) {
		t.Fatalf("want ErrAlertNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
