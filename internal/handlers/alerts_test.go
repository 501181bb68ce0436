package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository"
	"github.com/1gassner/energy-management-mvp-sub002/internal/service"
)

func TestListAlerts_FiltersAndResponse(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	alerts := &mockAlerts{listResp: []models.Alert{
		{ID: "a1", BuildingID: "b1", Title: "High Energy Consumption", CreatedAt: now},
		{ID: "a2", BuildingID: "b1", Title: "Low Energy Efficiency", CreatedAt: now.Add(-time.Hour)},
	}}
	r := newTestRouter(&service.Service{Alerts: alerts})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts?buildingId=b1&resolved=false&priority=high&since=2026-03-01", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int            `json:"count"`
		Alerts []models.Alert `json:"alerts"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Alerts) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}

	f := alerts.lastFilter
	if f.BuildingID != "b1" || f.Priority != models.PriorityHigh {
		t.Fatalf("filter not forwarded: %+v", f)
	}
	if f.IsResolved == nil || *f.IsResolved {
		t.Fatalf("resolved filter not forwarded: %+v", f.IsResolved)
	}
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !f.Since.Equal(want) {
		t.Fatalf("since: want %v, got %v", want, f.Since)
	}
}

func TestListAlerts_BadQueryValues(t *testing.T) {
	r := newTestRouter(&service.Service{Alerts: &mockAlerts{}})

	for _, path := range []string{
		"/api/v1/alerts?resolved=maybe",
		"/api/v1/alerts?since=notatime",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestListAlerts_ServiceFailure(t *testing.T) {
	alerts := &mockAlerts{listErr: errors.New("store down")}
	r := newTestRouter(&service.Service{Alerts: alerts})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestResolveAlert(t *testing.T) {
	alerts := &mockAlerts{}
	r := newTestRouter(&service.Service{Alerts: alerts})

	w := httptest.NewRecorder()
	body := strings.NewReader(`{"userId":"u1","note":"checked on site"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/a1/resolve", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if alerts.lastResolveID != "a1" || alerts.lastUserID != "u1" || alerts.lastNote != "checked on site" {
		t.Fatalf("resolve args not forwarded: %+v", alerts)
	}
}

func TestResolveAlert_RequiresUserID(t *testing.T) {
	alerts := &mockAlerts{}
	r := newTestRouter(&service.Service{Alerts: alerts})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/a1/resolve", strings.NewReader(`{"note":"no user"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if alerts.resolveCalls != 0 {
		t.Fatal("service must not be called without a user")
	}
}

func TestResolveAlert_NotFound(t *testing.T) {
	alerts := &mockAlerts{resolErr: repository.ErrAlertNotFound}
	r := newTestRouter(&service.Service{Alerts: alerts})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/missing/resolve", strings.NewReader(`{"userId":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for already-resolved or missing alert, got %d", w.Code)
	}
}

func TestMarkAlertRead(t *testing.T) {
	alerts := &mockAlerts{}
	r := newTestRouter(&service.Service{Alerts: alerts})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/alerts/a1/read", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if alerts.lastReadID != "a1" {
		t.Fatalf("read id not forwarded: %q", alerts.lastReadID)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
