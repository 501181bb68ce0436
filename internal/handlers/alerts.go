package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository"
)

const (
	errInvalidResolved = "invalid 'resolved'; use true or false"
	errInvalidSince    = "invalid 'since' time; use RFC3339 or YYYY-MM-DD"

	layoutDate = "2006-01-02"
)

// listAlerts filters alerts by building, resolution state, priority, and
// creation time.
func (h *Handler) listAlerts(c *gin.Context) {
	ctx := c.Request.Context()

	filter := repository.AlertFilter{
		BuildingID: c.Query("buildingId"),
		Priority:   models.AlertPriority(c.Query("priority")),
	}

	if qs := c.Query("resolved"); qs != "" {
		resolved, err := strconv.ParseBool(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidResolved})
			return
		}
		filter.IsResolved = &resolved
	}

	if qs := c.Query("since"); qs != "" {
		since, err := parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidSince})
			return
		}
		filter.Since = since
	}

	alerts, err := h.services.Alerts.List(ctx, filter)
	if err != nil {
		h.log.Errorw("alerts_list_failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(alerts), "alerts": alerts})
}

type resolveRequest struct {
	UserID string `json:"userId" binding:"required"`
	Note   string `json:"note"`
}

// resolveAlert closes an alert on behalf of a user.
func (h *Handler) resolveAlert(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	id := c.Param("id")
	if err := h.services.Alerts.Resolve(c.Request.Context(), id, req.UserID, req.Note); err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found or already resolved"})
			return
		}
		h.log.Errorw("alert_resolve_failed", "alert_id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve alert"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}

// markAlertRead flags an alert as read.
func (h *Handler) markAlertRead(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Alerts.MarkRead(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		h.log.Errorw("alert_mark_read_failed", "alert_id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark alert read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// parseQueryTime accepts RFC3339 or a plain date.
func parseQueryTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(layoutDate, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
