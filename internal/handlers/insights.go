package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getInsights summarizes alert history for the requested buildings.
// Repeat buildingId for multiple buildings; period defaults to month.
func (h *Handler) getInsights(c *gin.Context) {
	buildingIDs := c.QueryArray("buildingId")
	if len(buildingIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one buildingId is required"})
		return
	}

	insights, err := h.services.Insights.Summarize(c.Request.Context(), buildingIDs, c.Query("period"))
	if err != nil {
		h.log.Errorw("insights_failed", "buildings", buildingIDs, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute insights"})
		return
	}
	c.JSON(http.StatusOK, insights)
}
