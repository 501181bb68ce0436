package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// triggerGenerate runs a generation pass immediately, outside the scheduled
// cadence. Both runs are idempotent: dedup and terminal resolution make
// re-invocation safe.
func (h *Handler) triggerGenerate(c *gin.Context) {
	result, err := h.services.Generator.GenerateForAllBuildings(c.Request.Context())
	if err != nil {
		h.log.Errorw("manual_generate_failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generation run failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// triggerAutoResolve runs an auto-resolution pass immediately.
func (h *Handler) triggerAutoResolve(c *gin.Context) {
	result, err := h.services.AutoResolver.AutoResolveAll(c.Request.Context())
	if err != nil {
		h.log.Errorw("manual_auto_resolve_failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "auto-resolve run failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}
