package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"habitflow/internal/cache"
	"habitflow/internal/gateway"
	"habitflow/internal/models"
	"habitflow/internal/progress"
)

var errInvalidRange = fmt.Errorf("%w: invalid date range, want YYYY-MM-DD", gateway.ErrValidation)

// Logs returns the user's completion logs, optionally bounded by
// ?startDate and ?endDate (inclusive). Feeds the dashboard calendar.
func (h *Controller) Logs(c *gin.Context) {
	ctx := c.Request.Context()
	uid := ownerID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logs, err := h.rangeLogs(ctx, uid, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// TodayProgress returns the aggregate completion figure for the current
// date, cache-first.
func (h *Controller) TodayProgress(c *gin.Context) {
	ctx := c.Request.Context()
	uid := ownerID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	today := models.DateString(h.co.Now())

	if b, ok := cache.GetRawTodayProgress(ctx, uid, today); ok {
		c.Data(http.StatusOK, "application/json", b)
		return
	}

	if err := h.co.EnsureLoaded(ctx, uid); err != nil && !errors.Is(err, gateway.ErrUnavailable) {
		respondError(c, err)
		return
	}
	snap := h.co.Store().SnapshotFor(uid)
	out := progress.Today(snap, h.co.Now())
	c.JSON(http.StatusOK, out)

	if b, err := json.Marshal(out); err == nil {
		cache.SetRawTodayProgressAsync(uid, today, b)
	}
}

// rangeLogs validates the optional date bounds and reads either the full
// log set or the inclusive range through the gateway.
func (h *Controller) rangeLogs(ctx context.Context, uid, start, end string) ([]models.CompletionLog, error) {
	if start == "" || end == "" {
		return h.gw.ListLogs(ctx, uid)
	}
	if !models.ValidDate(start) || !models.ValidDate(end) {
		return nil, errInvalidRange
	}
	return h.gw.ListLogsInRange(ctx, uid, start, end)
}
