package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"habitflow/internal/cache"
	"habitflow/internal/gateway"
	"habitflow/internal/models"
	"habitflow/internal/progress"
	"habitflow/pkg/logger"
)

var listHabitsGroup singleflight.Group

// ListHabits returns the user's habits enriched with streak and totals
// (cache-first as raw bytes, singleflight on the rebuild).
func (h *Controller) ListHabits(c *gin.Context) {
	ctx := c.Request.Context()
	uid := ownerID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if b, ok := cache.GetRawHabits(ctx, uid); ok {
		c.Data(http.StatusOK, "application/json", b)
		return
	}

	v, err, _ := listHabitsGroup.Do(uid, func() (interface{}, error) {
		// An unreachable backend degrades the read to the local snapshot,
		// which still carries any optimistic state.
		if err := h.co.EnsureLoaded(context.Background(), uid); err != nil && !errors.Is(err, gateway.ErrUnavailable) {
			return nil, err
		}
		snap := h.co.Store().SnapshotFor(uid)
		return json.Marshal(progress.Summaries(snap, h.co.Now()))
	})
	if err != nil {
		logger.Error(ctx, "ListHabits failed", "error", err, "user_id", uid)
		respondError(c, err)
		return
	}
	b := v.([]byte)
	c.Data(http.StatusOK, "application/json", b)
	cache.SetRawHabitsAsync(uid, b)
}

// CreateHabit validates the payload and creates through the coordinator.
// 201 when confirmed remotely, 202 when queued for replay.
func (h *Controller) CreateHabit(c *gin.Context) {
	ctx := c.Request.Context()
	uid := ownerID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var in models.HabitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	habit, queued, err := h.co.CreateHabit(ctx, uid, in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(ctx, uid)
	if queued {
		c.JSON(http.StatusAccepted, habit)
		return
	}
	c.JSON(http.StatusCreated, habit)
}

// UpdateHabit applies a partial update. 404 for unknown ids, 202 when
// queued.
func (h *Controller) UpdateHabit(c *gin.Context) {
	ctx := c.Request.Context()
	uid := ownerID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id := c.Param("id")
	var upd models.HabitUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	habit, queued, err := h.co.UpdateHabit(ctx, id, uid, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(ctx, uid)
	if queued {
		c.JSON(http.StatusAccepted, habit)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// DeleteHabit removes a habit and its logs. 404 for unknown ids, 202 when
// queued.
func (h *Controller) DeleteHabit(c *gin.Context) {
	ctx := c.Request.Context()
	uid := ownerID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id := c.Param("id")

	queued, err := h.co.DeleteHabit(ctx, id, uid)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(ctx, uid)
	if queued {
		c.JSON(http.StatusAccepted, gin.H{"message": "Habit deletion queued"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Habit deleted successfully"})
}

// CompleteHabit records completion for one day. Defaults to today; future
// dates are rejected. One log per (habit, day): repeating the call updates
// the existing record.
func (h *Controller) CompleteHabit(c *gin.Context) {
	ctx := c.Request.Context()
	uid := ownerID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id := c.Param("id")
	var body struct {
		Completed bool   `json:"completed"`
		Date      string `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	today := models.DateString(h.co.Now())
	if body.Date == "" {
		body.Date = today
	}
	if !models.ValidDate(body.Date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, want YYYY-MM-DD"})
		return
	}
	if body.Date > today {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot record completion for a future date"})
		return
	}

	log, queued, err := h.co.ToggleCompletion(ctx, id, uid, body.Date, body.Completed)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(ctx, uid)
	if queued {
		c.JSON(http.StatusAccepted, log)
		return
	}
	c.JSON(http.StatusOK, log)
}

// HabitCompletion returns one habit's logs, optionally bounded by
// ?startDate and ?endDate (inclusive).
func (h *Controller) HabitCompletion(c *gin.Context) {
	ctx := c.Request.Context()
	uid := ownerID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id := c.Param("id")

	logs, err := h.rangeLogs(ctx, uid, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.CompletionLog, 0, len(logs))
	for _, l := range logs {
		if l.HabitID == id {
			out = append(out, l)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Controller) invalidate(ctx context.Context, uid string) {
	cache.InvalidateOwner(ctx, uid, models.DateString(h.co.Now()))
}
