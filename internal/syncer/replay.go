package syncer

import (
	"context"
	"errors"

	"habitflow/internal/gateway"
	"habitflow/internal/models"
	"habitflow/internal/store"
	"habitflow/pkg/logger"
)

// Replay drains the pending queue in FIFO order. Each operation makes one
// attempt per pass: a transport failure re-enqueues it at the tail and marks
// the coordinator offline again; a permanent failure flags the optimistic
// entry and drops the operation. The pass is bounded by the queue length at
// entry so a dead backend cannot spin the loop.
func (c *Coordinator) Replay(ctx context.Context) {
	c.mu.Lock()
	n := len(c.pending)
	c.mu.Unlock()

	for i := 0; i < n; i++ {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.mu.Unlock()
			return
		}
		op := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()

		err := c.replayOne(ctx, op)
		switch {
		case err == nil:
			logger.Info(ctx, "Pending operation replayed", "type", string(op.Type), "habit_id", op.HabitID)
		case errors.Is(err, gateway.ErrUnavailable):
			op.Attempts++
			c.mu.Lock()
			c.pending = append(c.pending, op)
			c.online = false
			c.mu.Unlock()
			logger.Warn(ctx, "Replay hit unreachable backend; operation re-enqueued",
				"type", string(op.Type), "attempts", op.Attempts)
			return
		default:
			c.markFailed(op)
			logger.Error(ctx, "Pending operation rejected; dropped",
				"type", string(op.Type), "habit_id", op.HabitID, "error", err)
		}
	}
}

func (c *Coordinator) replayOne(ctx context.Context, op models.PendingOperation) error {
	switch op.Type {
	case models.OpCreateHabit:
		if op.Habit == nil {
			return nil
		}
		habit := *op.Habit
		tempID := habit.ID
		habit.ID = "" // the remote store assigns the authoritative id
		created, err := c.gw.CreateHabit(ctx, habit)
		if err != nil {
			return err
		}
		c.store.Promote(tempID, created)
		c.rebindPending(tempID, created.ID)
		c.emit(ctx, models.ChangeEvent{Kind: models.ChangeHabitUpsert, OwnerID: op.OwnerID, Habit: &created})
		return nil

	case models.OpUpdateHabit:
		if op.Update == nil {
			return nil
		}
		updated, err := c.gw.UpdateHabit(ctx, op.HabitID, op.OwnerID, *op.Update)
		if err != nil {
			return err
		}
		c.store.UpsertHabit(updated, store.Confirmed)
		c.emit(ctx, models.ChangeEvent{Kind: models.ChangeHabitUpsert, OwnerID: op.OwnerID, Habit: &updated})
		return nil

	case models.OpDeleteHabit:
		err := c.gw.DeleteHabit(ctx, op.HabitID, op.OwnerID)
		if err != nil && !errors.Is(err, gateway.ErrNotFound) {
			return err
		}
		// Already gone remotely counts as done.
		c.emit(ctx, models.ChangeEvent{Kind: models.ChangeHabitDelete, OwnerID: op.OwnerID, HabitID: op.HabitID})
		return nil

	case models.OpToggleCompletion:
		log, err := c.gw.UpsertCompletion(ctx, op.HabitID, op.Date, op.Completed, op.OwnerID)
		if err != nil {
			return err
		}
		c.store.UpsertLog(log, store.Confirmed)
		c.emit(ctx, models.ChangeEvent{Kind: models.ChangeLogUpsert, OwnerID: op.OwnerID, Log: &log})
		return nil
	}
	return nil
}

// rebindPending rewrites queued operations that still reference a temporary
// habit id after its create was confirmed.
func (c *Coordinator) rebindPending(tempID, realID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.pending {
		if c.pending[i].HabitID == tempID {
			c.pending[i].HabitID = realID
		}
	}
}

func (c *Coordinator) markFailed(op models.PendingOperation) {
	switch op.Type {
	case models.OpCreateHabit:
		if op.Habit != nil {
			c.store.MarkHabitFailed(op.Habit.ID)
		}
	case models.OpUpdateHabit:
		c.store.MarkHabitFailed(op.HabitID)
	case models.OpToggleCompletion:
		c.store.MarkLogFailed(op.HabitID, op.Date)
	}
}
