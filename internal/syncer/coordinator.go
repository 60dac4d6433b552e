// Package syncer reconciles local optimistic state with the remote store.
// Mutations go remote-first; when the gateway reports the backend
// unreachable, the mutation is applied optimistically to the store, queued,
// and replayed in order once connectivity returns. Any other failure is
// surfaced untouched, with no local change.
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"habitflow/internal/gateway"
	"habitflow/internal/models"
	"habitflow/internal/store"
	"habitflow/pkg/logger"
)

// tempIDPrefix marks ids synthesized for offline creates; they are swapped
// for the authoritative id when the replay confirms.
const tempIDPrefix = "tmp-"

// Publisher receives change events after a committed write.
type Publisher func(ctx context.Context, ev models.ChangeEvent)

// Coordinator owns all writes to the store and the pending queue.
type Coordinator struct {
	mu      sync.Mutex
	gw      gateway.Gateway
	store   *store.Store
	pending []models.PendingOperation
	online  bool
	loaded  map[string]bool // owners already primed from the remote store
	now     func() time.Time
	publish Publisher
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock injects the wall clock (tests pin "today" with this).
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithPublisher sets the change-event sink.
func WithPublisher(p Publisher) Option {
	return func(c *Coordinator) { c.publish = p }
}

func New(gw gateway.Gateway, st *store.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		gw:     gw,
		store:  st,
		online: true,
		loaded: make(map[string]bool),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the working set for read paths.
func (c *Coordinator) Store() *store.Store {
	return c.store
}

// Now returns the coordinator's current time (injectable for tests).
func (c *Coordinator) Now() time.Time {
	return c.now()
}

// Online reports the last known connectivity state.
func (c *Coordinator) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// Pending returns a copy of the queued operations.
func (c *Coordinator) Pending() []models.PendingOperation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.PendingOperation, len(c.pending))
	copy(out, c.pending)
	return out
}

// EnsureLoaded primes the store for an owner from the remote store, once.
// On gateway failure the store keeps whatever it has; reads degrade to the
// local snapshot.
func (c *Coordinator) EnsureLoaded(ctx context.Context, ownerID string) error {
	c.mu.Lock()
	if c.loaded[ownerID] {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	habits, err := c.gw.ListHabits(ctx, ownerID)
	if err != nil {
		return err
	}
	logs, err := c.gw.ListLogs(ctx, ownerID)
	if err != nil {
		return err
	}
	c.store.ReplaceOwner(ownerID, habits, logs)
	c.mu.Lock()
	c.loaded[ownerID] = true
	c.mu.Unlock()
	return nil
}

// CreateHabit creates a habit. The bool result reports whether the mutation
// was queued for replay (backend unreachable) instead of confirmed.
func (c *Coordinator) CreateHabit(ctx context.Context, ownerID string, in models.HabitInput) (models.Habit, bool, error) {
	if in.Name == "" || !in.Category.Valid() {
		return models.Habit{}, false, gateway.ErrValidation
	}
	habit := models.Habit{
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		OwnerID:     ownerID,
	}

	created, err := c.gw.CreateHabit(ctx, habit)
	if err == nil {
		c.store.UpsertHabit(created, store.Confirmed)
		c.emit(ctx, models.ChangeEvent{Kind: models.ChangeHabitUpsert, OwnerID: ownerID, Habit: &created})
		return created, false, nil
	}
	if !errors.Is(err, gateway.ErrUnavailable) {
		return models.Habit{}, false, err
	}

	now := c.now()
	habit.ID = tempIDPrefix + uuid.New().String()
	habit.CreatedAt = now
	habit.UpdatedAt = now
	c.store.UpsertHabit(habit, store.OptimisticPending)
	c.enqueue(models.PendingOperation{
		Type:       models.OpCreateHabit,
		OwnerID:    ownerID,
		Habit:      &habit,
		EnqueuedAt: now,
	})
	logger.Warn(ctx, "Backend unreachable; habit create queued", "temp_id", habit.ID)
	return habit, true, nil
}

// UpdateHabit applies a partial update to a habit.
func (c *Coordinator) UpdateHabit(ctx context.Context, id, ownerID string, upd models.HabitUpdate) (models.Habit, bool, error) {
	if upd.Category != "" && !upd.Category.Valid() {
		return models.Habit{}, false, gateway.ErrValidation
	}

	updated, err := c.gw.UpdateHabit(ctx, id, ownerID, upd)
	if err == nil {
		c.store.UpsertHabit(updated, store.Confirmed)
		c.emit(ctx, models.ChangeEvent{Kind: models.ChangeHabitUpsert, OwnerID: ownerID, Habit: &updated})
		return updated, false, nil
	}
	if !errors.Is(err, gateway.ErrUnavailable) {
		return models.Habit{}, false, err
	}

	current, ok := c.store.Habit(id)
	if !ok || current.OwnerID != ownerID {
		return models.Habit{}, false, gateway.ErrNotFound
	}
	applyUpdate(&current, upd)
	current.UpdatedAt = c.now()
	c.store.UpsertHabit(current, store.OptimisticPending)
	c.enqueue(models.PendingOperation{
		Type:       models.OpUpdateHabit,
		OwnerID:    ownerID,
		HabitID:    id,
		Update:     &upd,
		EnqueuedAt: c.now(),
	})
	logger.Warn(ctx, "Backend unreachable; habit update queued", "habit_id", id)
	return current, true, nil
}

// DeleteHabit removes a habit and its logs. When queued offline the local
// copy disappears immediately so lookups behave as if it never existed.
func (c *Coordinator) DeleteHabit(ctx context.Context, id, ownerID string) (bool, error) {
	err := c.gw.DeleteHabit(ctx, id, ownerID)
	if err == nil {
		c.store.DeleteHabit(id)
		c.dropPendingFor(id)
		c.emit(ctx, models.ChangeEvent{Kind: models.ChangeHabitDelete, OwnerID: ownerID, HabitID: id})
		return false, nil
	}
	if !errors.Is(err, gateway.ErrUnavailable) {
		return false, err
	}

	current, ok := c.store.Habit(id)
	if !ok || current.OwnerID != ownerID {
		return false, gateway.ErrNotFound
	}
	c.store.DeleteHabit(id)
	// A create still in the queue never reached the backend: cancelling the
	// queued operations is the whole delete.
	wasLocalOnly := isTempID(id)
	c.dropPendingFor(id)
	if !wasLocalOnly {
		c.enqueue(models.PendingOperation{
			Type:       models.OpDeleteHabit,
			OwnerID:    ownerID,
			HabitID:    id,
			EnqueuedAt: c.now(),
		})
	}
	logger.Warn(ctx, "Backend unreachable; habit delete applied locally", "habit_id", id, "queued", !wasLocalOnly)
	return true, nil
}

// ToggleCompletion records the completion flag for (habitID, date). Repeat
// toggles for the same day update the same record on both the optimistic
// and the remote path.
func (c *Coordinator) ToggleCompletion(ctx context.Context, habitID, ownerID, date string, completed bool) (models.CompletionLog, bool, error) {
	if !models.ValidDate(date) {
		return models.CompletionLog{}, false, gateway.ErrValidation
	}

	log, err := c.gw.UpsertCompletion(ctx, habitID, date, completed, ownerID)
	if err == nil {
		c.store.UpsertLog(log, store.Confirmed)
		c.emit(ctx, models.ChangeEvent{Kind: models.ChangeLogUpsert, OwnerID: ownerID, Log: &log})
		return log, false, nil
	}
	if !errors.Is(err, gateway.ErrUnavailable) {
		return models.CompletionLog{}, false, err
	}

	if current, ok := c.store.Habit(habitID); !ok || current.OwnerID != ownerID {
		return models.CompletionLog{}, false, gateway.ErrNotFound
	}
	log = models.CompletionLog{
		ID:        tempIDPrefix + uuid.New().String(),
		HabitID:   habitID,
		Date:      date,
		Completed: completed,
		OwnerID:   ownerID,
		UpdatedAt: c.now(),
	}
	c.store.UpsertLog(log, store.OptimisticPending)
	c.enqueue(models.PendingOperation{
		Type:       models.OpToggleCompletion,
		OwnerID:    ownerID,
		HabitID:    habitID,
		Date:       date,
		Completed:  completed,
		EnqueuedAt: c.now(),
	})
	logger.Warn(ctx, "Backend unreachable; completion toggle queued", "habit_id", habitID, "date", date)
	return log, true, nil
}

// ApplyRemote applies a push delta. Push updates are authoritative and
// supersede optimistic state for the same entity: last applied wins.
func (c *Coordinator) ApplyRemote(ctx context.Context, ev models.ChangeEvent) {
	switch ev.Kind {
	case models.ChangeHabitUpsert:
		if ev.Habit != nil {
			c.store.UpsertHabit(*ev.Habit, store.Confirmed)
		}
	case models.ChangeHabitDelete:
		if ev.HabitID != "" {
			c.store.DeleteHabit(ev.HabitID)
		}
	case models.ChangeLogUpsert:
		if ev.Log != nil {
			c.store.UpsertLog(*ev.Log, store.Confirmed)
		}
	default:
		logger.Warn(ctx, "Unknown change event kind", "kind", string(ev.Kind))
	}
}

// SetOnline records the connectivity state; the offline-to-online flip
// drains the pending queue.
func (c *Coordinator) SetOnline(ctx context.Context, online bool) {
	c.mu.Lock()
	wasOnline := c.online
	c.online = online
	c.mu.Unlock()
	if online && !wasOnline {
		logger.Info(ctx, "Connectivity restored; replaying pending operations")
		c.Replay(ctx)
	}
}

func (c *Coordinator) enqueue(op models.PendingOperation) {
	c.mu.Lock()
	c.pending = append(c.pending, op)
	c.online = false
	c.mu.Unlock()
}

// dropPendingFor removes queued operations targeting a habit (used when the
// habit is deleted before the queue drains).
func (c *Coordinator) dropPendingFor(habitID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.pending[:0]
	for _, op := range c.pending {
		if op.HabitID == habitID {
			continue
		}
		if op.Type == models.OpCreateHabit && op.Habit != nil && op.Habit.ID == habitID {
			continue
		}
		kept = append(kept, op)
	}
	c.pending = kept
}

func (c *Coordinator) emit(ctx context.Context, ev models.ChangeEvent) {
	if c.publish == nil {
		return
	}
	ev.EmittedAt = c.now()
	c.publish(ctx, ev)
}

func applyUpdate(h *models.Habit, upd models.HabitUpdate) {
	if upd.Name != "" {
		h.Name = upd.Name
	}
	if upd.Category != "" {
		h.Category = upd.Category
	}
	if upd.Description != nil {
		h.Description = *upd.Description
	}
}

func isTempID(id string) bool {
	return len(id) > len(tempIDPrefix) && id[:len(tempIDPrefix)] == tempIDPrefix
}
