// Package store holds the in-process working set of habits and completion
// logs. The sync coordinator is the only writer; readers take immutable
// snapshots, which keeps the progress calculators pure and reentrant.
package store

import (
	"sort"
	"sync"

	"habitflow/internal/models"
)

// SyncState tracks an entry's reconciliation with the remote store.
type SyncState int

const (
	// Confirmed: the remote store has acknowledged this value.
	Confirmed SyncState = iota
	// OptimisticPending: applied locally while offline, awaiting replay.
	OptimisticPending
	// OptimisticFailed: replay was rejected with a permanent error.
	OptimisticFailed
)

type habitEntry struct {
	habit models.Habit
	state SyncState
}

type logEntry struct {
	log   models.CompletionLog
	state SyncState
}

// Store is the mutable working set. Zero value is not usable; call New.
type Store struct {
	mu     sync.RWMutex
	habits map[string]habitEntry // habit id -> entry
	logs   map[string]logEntry   // habit|date -> entry
}

func New() *Store {
	return &Store{
		habits: make(map[string]habitEntry),
		logs:   make(map[string]logEntry),
	}
}

// Snapshot is a read-only copy of one owner's data.
type Snapshot struct {
	Habits []models.Habit
	Logs   map[string]models.CompletionLog // keyed habit|date
}

// SnapshotFor returns a copy of everything owned by ownerID. Habits come
// back in creation order.
func (s *Store) SnapshotFor(ownerID string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Logs: make(map[string]models.CompletionLog)}
	for _, e := range s.habits {
		if e.habit.OwnerID == ownerID {
			snap.Habits = append(snap.Habits, e.habit)
		}
	}
	sort.Slice(snap.Habits, func(i, j int) bool {
		a, b := snap.Habits[i], snap.Habits[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	for k, e := range s.logs {
		if e.log.OwnerID == ownerID {
			snap.Logs[k] = e.log
		}
	}
	return snap
}

// Habit returns the habit by id, if present.
func (s *Store) Habit(id string) (models.Habit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.habits[id]
	return e.habit, ok
}

// HabitState returns the sync state for a habit.
func (s *Store) HabitState(id string) (SyncState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.habits[id]
	return e.state, ok
}

// LogState returns the sync state for a (habit, date) log.
func (s *Store) LogState(habitID, date string) (SyncState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.logs[models.LogKey(habitID, date)]
	return e.state, ok
}

// UpsertHabit stores or replaces a habit. Last applied wins.
func (s *Store) UpsertHabit(h models.Habit, state SyncState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits[h.ID] = habitEntry{habit: h, state: state}
}

// DeleteHabit removes the habit and every log under it, so status lookups
// behave as if the habit never existed.
func (s *Store) DeleteHabit(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.habits, id)
	for k, e := range s.logs {
		if e.log.HabitID == id {
			delete(s.logs, k)
		}
	}
}

// UpsertLog stores or replaces the log for its (habit, date) key. A repeat
// toggle for the same day overwrites; the key space enforces one log per day.
func (s *Store) UpsertLog(l models.CompletionLog, state SyncState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[l.Key()] = logEntry{log: l, state: state}
}

// MarkHabitFailed flags a pending habit whose replay was rejected.
func (s *Store) MarkHabitFailed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.habits[id]; ok {
		e.state = OptimisticFailed
		s.habits[id] = e
	}
}

// MarkLogFailed flags a pending log whose replay was rejected.
func (s *Store) MarkLogFailed(habitID, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := models.LogKey(habitID, date)
	if e, ok := s.logs[k]; ok {
		e.state = OptimisticFailed
		s.logs[k] = e
	}
}

// Promote replaces a temporary habit id with the authoritative habit the
// remote store returned, rewriting dependent logs to the new id.
func (s *Store) Promote(tempID string, h models.Habit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.habits, tempID)
	s.habits[h.ID] = habitEntry{habit: h, state: Confirmed}
	for k, e := range s.logs {
		if e.log.HabitID == tempID {
			delete(s.logs, k)
			e.log.HabitID = h.ID
			s.logs[e.log.Key()] = e
		}
	}
}

// ReplaceOwner swaps in a full authoritative snapshot for one owner
// (poll-source refresh and boot priming). Everything lands Confirmed.
func (s *Store) ReplaceOwner(ownerID string, habits []models.Habit, logs []models.CompletionLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.habits {
		if e.habit.OwnerID == ownerID {
			delete(s.habits, id)
		}
	}
	for k, e := range s.logs {
		if e.log.OwnerID == ownerID {
			delete(s.logs, k)
		}
	}
	for _, h := range habits {
		s.habits[h.ID] = habitEntry{habit: h, state: Confirmed}
	}
	for _, l := range logs {
		s.logs[l.Key()] = logEntry{log: l, state: Confirmed}
	}
}

// Owners lists every owner id present in the store.
func (s *Store) Owners() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, e := range s.habits {
		seen[e.habit.OwnerID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for o := range seen {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}
