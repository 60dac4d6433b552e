package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitflow/internal/gateway"
	"habitflow/internal/hub"
	"habitflow/internal/models"
	"habitflow/internal/store"
	"habitflow/internal/syncer"
)

var testToday = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

var userSeq atomic.Int64

// nextUser returns a fresh owner id so cached responses never leak between
// tests when a local Redis happens to be running.
func nextUser() string {
	return fmt.Sprintf("user-%d", userSeq.Add(1))
}

// memGateway is an in-memory Gateway whose reachability can be flipped.
type memGateway struct {
	mu      sync.Mutex
	offline bool
	habits  map[string]models.Habit
	logs    map[string]models.CompletionLog
	nextID  int
}

func newMemGateway() *memGateway {
	return &memGateway{
		habits: make(map[string]models.Habit),
		logs:   make(map[string]models.CompletionLog),
	}
}

func (f *memGateway) setOffline(offline bool) {
	f.mu.Lock()
	f.offline = offline
	f.mu.Unlock()
}

func (f *memGateway) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *memGateway) ListHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, gateway.ErrUnavailable
	}
	var out []models.Habit
	for _, h := range f.habits {
		if h.OwnerID == ownerID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *memGateway) CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return models.Habit{}, gateway.ErrUnavailable
	}
	if habit.ID == "" {
		habit.ID = f.id("srv")
	}
	habit.CreatedAt = testToday
	habit.UpdatedAt = testToday
	f.habits[habit.ID] = habit
	return habit, nil
}

func (f *memGateway) UpdateHabit(ctx context.Context, id, ownerID string, upd models.HabitUpdate) (models.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return models.Habit{}, gateway.ErrUnavailable
	}
	h, ok := f.habits[id]
	if !ok || h.OwnerID != ownerID {
		return models.Habit{}, gateway.ErrNotFound
	}
	if upd.Name != "" {
		h.Name = upd.Name
	}
	if upd.Category != "" {
		h.Category = upd.Category
	}
	if upd.Description != nil {
		h.Description = *upd.Description
	}
	f.habits[id] = h
	return h, nil
}

func (f *memGateway) DeleteHabit(ctx context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return gateway.ErrUnavailable
	}
	h, ok := f.habits[id]
	if !ok || h.OwnerID != ownerID {
		return gateway.ErrNotFound
	}
	delete(f.habits, id)
	for k, l := range f.logs {
		if l.HabitID == id {
			delete(f.logs, k)
		}
	}
	return nil
}

func (f *memGateway) ListLogs(ctx context.Context, ownerID string) ([]models.CompletionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, gateway.ErrUnavailable
	}
	out := []models.CompletionLog{}
	for _, l := range f.logs {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *memGateway) ListLogsInRange(ctx context.Context, ownerID, start, end string) ([]models.CompletionLog, error) {
	logs, err := f.ListLogs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := []models.CompletionLog{}
	for _, l := range logs {
		if l.Date >= start && l.Date <= end {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *memGateway) UpsertCompletion(ctx context.Context, habitID, date string, completed bool, ownerID string) (models.CompletionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return models.CompletionLog{}, gateway.ErrUnavailable
	}
	if _, ok := f.habits[habitID]; !ok {
		return models.CompletionLog{}, gateway.ErrNotFound
	}
	key := models.LogKey(habitID, date)
	log, ok := f.logs[key]
	if !ok {
		log = models.CompletionLog{ID: f.id("log"), HabitID: habitID, Date: date, OwnerID: ownerID}
	}
	log.Completed = completed
	log.UpdatedAt = testToday
	f.logs[key] = log
	return log, nil
}

func (f *memGateway) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return gateway.ErrUnavailable
	}
	return nil
}

// newTestServer wires a router around the fake gateway with the auth
// middleware replaced by a stub that injects a fresh user id.
func newTestServer(t *testing.T) (*gin.Engine, *memGateway, *syncer.Coordinator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gw := newMemGateway()
	co := syncer.New(gw, store.New(), syncer.WithClock(func() time.Time { return testToday }))
	ctl := New(co, gw, nil, hub.New())

	uid := nextUser()
	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set("user", uid)
		c.Next()
	})
	api.GET("/habits", ctl.ListHabits)
	api.POST("/habits", ctl.CreateHabit)
	api.PUT("/habits/:id", ctl.UpdateHabit)
	api.DELETE("/habits/:id", ctl.DeleteHabit)
	api.POST("/habits/:id/complete", ctl.CompleteHabit)
	api.GET("/habits/:id/completion", ctl.HabitCompletion)
	api.GET("/habit-logs", ctl.Logs)
	api.GET("/today-progress", ctl.TodayProgress)
	return r, gw, co
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createHabit(t *testing.T, r *gin.Engine) models.Habit {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/habits", models.HabitInput{
		Name: "Fajr Namaz", Category: models.CategoryNamaz,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var h models.Habit
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	return h
}

func TestCreateHabit_Created(t *testing.T) {
	r, _, _ := newTestServer(t)
	h := createHabit(t, r)
	assert.NotEmpty(t, h.ID)
	assert.NotEmpty(t, h.OwnerID)
}

func TestCreateHabit_InvalidCategory(t *testing.T) {
	r, gw, _ := newTestServer(t)
	w := doJSON(t, r, http.MethodPost, "/api/habits", models.HabitInput{
		Name: "Stretch", Category: "hourly",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	gw.mu.Lock()
	assert.Empty(t, gw.habits)
	gw.mu.Unlock()
}

func TestCreateHabit_OfflineQueued(t *testing.T) {
	r, gw, co := newTestServer(t)
	gw.setOffline(true)

	w := doJSON(t, r, http.MethodPost, "/api/habits", models.HabitInput{
		Name: "Quran Reading", Category: models.CategoryQuran,
	})
	assert.Equal(t, http.StatusAccepted, w.Code)
	var h models.Habit
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	assert.Contains(t, h.ID, "tmp-")
	assert.Len(t, co.Pending(), 1)
}

func TestListHabits_SummariesIncludeStreak(t *testing.T) {
	r, _, _ := newTestServer(t)
	h := createHabit(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/habits/"+h.ID+"/complete", gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/habits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out []models.HabitSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Streak)
	assert.Equal(t, 1, out[0].TotalCompleted)
}

func TestListHabits_OfflineServesOptimisticState(t *testing.T) {
	r, gw, _ := newTestServer(t)
	gw.setOffline(true)

	w := doJSON(t, r, http.MethodPost, "/api/habits", models.HabitInput{
		Name: "Morning Zikr", Category: models.CategoryZikr,
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/habits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out []models.HabitSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Morning Zikr", out[0].Name)
}

func TestUpdateHabit_NotFound(t *testing.T) {
	r, _, _ := newTestServer(t)
	w := doJSON(t, r, http.MethodPut, "/api/habits/nope", gin.H{"name": "Renamed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteHabit_RemovesLogs(t *testing.T) {
	r, gw, _ := newTestServer(t)
	h := createHabit(t, r)
	w := doJSON(t, r, http.MethodPost, "/api/habits/"+h.ID+"/complete", gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/habits/"+h.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	gw.mu.Lock()
	assert.Empty(t, gw.habits)
	assert.Empty(t, gw.logs)
	gw.mu.Unlock()
}

func TestDeleteHabit_NotFound(t *testing.T) {
	r, _, _ := newTestServer(t)
	w := doJSON(t, r, http.MethodDelete, "/api/habits/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompleteHabit_DefaultsToToday(t *testing.T) {
	r, _, _ := newTestServer(t)
	h := createHabit(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/habits/"+h.ID+"/complete", gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)
	var log models.CompletionLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &log))
	assert.Equal(t, "2024-06-10", log.Date)
	assert.True(t, log.Completed)
}

func TestCompleteHabit_RejectsFutureDate(t *testing.T) {
	r, gw, _ := newTestServer(t)
	h := createHabit(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/habits/"+h.ID+"/complete",
		gin.H{"completed": true, "date": "2024-06-11"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	gw.mu.Lock()
	assert.Empty(t, gw.logs)
	gw.mu.Unlock()
}

func TestCompleteHabit_UpsertsSameDay(t *testing.T) {
	r, gw, _ := newTestServer(t)
	h := createHabit(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/habits/"+h.ID+"/complete", gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/habits/"+h.ID+"/complete", gin.H{"completed": false})
	require.Equal(t, http.StatusOK, w.Code)

	gw.mu.Lock()
	require.Len(t, gw.logs, 1)
	for _, l := range gw.logs {
		assert.False(t, l.Completed)
	}
	gw.mu.Unlock()
}

func TestCompleteHabit_OfflineAccepted(t *testing.T) {
	r, gw, co := newTestServer(t)
	h := createHabit(t, r)
	gw.setOffline(true)

	w := doJSON(t, r, http.MethodPost, "/api/habits/"+h.ID+"/complete", gin.H{"completed": true})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Len(t, co.Pending(), 1)
}

func TestLogs_RangeFilter(t *testing.T) {
	r, _, _ := newTestServer(t)
	h := createHabit(t, r)
	for _, date := range []string{"2024-06-08", "2024-06-09", "2024-06-10"} {
		w := doJSON(t, r, http.MethodPost, "/api/habits/"+h.ID+"/complete",
			gin.H{"completed": true, "date": date})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/habit-logs?startDate=2024-06-09&endDate=2024-06-10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []models.CompletionLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	assert.Len(t, logs, 2)
}

func TestLogs_InvalidRange(t *testing.T) {
	r, _, _ := newTestServer(t)
	w := doJSON(t, r, http.MethodGet, "/api/habit-logs?startDate=junk&endDate=2024-06-10", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHabitCompletion_FiltersByHabit(t *testing.T) {
	r, _, _ := newTestServer(t)
	first := createHabit(t, r)
	second := createHabit(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/habits/"+first.ID+"/complete", gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/habits/"+second.ID+"/complete", gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/habits/"+first.ID+"/completion", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []models.CompletionLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, first.ID, logs[0].HabitID)
}

func TestTodayProgress_WorkedExample(t *testing.T) {
	r, _, _ := newTestServer(t)
	h := createHabit(t, r)
	w := doJSON(t, r, http.MethodPost, "/api/habits/"+h.ID+"/complete", gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/today-progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out models.TodayProgress
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Completed)
	assert.Equal(t, 1, out.Total)
	assert.Equal(t, 100, out.Percentage)
	assert.Equal(t, "2024-06-10", out.Date)
}

func TestTodayProgress_NoHabits(t *testing.T) {
	r, _, _ := newTestServer(t)
	w := doJSON(t, r, http.MethodGet, "/api/today-progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out models.TodayProgress
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 0, out.Total)
	assert.Equal(t, 0, out.Percentage)
}
