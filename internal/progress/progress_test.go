package progress

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitflow/internal/models"
	"habitflow/internal/store"
)

const owner = "user-1"

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func habit(id string) models.Habit {
	return models.Habit{ID: id, Name: "Habit " + id, Category: models.CategoryNamaz, OwnerID: owner}
}

func log(habitID, date string, completed bool) models.CompletionLog {
	return models.CompletionLog{
		ID:        habitID + "_" + date,
		HabitID:   habitID,
		Date:      date,
		Completed: completed,
		OwnerID:   owner,
	}
}

func snapshot(habits []models.Habit, logs []models.CompletionLog) store.Snapshot {
	s := store.New()
	for _, h := range habits {
		s.UpsertHabit(h, store.Confirmed)
	}
	for _, l := range logs {
		s.UpsertLog(l, store.Confirmed)
	}
	return s.SnapshotFor(owner)
}

func TestTodayProgress_NoHabitsIsZeroPercent(t *testing.T) {
	snap := snapshot(nil, nil)
	got := Today(snap, day("2024-06-10"))
	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 0, got.Completed)
	assert.Equal(t, 0, got.Percentage)
}

func TestTodayProgress_SingleHabitCompleted(t *testing.T) {
	today := day("2024-06-10")
	snap := snapshot(
		[]models.Habit{habit("1")},
		[]models.CompletionLog{log("1", "2024-06-10", true)},
	)
	got := Today(snap, today)
	assert.Equal(t, models.TodayProgress{Completed: 1, Total: 1, Percentage: 100, Date: "2024-06-10"}, got)
}

func TestTodayProgress_Rounding(t *testing.T) {
	today := day("2024-06-10")
	snap := snapshot(
		[]models.Habit{habit("1"), habit("2"), habit("3")},
		[]models.CompletionLog{log("1", "2024-06-10", true)},
	)
	got := Today(snap, today)
	assert.Equal(t, 33, got.Percentage)
}

func TestStreak_UnbrokenRunEndingToday(t *testing.T) {
	today := day("2024-06-10")
	// Completed today and the 4 days before, gap on day 5.
	var logs []models.CompletionLog
	for i := 0; i < 5; i++ {
		logs = append(logs, log("1", models.DateString(today.AddDate(0, 0, -i)), true))
	}
	snap := snapshot([]models.Habit{habit("1")}, logs)
	assert.Equal(t, 5, Streak(snap, "1", today))
}

func TestStreak_GapTodayYieldsZero(t *testing.T) {
	// Yesterday done, today missing: the run is broken even with history.
	snap := snapshot(
		[]models.Habit{habit("1")},
		[]models.CompletionLog{log("1", "2024-06-09", true)},
	)
	assert.Equal(t, 0, Streak(snap, "1", day("2024-06-10")))
}

func TestStreak_IncompleteLogBreaksRun(t *testing.T) {
	snap := snapshot(
		[]models.Habit{habit("1")},
		[]models.CompletionLog{
			log("1", "2024-06-10", true),
			log("1", "2024-06-09", false), // explicit miss
			log("1", "2024-06-08", true),
		},
	)
	assert.Equal(t, 1, Streak(snap, "1", day("2024-06-10")))
}

func TestStreak_CapsAtWindow(t *testing.T) {
	today := day("2024-06-10")
	var logs []models.CompletionLog
	for i := 0; i < 40; i++ {
		logs = append(logs, log("1", models.DateString(today.AddDate(0, 0, -i)), true))
	}
	snap := snapshot([]models.Habit{habit("1")}, logs)
	assert.Equal(t, 30, Streak(snap, "1", today))
}

func TestStatusFor(t *testing.T) {
	today := day("2024-06-10")
	snap := snapshot(
		[]models.Habit{habit("1")},
		[]models.CompletionLog{
			log("1", "2024-06-08", true),
			log("1", "2024-06-07", false),
		},
	)
	tests := []struct {
		date string
		want models.DayStatus
	}{
		{"2024-06-11", models.StatusFuture},    // strictly after today
		{"2024-06-10", models.StatusMissed},    // today, nothing logged yet
		{"2024-06-09", models.StatusMissed},    // past, no record
		{"2024-06-08", models.StatusCompleted}, // past, completed
		{"2024-06-07", models.StatusMissed},    // past, explicit miss
	}
	for _, tc := range tests {
		t.Run(tc.date, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(snap, "1", tc.date, today))
		})
	}
}

func TestStatusFor_TodayReflectsLiveToggle(t *testing.T) {
	today := day("2024-06-10")
	s := store.New()
	s.UpsertHabit(habit("1"), store.Confirmed)
	s.UpsertLog(log("1", "2024-06-10", true), store.OptimisticPending)
	snap := s.SnapshotFor(owner)
	assert.Equal(t, models.StatusCompleted, StatusFor(snap, "1", "2024-06-10", today))
}

func TestWeekStats_TallyInvariant(t *testing.T) {
	// Week of Mon 2024-06-03 .. Sun 2024-06-09, with "today" mid-week.
	weekStart := day("2024-06-03")
	tests := []struct {
		name        string
		today       time.Time
		elapsedDays int
	}{
		{"today before week end", day("2024-06-05"), 3},
		{"today is week end", day("2024-06-09"), 7},
		{"today after week end", day("2024-06-15"), 7},
	}
	habits := []models.Habit{habit("1"), habit("2")}
	logs := []models.CompletionLog{
		log("1", "2024-06-03", true),
		log("2", "2024-06-04", false),
		log("1", "2024-06-05", true),
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := snapshot(habits, logs)
			got := WeekStats(snap, weekStart, tc.today)
			assert.Equal(t, len(habits)*tc.elapsedDays, got.CompletedCount+got.MissedCount)
			assert.Equal(t, len(habits)*7, got.CompletedCount+got.MissedCount+got.FutureCount)
		})
	}
}

func TestWeekStats_TodayWithNoLogCountsMissed(t *testing.T) {
	weekStart := day("2024-06-03")
	today := day("2024-06-03")
	snap := snapshot([]models.Habit{habit("1")}, nil)
	got := WeekStats(snap, weekStart, today)
	assert.Equal(t, 0, got.CompletedCount)
	assert.Equal(t, 1, got.MissedCount)
	assert.Equal(t, 6, got.FutureCount)
}

func TestOverall(t *testing.T) {
	snap := snapshot(
		[]models.Habit{habit("1")},
		[]models.CompletionLog{
			log("1", "2024-06-08", true),
			log("1", "2024-06-09", true),
			log("1", "2024-06-10", false),
		},
	)
	got := Overall(snap)
	assert.Equal(t, models.OverallStats{TotalCompleted: 2, TotalMissed: 1, TotalDays: 3, SuccessRate: 67}, got)
}

func TestOverall_EmptyHasZeroRate(t *testing.T) {
	got := Overall(snapshot(nil, nil))
	assert.Equal(t, 0, got.SuccessRate)
}

func TestSummaries(t *testing.T) {
	today := day("2024-06-10")
	snap := snapshot(
		[]models.Habit{habit("1"), habit("2")},
		[]models.CompletionLog{
			log("1", "2024-06-10", true),
			log("1", "2024-06-09", true),
			log("1", "2024-06-05", false),
			log("2", "2024-06-01", true),
		},
	)
	got := Summaries(snap, today)
	require.Len(t, got, 2)
	byID := make(map[string]models.HabitSummary)
	for _, s := range got {
		byID[s.ID] = s
	}
	assert.Equal(t, 2, byID["1"].Streak)
	assert.Equal(t, 2, byID["1"].TotalCompleted)
	assert.Equal(t, 1, byID["1"].TotalMissed)
	assert.Equal(t, 0, byID["2"].Streak)
	assert.Equal(t, 1, byID["2"].TotalCompleted)
}

func TestDeletedHabitLeavesNoTrace(t *testing.T) {
	today := day("2024-06-10")
	s := store.New()
	s.UpsertHabit(habit("1"), store.Confirmed)
	s.UpsertLog(log("1", "2024-06-10", true), store.Confirmed)
	s.UpsertLog(log("1", "2024-06-09", true), store.Confirmed)
	s.DeleteHabit("1")

	snap := s.SnapshotFor(owner)
	assert.Empty(t, snap.Habits)
	assert.Empty(t, snap.Logs)
	assert.Equal(t, 0, Streak(snap, "1", today))
	assert.Equal(t, models.StatusMissed, StatusFor(snap, "1", "2024-06-09", today))
	assert.False(t, TodayStatus(snap, "1", today))
}

func TestPercentageMatchesRoundFormula(t *testing.T) {
	for _, tc := range []struct{ part, total, want int }{
		{0, 0, 0}, {1, 3, 33}, {2, 3, 67}, {1, 2, 50}, {3, 3, 100}, {1, 8, 13},
	} {
		t.Run(fmt.Sprintf("%d/%d", tc.part, tc.total), func(t *testing.T) {
			assert.Equal(t, tc.want, percentage(tc.part, tc.total))
		})
	}
}
