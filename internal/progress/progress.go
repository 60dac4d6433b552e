// Package progress derives streaks, day statuses and aggregate figures from
// a store snapshot. Everything here is a pure function of (snapshot, today):
// no clock reads, no store writes, safe to call from any trigger point.
package progress

import (
	"math"
	"time"

	"habitflow/internal/models"
	"habitflow/internal/store"
)

// streakWindow bounds the backward walk; a run longer than this reports the
// window size.
const streakWindow = 30

// TodayStatus reports whether the habit has a completed log for today.
// Never "future": a habit not yet acted on today counts as not completed.
func TodayStatus(snap store.Snapshot, habitID string, today time.Time) bool {
	log, ok := snap.Logs[models.LogKey(habitID, models.DateString(today))]
	return ok && log.Completed
}

// StatusFor classifies one (habit, date) cell. Future dates are unknown
// rather than missed; today reflects the live toggle state; a past day
// with no record means the habit was not done.
func StatusFor(snap store.Snapshot, habitID, date string, today time.Time) models.DayStatus {
	todayStr := models.DateString(today)
	if date > todayStr {
		return models.StatusFuture
	}
	if date == todayStr {
		if TodayStatus(snap, habitID, today) {
			return models.StatusCompleted
		}
		return models.StatusMissed
	}
	if log, ok := snap.Logs[models.LogKey(habitID, date)]; ok && log.Completed {
		return models.StatusCompleted
	}
	return models.StatusMissed
}

// Streak counts consecutive days with a completed log, walking backward
// from today. A gap on day zero breaks the run immediately: a streak is an
// unbroken run ending today, not a completion total.
func Streak(snap store.Snapshot, habitID string, today time.Time) int {
	streak := 0
	for i := 0; i < streakWindow; i++ {
		day := models.DateString(today.AddDate(0, 0, -i))
		log, ok := snap.Logs[models.LogKey(habitID, day)]
		if !ok || !log.Completed {
			break
		}
		streak++
	}
	return streak
}

// WeekStats tallies every habit over the 7 days from weekStart. Dates up to
// and including today land in completed or missed; later dates are future.
func WeekStats(snap store.Snapshot, weekStart, today time.Time) models.WeekStats {
	stats := models.WeekStats{
		TotalHabits: len(snap.Habits),
		TotalDays:   7,
	}
	for _, h := range snap.Habits {
		for i := 0; i < 7; i++ {
			date := models.DateString(weekStart.AddDate(0, 0, i))
			switch StatusFor(snap, h.ID, date, today) {
			case models.StatusCompleted:
				stats.CompletedCount++
			case models.StatusMissed:
				stats.MissedCount++
			default:
				stats.FutureCount++
			}
		}
	}
	return stats
}

// Overall summarizes every log on record for the snapshot's owner.
func Overall(snap store.Snapshot) models.OverallStats {
	stats := models.OverallStats{}
	for _, log := range snap.Logs {
		stats.TotalDays++
		if log.Completed {
			stats.TotalCompleted++
		} else {
			stats.TotalMissed++
		}
	}
	stats.SuccessRate = percentage(stats.TotalCompleted, stats.TotalDays)
	return stats
}

// Today computes the aggregate completion figure for the current date.
func Today(snap store.Snapshot, today time.Time) models.TodayProgress {
	completed := 0
	for _, h := range snap.Habits {
		if TodayStatus(snap, h.ID, today) {
			completed++
		}
	}
	return models.TodayProgress{
		Completed:  completed,
		Total:      len(snap.Habits),
		Percentage: percentage(completed, len(snap.Habits)),
		Date:       models.DateString(today),
	}
}

// Summaries enriches each habit with its streak and completion totals, the
// shape the habit list endpoint returns.
func Summaries(snap store.Snapshot, today time.Time) []models.HabitSummary {
	out := make([]models.HabitSummary, 0, len(snap.Habits))
	for _, h := range snap.Habits {
		s := models.HabitSummary{Habit: h, Streak: Streak(snap, h.ID, today)}
		for _, log := range snap.Logs {
			if log.HabitID != h.ID {
				continue
			}
			if log.Completed {
				s.TotalCompleted++
			} else {
				s.TotalMissed++
			}
		}
		out = append(out, s)
	}
	return out
}

// percentage returns round(part/total*100), and 0 when total is 0.
func percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
