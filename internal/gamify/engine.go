// Package gamify computes streaks, points and levels from completed
// workouts. Everything here is pure calculation over AlunoStats; reading
// and writing the aggregate is the caller's concern.
package gamify

import (
	"math"
	"time"

	"fitlink/coach-app/internal/domain"
)

// Point awards.
const (
	BasePoints   = 50 // Any completed workout
	RecordPoints = 30 // Additional when a new record (streak or duration) is set
)

// Streak bonus thresholds. The highest threshold met applies; bonuses do
// not accumulate across thresholds.
var streakBonuses = []struct {
	MinStreak int
	Points    int
}{
	{30, 100},
	{14, 40},
	{7, 20},
	{3, 10},
}

// RecordKind identifies which record badge, if any, a completion earned.
// At most one badge is surfaced per completion; streak takes priority
// over duration when both records fall on the same workout.
type RecordKind string

const (
	RecordNone     RecordKind = ""
	RecordStreak   RecordKind = "streak"
	RecordDuration RecordKind = "duration"
)

// CompletionResult is the outcome of processing one completed workout.
type CompletionResult struct {
	PointsAwarded int               // Total points this completion earned
	StreakBonus   int               // Portion of PointsAwarded from the streak step bonus
	NewRecord     RecordKind        // Badge to surface, if any
	Updated       domain.AlunoStats // The aggregate after this completion
}

// ProcessCompletion derives the updated aggregate for one completed
// workout. It is total: any well-typed input yields a result, no errors.
// The function has no I/O; persisting Updated (and retrying on transient
// failure) is the caller's responsibility. Invoked once per completed
// workout: a second workout on the same calendar day earns base points
// again but never double-increments the streak.
func ProcessCompletion(prior domain.AlunoStats, completedAt time.Time, durationMinutes int) CompletionResult {
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	day := startOfDay(completedAt)

	updated := prior
	updated.CurrentStreak = nextStreak(prior.CurrentStreak, prior.LastWorkoutDate, day)

	record := RecordNone
	if updated.CurrentStreak > prior.LongestStreak {
		record = RecordStreak
		updated.LongestStreak = updated.CurrentStreak
	} else if durationMinutes > prior.LongestWorkoutMinutes {
		record = RecordDuration
	}
	// Duration record tracking is independent of which badge is surfaced.
	if durationMinutes > updated.LongestWorkoutMinutes {
		updated.LongestWorkoutMinutes = durationMinutes
	}

	bonus := streakBonusFor(updated.CurrentStreak)
	awarded := BasePoints + bonus
	if record != RecordNone {
		awarded += RecordPoints
	}

	updated.TotalPoints += awarded
	updated.CurrentLevel = domain.LevelFor(updated.TotalPoints)
	updated.TotalWorkouts++
	updated.TotalMinutes += durationMinutes
	updated.LastWorkoutDate = &day

	return CompletionResult{
		PointsAwarded: awarded,
		StreakBonus:   bonus,
		NewRecord:     record,
		Updated:       updated,
	}
}

// nextStreak applies the day-granularity streak transition:
// same day → unchanged, next day → +1, any other gap (including a first
// ever workout) → reset to 1.
func nextStreak(current int, last *time.Time, day time.Time) int {
	if last == nil {
		return 1
	}
	switch daysBetween(startOfDay(*last), day) {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}

// streakBonusFor returns the step bonus for the updated streak value.
func streakBonusFor(streak int) int {
	for _, b := range streakBonuses {
		if streak >= b.MinStreak {
			return b.Points
		}
	}
	return 0
}

// startOfDay truncates t to local midnight. Streaks count calendar days,
// not 24h windows.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b (both already at midnight).
// Rounding absorbs the 23h/25h days around DST transitions.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
