package service

import (
	"context"
	"errors"
	"time"

	"github.com/srniranjan/dopamine-menu/internal"
	"github.com/srniranjan/dopamine-menu/internal/storage"
)

// Mood is free-form: the suggestion filter only recognizes low/high, but
// completions record whatever the client sent.
type CompleteRequest struct {
	Duration int    `json:"duration" validate:"omitempty,gte=0"`
	Mood     string `json:"mood"`
}

func ValidateCompleteRequest(req *CompleteRequest) error {
	return validate.Struct(req)
}

// CompleteActivity records one completion: bump the activity's counter,
// append a log row, then refresh today's stats. There is no transaction
// across the three writes; a failure part-way leaves the earlier writes in
// place and the caller reports a generic failure.
func CompleteActivity(ctx context.Context, store storage.Store, activityID int64, req *CompleteRequest, userID string, now time.Time, loc *time.Location) error {
	if _, err := store.GetActivity(ctx, activityID); err != nil {
		return err // not-found aborts before any mutation
	}
	if err := store.IncrementCompletion(ctx, activityID, now); err != nil {
		return err
	}
	if err := store.AppendLog(ctx, &internal.ActivityLog{
		ActivityID:  activityID,
		UserID:      userID,
		CompletedAt: now,
		Duration:    req.Duration,
		Mood:        req.Mood,
	}); err != nil {
		return err
	}
	_, err := UpdateStats(ctx, store, userID, now, loc)
	return err
}

// CalculateStreak counts consecutive calendar days with at least one
// completion, walking backward from today. A streak that has not started
// today may still start from yesterday; the first gap ends the walk.
func CalculateStreak(ctx context.Context, logs storage.LogRepository, now time.Time, loc *time.Location) (int, error) {
	days, err := logs.CompletionDays(ctx)
	if err != nil {
		return 0, err
	}
	today := internal.DayStart(now, loc)

	streak := 0
	for _, day := range days {
		diff := daysBetween(today, day)
		if diff == streak {
			streak++
		} else if diff == streak+1 && streak == 0 {
			// nothing yet today, but yesterday counts
			streak++
		} else {
			break
		}
	}
	return streak, nil
}

// daysBetween counts whole calendar days from earlier to later. Both are
// renormalized to UTC midnights first so DST transitions cannot skew the
// division.
func daysBetween(later, earlier time.Time) int {
	l := time.Date(later.Year(), later.Month(), later.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(earlier.Year(), earlier.Month(), earlier.Day(), 0, 0, 0, 0, time.UTC)
	return int(l.Sub(e) / (24 * time.Hour))
}

// UpdateStats recomputes today's row from the log and upserts it. The
// longest streak is monotone: the backend keeps the maximum on conflict.
func UpdateStats(ctx context.Context, store storage.Store, userID string, now time.Time, loc *time.Location) (*internal.UserStats, error) {
	today := internal.DayStart(now, loc)
	tomorrow := today.AddDate(0, 0, 1)

	completed, err := store.CountCompletedBetween(ctx, today, tomorrow)
	if err != nil {
		return nil, err
	}
	streak, err := CalculateStreak(ctx, store, now, loc)
	if err != nil {
		return nil, err
	}

	stats := &internal.UserStats{
		UserID:              userID,
		Date:                today,
		DailyGoal:           internal.DefaultDailyGoal,
		ActivitiesCompleted: completed,
		CurrentStreak:       streak,
		LongestStreak:       streak,
	}
	if existing, err := store.GetStatsByDate(ctx, userID, today); err == nil {
		stats.DailyGoal = existing.DailyGoal
		if existing.LongestStreak > stats.LongestStreak {
			stats.LongestStreak = existing.LongestStreak
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if err := store.UpsertStats(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetUserStats returns today's row, or the zero-progress default when no
// completion has happened yet today.
func GetUserStats(ctx context.Context, stats storage.StatsRepository, userID string, now time.Time, loc *time.Location) (*internal.UserStats, error) {
	today := internal.DayStart(now, loc)
	st, err := stats.GetStatsByDate(ctx, userID, today)
	if errors.Is(err, storage.ErrNotFound) {
		def := internal.DefaultUserStats(userID)
		def.Date = today
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}
