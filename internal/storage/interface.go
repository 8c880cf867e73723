package storage

import (
	"context"
	"errors"
	"time"

	"github.com/srniranjan/dopamine-menu/internal"
)

var (
	ErrNotFound      = errors.New("storage: not found")
	ErrUsernameTaken = errors.New("storage: username already exists")
)

type ActivityRepository interface {
	GetActivities(ctx context.Context, userID string) ([]internal.Activity, error)
	GetActivity(ctx context.Context, id int64) (*internal.Activity, error)
	CreateActivity(ctx context.Context, a *internal.Activity) error
	CreateActivities(ctx context.Context, as []*internal.Activity) error
	UpdateActivity(ctx context.Context, a *internal.Activity) error
	DeleteActivity(ctx context.Context, id int64) error
	// ClearAllActivities removes every activity and completion log.
	// Stats rows are left in place; the next completion recomputes them.
	ClearAllActivities(ctx context.Context) error
	// IncrementCompletion bumps the completion counter and stamps
	// last_completed for one activity.
	IncrementCompletion(ctx context.Context, id int64, at time.Time) error
}

type LogRepository interface {
	AppendLog(ctx context.Context, log *internal.ActivityLog) error
	LogsByActivity(ctx context.Context, activityID int64) ([]internal.ActivityLog, error)
	RecentLogs(ctx context.Context, limit int) ([]internal.ActivityLog, error)
	// CompletionDays returns the distinct calendar days (midnight
	// timestamps) holding at least one completion, most recent first.
	CompletionDays(ctx context.Context) ([]time.Time, error)
	CountCompletedBetween(ctx context.Context, start, end time.Time) (int, error)
}

type StatsRepository interface {
	GetStatsByDate(ctx context.Context, userID string, day time.Time) (*internal.UserStats, error)
	// UpsertStats writes the row for (user, day) atomically. On conflict
	// longest_streak keeps its maximum, so the row's invariant survives
	// racing writers. The stored row is written back into stats.
	UpsertStats(ctx context.Context, stats *internal.UserStats) error
}

type MenuRepository interface {
	GetMenus(ctx context.Context) ([]internal.Menu, error)
	GetMenu(ctx context.Context, id int64) (*internal.Menu, error)
	CreateMenu(ctx context.Context, m *internal.Menu) error
	UpdateMenu(ctx context.Context, m *internal.Menu) error
	DeleteMenu(ctx context.Context, id int64) error
}

type UserRepository interface {
	GetUserBySubject(ctx context.Context, subject string) (*internal.User, error)
	GetUserByUsername(ctx context.Context, username string) (*internal.User, error)
	// CreateOrGetUser resolves a federation subject to a local user row,
	// creating or claiming one as needed. Returns ErrUsernameTaken when the
	// username belongs to a different subject.
	CreateOrGetUser(ctx context.Context, subject, username, name string) (*internal.User, error)
}

// Store bundles every repository behind one handle.
type Store interface {
	ActivityRepository
	LogRepository
	StatsRepository
	MenuRepository
	UserRepository
	Close() error
}
