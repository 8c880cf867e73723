package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/srniranjan/dopamine-menu/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *MemoryStore {
	t.Helper()
	s, err := NewMemoryStore("", time.UTC, internal.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	ctx := context.Background()

	s, err := NewMemoryStore(path, time.UTC, internal.NopLogger())
	require.NoError(t, err)

	a := &internal.Activity{Name: "Walk", Category: internal.CategoryEntrees, UserID: "u1"}
	require.NoError(t, s.CreateActivity(ctx, a))
	require.NoError(t, s.AppendLog(ctx, &internal.ActivityLog{ActivityID: a.ID, CompletedAt: time.Now()}))
	require.NoError(t, s.Close())

	reopened, err := NewMemoryStore(path, time.UTC, internal.NopLogger())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetActivity(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Walk", got.Name)

	logs, err := reopened.RecentLogs(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	// ids keep counting after a reload instead of colliding
	b := &internal.Activity{Name: "Run", Category: internal.CategoryEntrees}
	require.NoError(t, reopened.CreateActivity(ctx, b))
	assert.Greater(t, b.ID, a.ID)
}

func TestSnapshotDuringConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	ctx := context.Background()

	s, err := NewMemoryStore(path, time.UTC, internal.NopLogger())
	require.NoError(t, err)
	defer s.Close()

	a := &internal.Activity{Name: "Walk", Category: internal.CategoryEntrees, UserID: "u1"}
	require.NoError(t, s.CreateActivity(ctx, a))

	// snapshot encoding must not observe rows mid-mutation
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			assert.NoError(t, s.save())
		}
	}()
	go func() {
		defer wg.Done()
		at := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
		for i := 0; i < 50; i++ {
			assert.NoError(t, s.IncrementCompletion(ctx, a.ID, at.Add(time.Duration(i)*time.Minute)))
			assert.NoError(t, s.UpsertStats(ctx, &internal.UserStats{UserID: "u1", Date: at, DailyGoal: 3, ActivitiesCompleted: i + 1, CurrentStreak: 1, LongestStreak: 1}))
		}
	}()
	wg.Wait()

	got, err := s.GetActivity(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.CompletionCount)
}

func TestDeleteActivityCascadesLogs(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a := &internal.Activity{Name: "Walk", Category: internal.CategoryEntrees}
	require.NoError(t, s.CreateActivity(ctx, a))
	require.NoError(t, s.AppendLog(ctx, &internal.ActivityLog{ActivityID: a.ID, CompletedAt: time.Now()}))

	require.NoError(t, s.DeleteActivity(ctx, a.ID))
	logs, err := s.LogsByActivity(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	assert.True(t, errors.Is(s.DeleteActivity(ctx, a.ID), ErrNotFound))
}

func TestClearAllActivitiesKeepsStats(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	a := &internal.Activity{Name: "Walk", Category: internal.CategoryEntrees}
	require.NoError(t, s.CreateActivity(ctx, a))
	require.NoError(t, s.AppendLog(ctx, &internal.ActivityLog{ActivityID: a.ID, CompletedAt: day}))
	require.NoError(t, s.UpsertStats(ctx, &internal.UserStats{Date: day, DailyGoal: 3, ActivitiesCompleted: 1, CurrentStreak: 1, LongestStreak: 1}))

	require.NoError(t, s.ClearAllActivities(ctx))

	acts, err := s.GetActivities(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, acts)
	logs, err := s.RecentLogs(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)

	st, err := s.GetStatsByDate(ctx, "", day)
	require.NoError(t, err, "stats rows survive a full reset")
	assert.Equal(t, 1, st.LongestStreak)
}

func TestCompletionDaysDistinctDescending(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a := &internal.Activity{Name: "Walk", Category: internal.CategoryEntrees}
	require.NoError(t, s.CreateActivity(ctx, a))

	base := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{base, base.Add(2 * time.Hour), base.AddDate(0, 0, -2), base.AddDate(0, 0, -1)} {
		require.NoError(t, s.AppendLog(ctx, &internal.ActivityLog{ActivityID: a.ID, CompletedAt: at}))
	}

	days, err := s.CompletionDays(ctx)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.True(t, days[0].After(days[1]) && days[1].After(days[2]))
	assert.Equal(t, internal.DayStart(base, time.UTC), days[0])
}

func TestUpsertStats(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	first := &internal.UserStats{UserID: "u1", Date: day, DailyGoal: 3, ActivitiesCompleted: 1, CurrentStreak: 2, LongestStreak: 2}
	require.NoError(t, s.UpsertStats(ctx, first))
	assert.NotZero(t, first.ID)

	// a lower streak later the same day must not shrink the longest
	second := &internal.UserStats{UserID: "u1", Date: day, DailyGoal: 3, ActivitiesCompleted: 2, CurrentStreak: 1, LongestStreak: 1}
	require.NoError(t, s.UpsertStats(ctx, second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.ActivitiesCompleted)
	assert.Equal(t, 1, second.CurrentStreak)
	assert.Equal(t, 2, second.LongestStreak)

	// rows are per user per day
	other := &internal.UserStats{UserID: "u2", Date: day, DailyGoal: 3, CurrentStreak: 1, LongestStreak: 1}
	require.NoError(t, s.UpsertStats(ctx, other))
	assert.NotEqual(t, first.ID, other.ID)
}

func TestCreateOrGetUser(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	u, err := s.CreateOrGetUser(ctx, "subj-1", "alice", "Alice")
	require.NoError(t, err)

	again, err := s.CreateOrGetUser(ctx, "subj-1", "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	_, err = s.CreateOrGetUser(ctx, "subj-2", "alice", "Imposter")
	assert.True(t, errors.Is(err, ErrUsernameTaken))
}
