package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/srniranjan/dopamine-menu/internal"
	"github.com/srniranjan/dopamine-menu/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedActivity(t *testing.T, store *storage.MemoryStore, name, category string) *internal.Activity {
	t.Helper()
	a := &internal.Activity{Name: name, Category: category, UserID: "u1"}
	require.NoError(t, store.CreateActivity(context.Background(), a))
	return a
}

func TestTransitionSuggestions_Desserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	current := seedActivity(t, store, "Candy Crush", internal.CategoryDesserts)
	seedActivity(t, store, "Jumping jacks", internal.CategoryAppetizers)
	seedActivity(t, store, "Brisk walk", internal.CategoryEntrees)
	seedActivity(t, store, "Massage", internal.CategorySpecials)
	seedActivity(t, store, "White noise", internal.CategorySides)
	seedActivity(t, store, "Another dessert", internal.CategoryDesserts)

	got, err := TransitionSuggestions(ctx, store, current)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), 3)
	assert.NotEmpty(t, got)
	for _, a := range got {
		assert.NotEqual(t, current.ID, a.ID)
		assert.Contains(t, []string{internal.CategoryAppetizers, internal.CategoryEntrees}, a.Category)
	}
}

func TestTransitionSuggestions_UnmappedCategory(t *testing.T) {
	store := newTestStore(t)
	current := seedActivity(t, store, "Quick meditation", internal.CategorySnacks)
	seedActivity(t, store, "Brisk walk", internal.CategoryEntrees)

	got, err := TransitionSuggestions(context.Background(), store, current)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransitionSuggestions_ExcludesSelf(t *testing.T) {
	store := newTestStore(t)
	// appetizers suggest entrees and sides; the only such activity is the
	// current one, so nothing comes back
	current := seedActivity(t, store, "Stretches", internal.CategoryAppetizers)
	got, err := TransitionSuggestions(context.Background(), store, current)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSuggestActivities_LowMoodFilter(t *testing.T) {
	store := newTestStore(t)
	seedActivity(t, store, "Jumping jacks", internal.CategoryAppetizers)
	seedActivity(t, store, "White noise", internal.CategorySides)
	seedActivity(t, store, "Brisk walk", internal.CategoryEntrees)
	seedActivity(t, store, "Massage", internal.CategorySpecials)

	got, err := SuggestActivities(context.Background(), store, "u1", internal.MoodLow, false)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, a := range got {
		assert.Contains(t, []string{internal.CategoryAppetizers, internal.CategorySides}, a.Category)
	}
}

func TestSuggestActivities_HighMoodFilter(t *testing.T) {
	store := newTestStore(t)
	seedActivity(t, store, "Jumping jacks", internal.CategoryAppetizers)
	seedActivity(t, store, "Brisk walk", internal.CategoryEntrees)
	seedActivity(t, store, "Massage", internal.CategorySpecials)

	got, err := SuggestActivities(context.Background(), store, "u1", internal.MoodHigh, false)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, a := range got {
		assert.Contains(t, []string{internal.CategoryEntrees, internal.CategorySpecials}, a.Category)
	}
}

func TestSuggestActivities_LimitAndNeutralMood(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 8; i++ {
		seedActivity(t, store, "Activity", internal.CategoryEntrees)
	}
	got, err := SuggestActivities(context.Background(), store, "u1", internal.MoodNeutral, false)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestSuggestActivities_ExcludesRecentlyCompleted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var recent []*internal.Activity
	for i := 0; i < 3; i++ {
		recent = append(recent, seedActivity(t, store, "Recent", internal.CategoryAppetizers))
	}
	fresh := seedActivity(t, store, "Fresh", internal.CategoryAppetizers)

	at := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	for i, a := range recent {
		addCompletion(t, store, a.ID, at.Add(time.Duration(i)*time.Minute))
	}

	got, err := SuggestActivities(ctx, store, "u1", "", true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fresh.ID, got[0].ID)

	// without the exclusion everything is fair game again
	got, err = SuggestActivities(ctx, store, "u1", "", false)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestRandomActivity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedActivity(t, store, "Brisk walk", internal.CategoryEntrees)
	want := seedActivity(t, store, "Jumping jacks", internal.CategoryAppetizers)

	got, err := RandomActivity(ctx, store, "u1", internal.CategoryAppetizers)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)

	_, err = RandomActivity(ctx, store, "u1", internal.CategoryDesserts)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
