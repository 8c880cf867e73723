package service

import (
	"context"
	"math/rand"

	"github.com/srniranjan/dopamine-menu/internal"
	"github.com/srniranjan/dopamine-menu/internal/storage"
)

const (
	suggestionLimit   = 5
	transitionLimit   = 3
	recentExcludeSize = 3
)

// moodCategories narrows suggestions by reported energy: low-energy users
// get quick boosts and background stimulation, high-energy users get the
// substantial stuff. Neutral or unknown moods see everything.
var moodCategories = map[string][]string{
	internal.MoodLow:  {internal.CategoryAppetizers, internal.CategorySides},
	internal.MoodHigh: {internal.CategoryEntrees, internal.CategorySpecials},
}

// categoryTransitions proposes what to do after finishing an activity of a
// given category. Categories without an entry (snacks) get no suggestions.
var categoryTransitions = map[string][]string{
	internal.CategoryAppetizers: {internal.CategoryEntrees, internal.CategorySides},
	internal.CategoryEntrees:    {internal.CategoryDesserts, internal.CategorySides, internal.CategoryAppetizers},
	internal.CategorySides:      {internal.CategoryAppetizers, internal.CategoryEntrees},
	internal.CategoryDesserts:   {internal.CategoryAppetizers, internal.CategoryEntrees},
	internal.CategorySpecials:   {internal.CategoryAppetizers, internal.CategorySides},
}

// SuggestActivities picks up to five candidates, optionally filtered by
// mood and with the three most recently completed activities excluded, and
// returns them in random order.
func SuggestActivities(ctx context.Context, store storage.Store, userID, mood string, excludeRecent bool) ([]internal.Activity, error) {
	exclude := map[int64]bool{}
	if excludeRecent {
		recent, err := store.RecentLogs(ctx, recentExcludeSize)
		if err != nil {
			return nil, err
		}
		for _, l := range recent {
			exclude[l.ActivityID] = true
		}
	}

	candidates, err := store.GetActivities(ctx, userID)
	if err != nil {
		return nil, err
	}

	allowed := moodCategories[mood] // nil means no filter
	picks := []internal.Activity{}
	for _, a := range candidates {
		if exclude[a.ID] {
			continue
		}
		if allowed != nil && !contains(allowed, a.Category) {
			continue
		}
		picks = append(picks, a)
		if len(picks) == suggestionLimit {
			break
		}
	}

	rand.Shuffle(len(picks), func(i, j int) {
		picks[i], picks[j] = picks[j], picks[i]
	})
	return picks, nil
}

// TransitionSuggestions returns up to three follow-up activities from the
// categories that pair with the one just completed. The finished activity
// itself never appears; order is not randomized.
func TransitionSuggestions(ctx context.Context, activities storage.ActivityRepository, current *internal.Activity) ([]internal.Activity, error) {
	next := categoryTransitions[current.Category]
	if len(next) == 0 {
		return []internal.Activity{}, nil
	}

	all, err := activities.GetActivities(ctx, current.UserID)
	if err != nil {
		return nil, err
	}

	picks := []internal.Activity{}
	for _, a := range all {
		if a.ID == current.ID {
			continue
		}
		if !contains(next, a.Category) {
			continue
		}
		picks = append(picks, a)
		if len(picks) == transitionLimit {
			break
		}
	}
	return picks, nil
}

// RandomActivity draws uniformly from the caller's activities, optionally
// restricted to one category.
func RandomActivity(ctx context.Context, activities storage.ActivityRepository, userID, category string) (*internal.Activity, error) {
	all, err := activities.GetActivities(ctx, userID)
	if err != nil {
		return nil, err
	}
	pool := all
	if category != "" {
		pool = nil
		for _, a := range all {
			if a.Category == category {
				pool = append(pool, a)
			}
		}
	}
	if len(pool) == 0 {
		return nil, storage.ErrNotFound
	}
	pick := pool[rand.Intn(len(pool))]
	return &pick, nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
