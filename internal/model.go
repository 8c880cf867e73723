package internal

import "time"

// Category names follow the menu metaphor from the product: quick boosts are
// appetizers, substantial activities are entrees, and so on.
const (
	CategoryAppetizers = "appetizers"
	CategoryEntrees    = "entrees"
	CategorySnacks     = "snacks"
	CategoryDesserts   = "desserts"
	CategorySides      = "sides"
	CategorySpecials   = "specials"
)

var Categories = []string{
	CategoryAppetizers,
	CategoryEntrees,
	CategorySnacks,
	CategoryDesserts,
	CategorySides,
	CategorySpecials,
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Mood reported by the user at completion time.
const (
	MoodLow     = "low"
	MoodNeutral = "neutral"
	MoodHigh    = "high"
)

type User struct {
	ID        int64  `json:"id"`
	SubjectID string `json:"subject_id"` // identity-provider subject, unique
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
}

type Activity struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	Description     string     `json:"description,omitempty"`
	Duration        int        `json:"duration,omitempty"` // minutes
	UserID          string     `json:"user_id,omitempty"`  // owner subject, empty for shared seeds
	CompletionCount int        `json:"completion_count"`
	LastCompleted   *time.Time `json:"last_completed,omitempty"`
	Emoji           string     `json:"emoji,omitempty"`
}

// ActivityLog is an append-only record of one completion. Rows are never
// updated; they disappear only when the parent activity is deleted.
type ActivityLog struct {
	ID          int64     `json:"id"`
	ActivityID  int64     `json:"activity_id"`
	UserID      string    `json:"user_id,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
	Duration    int       `json:"duration,omitempty"`
	Mood        string    `json:"mood,omitempty"`
}

// UserStats is the per-user per-calendar-day aggregate. Date carries the
// midnight-truncated day; LongestStreak never decreases for a given user.
type UserStats struct {
	ID                  int64     `json:"id"`
	UserID              string    `json:"user_id,omitempty"`
	Date                time.Time `json:"date"`
	DailyGoal           int       `json:"daily_goal"`
	ActivitiesCompleted int       `json:"activities_completed"`
	CurrentStreak       int       `json:"current_streak"`
	LongestStreak       int       `json:"longest_streak"`
}

const DefaultDailyGoal = 3

// DefaultUserStats is what callers see before any completion exists today.
func DefaultUserStats(userID string) UserStats {
	return UserStats{
		UserID:    userID,
		DailyGoal: DefaultDailyGoal,
	}
}

type Menu struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	UserID      string  `json:"user_id,omitempty"`
	ActivityIDs []int64 `json:"activities"`
}
