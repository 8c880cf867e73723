package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/srniranjan/dopamine-menu/internal"
	_ "modernc.org/sqlite"
)

// SQLiteStore backs the single-binary deployment mode. Timestamps are
// stored as unix milliseconds, stats dates as yyyy-mm-dd strings.
type SQLiteStore struct {
	db     *sql.DB
	loc    *time.Location
	logger internal.Logger
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	subject_id TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	duration INTEGER NOT NULL DEFAULT 0,
	user_id TEXT NOT NULL DEFAULT '',
	completion_count INTEGER NOT NULL DEFAULT 0,
	last_completed_ms INTEGER,
	emoji TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS activity_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	activity_id INTEGER NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL DEFAULT '',
	completed_at_ms INTEGER NOT NULL,
	duration INTEGER NOT NULL DEFAULT 0,
	mood TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS user_stats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL DEFAULT '',
	date TEXT NOT NULL,
	daily_goal INTEGER NOT NULL DEFAULT 3,
	activities_completed INTEGER NOT NULL DEFAULT 0,
	current_streak INTEGER NOT NULL DEFAULT 0,
	longest_streak INTEGER NOT NULL DEFAULT 0,
	UNIQUE (user_id, date)
);
CREATE TABLE IF NOT EXISTS menus (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	activities TEXT NOT NULL DEFAULT '[]'
);
`

func NewSQLiteStore(path string, loc *time.Location, logger internal.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Errorf("failed to open sqlite database: %v", err)
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		logger.Errorf("failed to ensure schema: %v", err)
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, loc: loc, logger: logger}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) dayString(day time.Time) string {
	return day.In(s.loc).Format("2006-01-02")
}

func (s *SQLiteStore) parseDay(day string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", day, s.loc)
}

// --- ActivityRepository ---

func (s *SQLiteStore) GetActivities(ctx context.Context, userID string) ([]internal.Activity, error) {
	query := `SELECT id, name, category, description, duration, user_id, completion_count, last_completed_ms, emoji FROM activities ORDER BY id`
	args := []interface{}{}
	if userID != "" {
		query = `SELECT id, name, category, description, duration, user_id, completion_count, last_completed_ms, emoji FROM activities WHERE user_id = ? ORDER BY id`
		args = append(args, userID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("failed to query activities: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []internal.Activity
	for rows.Next() {
		a, err := scanSQLiteActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteActivity(row rowScanner) (*internal.Activity, error) {
	var a internal.Activity
	var lastMS sql.NullInt64
	err := row.Scan(&a.ID, &a.Name, &a.Category, &a.Description, &a.Duration, &a.UserID, &a.CompletionCount, &lastMS, &a.Emoji)
	if err != nil {
		return nil, err
	}
	if lastMS.Valid {
		t := time.UnixMilli(lastMS.Int64)
		a.LastCompleted = &t
	}
	return &a, nil
}

func (s *SQLiteStore) GetActivity(ctx context.Context, id int64) (*internal.Activity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, category, description, duration, user_id, completion_count, last_completed_ms, emoji FROM activities WHERE id = ?`, id)
	a, err := scanSQLiteActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *SQLiteStore) CreateActivity(ctx context.Context, a *internal.Activity) error {
	var lastMS interface{}
	if a.LastCompleted != nil {
		lastMS = a.LastCompleted.UnixMilli()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (name, category, description, duration, user_id, completion_count, last_completed_ms, emoji)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Category, a.Description, a.Duration, a.UserID, a.CompletionCount, lastMS, a.Emoji)
	if err != nil {
		s.logger.Errorf("failed to insert activity: %v", err)
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) CreateActivities(ctx context.Context, as []*internal.Activity) error {
	for _, a := range as {
		if err := s.CreateActivity(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) UpdateActivity(ctx context.Context, a *internal.Activity) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE activities SET name = ?, category = ?, description = ?, duration = ?, emoji = ? WHERE id = ?`,
		a.Name, a.Category, a.Description, a.Duration, a.Emoji, a.ID)
	if err != nil {
		s.logger.Errorf("failed to update activity: %v", err)
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteActivity(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		s.logger.Errorf("failed to delete activity: %v", err)
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ClearAllActivities(ctx context.Context) error {
	// FK cascade removes activity_logs; stats rows stay by design
	if _, err := s.db.ExecContext(ctx, `DELETE FROM activities`); err != nil {
		s.logger.Errorf("failed to clear activities: %v", err)
		return err
	}
	return nil
}

func (s *SQLiteStore) IncrementCompletion(ctx context.Context, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE activities SET completion_count = completion_count + 1, last_completed_ms = ? WHERE id = ?`,
		at.UnixMilli(), id)
	if err != nil {
		s.logger.Errorf("failed to increment completion: %v", err)
		return err
	}
	return requireRow(res)
}

// --- LogRepository ---

func (s *SQLiteStore) AppendLog(ctx context.Context, log *internal.ActivityLog) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_logs (activity_id, user_id, completed_at_ms, duration, mood) VALUES (?, ?, ?, ?, ?)`,
		log.ActivityID, log.UserID, log.CompletedAt.UnixMilli(), log.Duration, log.Mood)
	if err != nil {
		s.logger.Errorf("failed to insert activity log: %v", err)
		return err
	}
	log.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) LogsByActivity(ctx context.Context, activityID int64) ([]internal.ActivityLog, error) {
	return s.queryLogs(ctx,
		`SELECT id, activity_id, user_id, completed_at_ms, duration, mood FROM activity_logs WHERE activity_id = ? ORDER BY completed_at_ms DESC`,
		activityID)
}

func (s *SQLiteStore) RecentLogs(ctx context.Context, limit int) ([]internal.ActivityLog, error) {
	return s.queryLogs(ctx,
		`SELECT id, activity_id, user_id, completed_at_ms, duration, mood FROM activity_logs ORDER BY completed_at_ms DESC LIMIT ?`,
		limit)
}

func (s *SQLiteStore) queryLogs(ctx context.Context, query string, args ...interface{}) ([]internal.ActivityLog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("failed to query activity logs: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []internal.ActivityLog
	for rows.Next() {
		var l internal.ActivityLog
		var ms int64
		if err := rows.Scan(&l.ID, &l.ActivityID, &l.UserID, &ms, &l.Duration, &l.Mood); err != nil {
			return nil, err
		}
		l.CompletedAt = time.UnixMilli(ms)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CompletionDays(ctx context.Context) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT completed_at_ms FROM activity_logs ORDER BY completed_at_ms DESC`)
	if err != nil {
		s.logger.Errorf("failed to query completion days: %v", err)
		return nil, err
	}
	defer rows.Close()

	seen := make(map[time.Time]struct{})
	var days []time.Time
	for rows.Next() {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			return nil, err
		}
		day := internal.DayStart(time.UnixMilli(ms), s.loc)
		if _, ok := seen[day]; !ok {
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days, rows.Err()
}

func (s *SQLiteStore) CountCompletedBetween(ctx context.Context, start, end time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_logs WHERE completed_at_ms >= ? AND completed_at_ms < ?`,
		start.UnixMilli(), end.UnixMilli()).Scan(&count)
	if err != nil {
		s.logger.Errorf("failed to count completions: %v", err)
		return 0, err
	}
	return count, nil
}

// --- StatsRepository ---

func (s *SQLiteStore) GetStatsByDate(ctx context.Context, userID string, day time.Time) (*internal.UserStats, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, date, daily_goal, activities_completed, current_streak, longest_streak
		 FROM user_stats WHERE user_id = ? AND date = ?`, userID, s.dayString(day))
	st, err := s.scanStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return st, err
}

func (s *SQLiteStore) scanStats(row rowScanner) (*internal.UserStats, error) {
	var st internal.UserStats
	var day string
	err := row.Scan(&st.ID, &st.UserID, &day, &st.DailyGoal, &st.ActivitiesCompleted, &st.CurrentStreak, &st.LongestStreak)
	if err != nil {
		return nil, err
	}
	if st.Date, err = s.parseDay(day); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *SQLiteStore) UpsertStats(ctx context.Context, stats *internal.UserStats) error {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO user_stats (user_id, date, daily_goal, activities_completed, current_streak, longest_streak)
		 VALUES (?, ?, ?, ?, ?, MAX(?, ?))
		 ON CONFLICT (user_id, date) DO UPDATE SET
			daily_goal = excluded.daily_goal,
			activities_completed = excluded.activities_completed,
			current_streak = excluded.current_streak,
			longest_streak = MAX(user_stats.longest_streak, excluded.current_streak, excluded.longest_streak)
		 RETURNING id, user_id, date, daily_goal, activities_completed, current_streak, longest_streak`,
		stats.UserID, s.dayString(stats.Date), stats.DailyGoal, stats.ActivitiesCompleted,
		stats.CurrentStreak, stats.CurrentStreak, stats.LongestStreak)
	st, err := s.scanStats(row)
	if err != nil {
		s.logger.Errorf("failed to upsert user stats: %v", err)
		return err
	}
	*stats = *st
	return nil
}

// --- MenuRepository ---

func (s *SQLiteStore) GetMenus(ctx context.Context) ([]internal.Menu, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, user_id, activities FROM menus ORDER BY id`)
	if err != nil {
		s.logger.Errorf("failed to query menus: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []internal.Menu
	for rows.Next() {
		m, err := scanSQLiteMenu(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func scanSQLiteMenu(row rowScanner) (*internal.Menu, error) {
	var m internal.Menu
	var ids string
	if err := row.Scan(&m.ID, &m.Name, &m.UserID, &ids); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(ids), &m.ActivityIDs); err != nil {
		return nil, err
	}
	return &m, nil
}

func marshalMenuIDs(ids []int64) string {
	if len(ids) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(ids)
	return string(b)
}

func (s *SQLiteStore) GetMenu(ctx context.Context, id int64) (*internal.Menu, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, user_id, activities FROM menus WHERE id = ?`, id)
	m, err := scanSQLiteMenu(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *SQLiteStore) CreateMenu(ctx context.Context, m *internal.Menu) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO menus (name, user_id, activities) VALUES (?, ?, ?)`,
		m.Name, m.UserID, marshalMenuIDs(m.ActivityIDs))
	if err != nil {
		s.logger.Errorf("failed to insert menu: %v", err)
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) UpdateMenu(ctx context.Context, m *internal.Menu) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE menus SET name = ?, activities = ? WHERE id = ?`,
		m.Name, marshalMenuIDs(m.ActivityIDs), m.ID)
	if err != nil {
		s.logger.Errorf("failed to update menu: %v", err)
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteMenu(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM menus WHERE id = ?`, id)
	if err != nil {
		s.logger.Errorf("failed to delete menu: %v", err)
		return err
	}
	return requireRow(res)
}

// --- UserRepository ---

func (s *SQLiteStore) GetUserBySubject(ctx context.Context, subject string) (*internal.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, subject_id, username, name FROM users WHERE subject_id = ?`, subject)
	return scanSQLiteUser(row)
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*internal.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, subject_id, username, name FROM users WHERE username = ?`, username)
	return scanSQLiteUser(row)
}

func scanSQLiteUser(row rowScanner) (*internal.User, error) {
	var u internal.User
	err := row.Scan(&u.ID, &u.SubjectID, &u.Username, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) CreateOrGetUser(ctx context.Context, subject, username, name string) (*internal.User, error) {
	if u, err := s.GetUserBySubject(ctx, subject); err == nil {
		return u, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u := &internal.User{SubjectID: subject, Username: username, Name: name}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (subject_id, username, name) VALUES (?, ?, ?)`, subject, username, name)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrUsernameTaken
		}
		s.logger.Errorf("failed to insert user: %v", err)
		return nil, err
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return u, nil
}

// --- Compile-time assertion ---
var _ Store = (*SQLiteStore)(nil)
