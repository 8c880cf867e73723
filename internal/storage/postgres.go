package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/srniranjan/dopamine-menu/internal"
)

type PostgresStore struct {
	pool   *pgxpool.Pool
	loc    *time.Location
	logger internal.Logger
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	subject_id TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS activities (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	duration INT NOT NULL DEFAULT 0,
	user_id TEXT NOT NULL DEFAULT '',
	completion_count INT NOT NULL DEFAULT 0,
	last_completed TIMESTAMPTZ,
	emoji TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS activity_logs (
	id BIGSERIAL PRIMARY KEY,
	activity_id BIGINT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL DEFAULT '',
	completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	duration INT NOT NULL DEFAULT 0,
	mood TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS user_stats (
	id BIGSERIAL PRIMARY KEY,
	user_id TEXT NOT NULL DEFAULT '',
	date DATE NOT NULL,
	daily_goal INT NOT NULL DEFAULT 3,
	activities_completed INT NOT NULL DEFAULT 0,
	current_streak INT NOT NULL DEFAULT 0,
	longest_streak INT NOT NULL DEFAULT 0,
	UNIQUE (user_id, date)
);
CREATE TABLE IF NOT EXISTS menus (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	activities BIGINT[] NOT NULL DEFAULT '{}'
);
`

func NewPostgresStore(dsn string, loc *time.Location, logger internal.Logger) (*PostgresStore, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		logger.Errorf("failed to ensure schema: %v", err)
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, loc: loc, logger: logger}, nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

// dayString renders the calendar day in the configured location. Day
// boundaries are always computed client-side; a ::date cast in SQL would
// truncate in the session's timezone instead.
func (p *PostgresStore) dayString(day time.Time) string {
	return day.In(p.loc).Format("2006-01-02")
}

const activityCols = `id, name, category, description, duration, user_id, completion_count, last_completed, emoji`

func scanActivity(row pgx.Row) (*internal.Activity, error) {
	var a internal.Activity
	err := row.Scan(&a.ID, &a.Name, &a.Category, &a.Description, &a.Duration, &a.UserID, &a.CompletionCount, &a.LastCompleted, &a.Emoji)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// --- ActivityRepository ---

func (p *PostgresStore) GetActivities(ctx context.Context, userID string) ([]internal.Activity, error) {
	query := `SELECT ` + activityCols + ` FROM activities ORDER BY id`
	args := []interface{}{}
	if userID != "" {
		query = `SELECT ` + activityCols + ` FROM activities WHERE user_id = $1 ORDER BY id`
		args = append(args, userID)
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Errorf("failed to query activities: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []internal.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			p.logger.Errorf("failed to scan activity: %v", err)
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (p *PostgresStore) GetActivity(ctx context.Context, id int64) (*internal.Activity, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+activityCols+` FROM activities WHERE id = $1`, id)
	a, err := scanActivity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (p *PostgresStore) CreateActivity(ctx context.Context, a *internal.Activity) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO activities (name, category, description, duration, user_id, completion_count, last_completed, emoji)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		a.Name, a.Category, a.Description, a.Duration, a.UserID, a.CompletionCount, a.LastCompleted, a.Emoji,
	).Scan(&a.ID)
	if err != nil {
		p.logger.Errorf("failed to insert activity: %v", err)
	}
	return err
}

func (p *PostgresStore) CreateActivities(ctx context.Context, as []*internal.Activity) error {
	for _, a := range as {
		if err := p.CreateActivity(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (p *PostgresStore) UpdateActivity(ctx context.Context, a *internal.Activity) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE activities SET name = $2, category = $3, description = $4, duration = $5, emoji = $6 WHERE id = $1`,
		a.ID, a.Name, a.Category, a.Description, a.Duration, a.Emoji)
	if err != nil {
		p.logger.Errorf("failed to update activity: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) DeleteActivity(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		p.logger.Errorf("failed to delete activity: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) ClearAllActivities(ctx context.Context) error {
	// FK cascade removes activity_logs; stats rows stay by design
	if _, err := p.pool.Exec(ctx, `DELETE FROM activities`); err != nil {
		p.logger.Errorf("failed to clear activities: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStore) IncrementCompletion(ctx context.Context, id int64, at time.Time) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE activities SET completion_count = completion_count + 1, last_completed = $2 WHERE id = $1`, id, at)
	if err != nil {
		p.logger.Errorf("failed to increment completion: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- LogRepository ---

func (p *PostgresStore) AppendLog(ctx context.Context, log *internal.ActivityLog) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO activity_logs (activity_id, user_id, completed_at, duration, mood)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		log.ActivityID, log.UserID, log.CompletedAt, log.Duration, log.Mood,
	).Scan(&log.ID)
	if err != nil {
		p.logger.Errorf("failed to insert activity log: %v", err)
	}
	return err
}

func (p *PostgresStore) LogsByActivity(ctx context.Context, activityID int64) ([]internal.ActivityLog, error) {
	return p.queryLogs(ctx,
		`SELECT id, activity_id, user_id, completed_at, duration, mood FROM activity_logs WHERE activity_id = $1 ORDER BY completed_at DESC`,
		activityID)
}

func (p *PostgresStore) RecentLogs(ctx context.Context, limit int) ([]internal.ActivityLog, error) {
	return p.queryLogs(ctx,
		`SELECT id, activity_id, user_id, completed_at, duration, mood FROM activity_logs ORDER BY completed_at DESC LIMIT $1`,
		limit)
}

func (p *PostgresStore) queryLogs(ctx context.Context, query string, args ...interface{}) ([]internal.ActivityLog, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Errorf("failed to query activity logs: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []internal.ActivityLog
	for rows.Next() {
		var l internal.ActivityLog
		if err := rows.Scan(&l.ID, &l.ActivityID, &l.UserID, &l.CompletedAt, &l.Duration, &l.Mood); err != nil {
			p.logger.Errorf("failed to scan activity log: %v", err)
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (p *PostgresStore) CompletionDays(ctx context.Context) ([]time.Time, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT completed_at FROM activity_logs ORDER BY completed_at DESC`)
	if err != nil {
		p.logger.Errorf("failed to query completion days: %v", err)
		return nil, err
	}
	defer rows.Close()

	// bucket into calendar days in the configured location, like the
	// other backends, so day arithmetic in the service stays
	// zone-consistent
	seen := make(map[time.Time]struct{})
	var days []time.Time
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, err
		}
		day := internal.DayStart(at, p.loc)
		if _, ok := seen[day]; !ok {
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}
	return days, rows.Err()
}

func (p *PostgresStore) CountCompletedBetween(ctx context.Context, start, end time.Time) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM activity_logs WHERE completed_at >= $1 AND completed_at < $2`, start, end).Scan(&count)
	if err != nil {
		p.logger.Errorf("failed to count completions: %v", err)
		return 0, err
	}
	return count, nil
}

// --- StatsRepository ---

func (p *PostgresStore) GetStatsByDate(ctx context.Context, userID string, day time.Time) (*internal.UserStats, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, user_id, date, daily_goal, activities_completed, current_streak, longest_streak
		 FROM user_stats WHERE user_id = $1 AND date = $2::date`, userID, p.dayString(day))
	var st internal.UserStats
	err := row.Scan(&st.ID, &st.UserID, &st.Date, &st.DailyGoal, &st.ActivitiesCompleted, &st.CurrentStreak, &st.LongestStreak)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	st.Date = time.Date(st.Date.Year(), st.Date.Month(), st.Date.Day(), 0, 0, 0, 0, p.loc)
	return &st, nil
}

func (p *PostgresStore) UpsertStats(ctx context.Context, stats *internal.UserStats) error {
	row := p.pool.QueryRow(ctx,
		`INSERT INTO user_stats (user_id, date, daily_goal, activities_completed, current_streak, longest_streak)
		 VALUES ($1, $2::date, $3, $4, $5, GREATEST($5, $6))
		 ON CONFLICT (user_id, date) DO UPDATE SET
			daily_goal = EXCLUDED.daily_goal,
			activities_completed = EXCLUDED.activities_completed,
			current_streak = EXCLUDED.current_streak,
			longest_streak = GREATEST(user_stats.longest_streak, EXCLUDED.current_streak, EXCLUDED.longest_streak)
		 RETURNING id, user_id, date, daily_goal, activities_completed, current_streak, longest_streak`,
		stats.UserID, p.dayString(stats.Date), stats.DailyGoal, stats.ActivitiesCompleted, stats.CurrentStreak, stats.LongestStreak)
	err := row.Scan(&stats.ID, &stats.UserID, &stats.Date, &stats.DailyGoal, &stats.ActivitiesCompleted, &stats.CurrentStreak, &stats.LongestStreak)
	if err != nil {
		p.logger.Errorf("failed to upsert user stats: %v", err)
		return err
	}
	stats.Date = time.Date(stats.Date.Year(), stats.Date.Month(), stats.Date.Day(), 0, 0, 0, 0, p.loc)
	return nil
}

// --- MenuRepository ---

func (p *PostgresStore) GetMenus(ctx context.Context) ([]internal.Menu, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, name, user_id, activities FROM menus ORDER BY id`)
	if err != nil {
		p.logger.Errorf("failed to query menus: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []internal.Menu
	for rows.Next() {
		var m internal.Menu
		if err := rows.Scan(&m.ID, &m.Name, &m.UserID, &m.ActivityIDs); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *PostgresStore) GetMenu(ctx context.Context, id int64) (*internal.Menu, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, name, user_id, activities FROM menus WHERE id = $1`, id)
	var m internal.Menu
	err := row.Scan(&m.ID, &m.Name, &m.UserID, &m.ActivityIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (p *PostgresStore) CreateMenu(ctx context.Context, m *internal.Menu) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO menus (name, user_id, activities) VALUES ($1, $2, $3) RETURNING id`,
		m.Name, m.UserID, m.ActivityIDs).Scan(&m.ID)
	if err != nil {
		p.logger.Errorf("failed to insert menu: %v", err)
	}
	return err
}

func (p *PostgresStore) UpdateMenu(ctx context.Context, m *internal.Menu) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE menus SET name = $2, activities = $3 WHERE id = $1`, m.ID, m.Name, m.ActivityIDs)
	if err != nil {
		p.logger.Errorf("failed to update menu: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) DeleteMenu(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM menus WHERE id = $1`, id)
	if err != nil {
		p.logger.Errorf("failed to delete menu: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- UserRepository ---

func (p *PostgresStore) GetUserBySubject(ctx context.Context, subject string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, subject_id, username, name FROM users WHERE subject_id = $1`, subject)
	var u internal.User
	err := row.Scan(&u.ID, &u.SubjectID, &u.Username, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, subject_id, username, name FROM users WHERE username = $1`, username)
	var u internal.User
	err := row.Scan(&u.ID, &u.SubjectID, &u.Username, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *PostgresStore) CreateOrGetUser(ctx context.Context, subject, username, name string) (*internal.User, error) {
	if u, err := p.GetUserBySubject(ctx, subject); err == nil {
		return u, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u := &internal.User{SubjectID: subject, Username: username, Name: name}
	err := p.pool.QueryRow(ctx,
		`INSERT INTO users (subject_id, username, name) VALUES ($1, $2, $3) RETURNING id`,
		subject, username, name).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUsernameTaken
		}
		p.logger.Errorf("failed to insert user: %v", err)
		return nil, err
	}
	return u, nil
}

// --- Compile-time assertion ---
var _ Store = (*PostgresStore)(nil)
