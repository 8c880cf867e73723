package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/srniranjan/dopamine-menu/internal"
)

// MemoryStore keeps everything in maps and snapshots the whole data set to
// a JSON file through a debounced background worker. It is the default
// development backend and the fixture for tests.
type MemoryStore struct {
	mu         sync.RWMutex
	activities map[int64]*internal.Activity
	logs       []*internal.ActivityLog // sorted by CompletedAt descending
	stats      map[string]*internal.UserStats
	menus      map[int64]*internal.Menu
	users      map[string]*internal.User // subject -> user
	ids        idCounters

	loc       *time.Location
	dataFile  string
	saveChan  chan struct{}
	shutdown  chan struct{}
	saveDelay time.Duration
	logger    internal.Logger
}

type idCounters struct {
	Activity int64 `json:"activity"`
	Log      int64 `json:"log"`
	Stats    int64 `json:"stats"`
	Menu     int64 `json:"menu"`
	User     int64 `json:"user"`
}

type snapshot struct {
	Activities []*internal.Activity    `json:"activities"`
	Logs       []*internal.ActivityLog `json:"logs"`
	Stats      []*internal.UserStats   `json:"stats"`
	Menus      []*internal.Menu        `json:"menus"`
	Users      []*internal.User        `json:"users"`
	IDs        idCounters              `json:"ids"`
}

func NewMemoryStore(dataFile string, loc *time.Location, logger internal.Logger) (*MemoryStore, error) {
	s := &MemoryStore{
		activities: make(map[int64]*internal.Activity),
		stats:      make(map[string]*internal.UserStats),
		menus:      make(map[int64]*internal.Menu),
		users:      make(map[string]*internal.User),
		loc:        loc,
		dataFile:   dataFile,
		saveChan:   make(chan struct{}, 1),
		shutdown:   make(chan struct{}),
		saveDelay:  500 * time.Millisecond,
		logger:     logger,
	}
	if err := s.load(); err != nil {
		logger.Errorf("storage: failed to load snapshot: %v", err)
		return nil, err
	}
	go s.saveWorker()
	return s, nil
}

func (s *MemoryStore) load() error {
	if s.dataFile == "" {
		return nil
	}
	file, err := os.Open(s.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var snap snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range snap.Activities {
		s.activities[a.ID] = a
	}
	s.logs = snap.Logs
	sort.Slice(s.logs, func(i, j int) bool {
		return s.logs[i].CompletedAt.After(s.logs[j].CompletedAt)
	})
	for _, st := range snap.Stats {
		s.stats[statsKey(st.UserID, st.Date)] = st
	}
	for _, m := range snap.Menus {
		s.menus[m.ID] = m
	}
	for _, u := range snap.Users {
		s.users[u.SubjectID] = u
	}
	s.ids = snap.IDs
	return nil
}

func statsKey(userID string, day time.Time) string {
	return userID + "|" + day.Format("2006-01-02")
}

func (s *MemoryStore) markDirty() {
	select {
	case s.saveChan <- struct{}{}:
	default:
	}
}

func (s *MemoryStore) save() error {
	if s.dataFile == "" {
		return nil
	}
	// rows are value copies: mutators update stored structs in place, and
	// the JSON encoding below runs outside the lock
	s.mu.RLock()
	snap := snapshot{
		Activities: make([]*internal.Activity, 0, len(s.activities)),
		Logs:       make([]*internal.ActivityLog, 0, len(s.logs)),
		Stats:      make([]*internal.UserStats, 0, len(s.stats)),
		Menus:      make([]*internal.Menu, 0, len(s.menus)),
		Users:      make([]*internal.User, 0, len(s.users)),
		IDs:        s.ids,
	}
	for _, a := range s.activities {
		cp := *a
		snap.Activities = append(snap.Activities, &cp)
	}
	for _, l := range s.logs {
		cp := *l
		snap.Logs = append(snap.Logs, &cp)
	}
	for _, st := range s.stats {
		cp := *st
		snap.Stats = append(snap.Stats, &cp)
	}
	for _, m := range s.menus {
		cp := *m
		snap.Menus = append(snap.Menus, &cp)
	}
	for _, u := range s.users {
		cp := *u
		snap.Users = append(snap.Users, &cp)
	}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.dataFile, snap)
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *MemoryStore) saveWorker() {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.save(); err != nil {
				s.logger.Errorf("storage: error saving snapshot: %v", err)
			}
		case <-s.shutdown:
			return
		}
	}
}

func (s *MemoryStore) Close() error {
	close(s.shutdown)
	return s.save()
}

// --- ActivityRepository ---

func (s *MemoryStore) GetActivities(ctx context.Context, userID string) ([]internal.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]internal.Activity, 0, len(s.activities))
	for _, a := range s.activities {
		if userID != "" && a.UserID != userID {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetActivity(ctx context.Context, id int64) (*internal.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.activities[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) CreateActivity(ctx context.Context, a *internal.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids.Activity++
	a.ID = s.ids.Activity
	cp := *a
	s.activities[a.ID] = &cp
	s.markDirty()
	return nil
}

func (s *MemoryStore) CreateActivities(ctx context.Context, as []*internal.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range as {
		s.ids.Activity++
		a.ID = s.ids.Activity
		cp := *a
		s.activities[a.ID] = &cp
	}
	s.markDirty()
	return nil
}

func (s *MemoryStore) UpdateActivity(ctx context.Context, a *internal.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[a.ID]; !ok {
		return ErrNotFound
	}
	cp := *a
	s.activities[a.ID] = &cp
	s.markDirty()
	return nil
}

func (s *MemoryStore) DeleteActivity(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[id]; !ok {
		return ErrNotFound
	}
	delete(s.activities, id)
	// cascade: drop this activity's completion log
	kept := s.logs[:0]
	for _, l := range s.logs {
		if l.ActivityID != id {
			kept = append(kept, l)
		}
	}
	s.logs = kept
	s.markDirty()
	return nil
}

func (s *MemoryStore) ClearAllActivities(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = make(map[int64]*internal.Activity)
	s.logs = nil
	s.markDirty()
	return nil
}

func (s *MemoryStore) IncrementCompletion(ctx context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activities[id]
	if !ok {
		return ErrNotFound
	}
	a.CompletionCount++
	ts := at
	a.LastCompleted = &ts
	s.markDirty()
	return nil
}

// --- LogRepository ---

func (s *MemoryStore) AppendLog(ctx context.Context, log *internal.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids.Log++
	log.ID = s.ids.Log
	cp := *log

	// keep descending CompletedAt order on insert
	inserted := false
	for i, existing := range s.logs {
		if existing.CompletedAt.Before(cp.CompletedAt) {
			s.logs = append(s.logs[:i], append([]*internal.ActivityLog{&cp}, s.logs[i:]...)...)
			inserted = true
			break
		}
	}
	if !inserted {
		s.logs = append(s.logs, &cp)
	}
	s.markDirty()
	return nil
}

func (s *MemoryStore) LogsByActivity(ctx context.Context, activityID int64) ([]internal.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []internal.ActivityLog{}
	for _, l := range s.logs {
		if l.ActivityID == activityID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *MemoryStore) RecentLogs(ctx context.Context, limit int) ([]internal.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.logs) {
		limit = len(s.logs)
	}
	out := make([]internal.ActivityLog, 0, limit)
	for _, l := range s.logs[:limit] {
		out = append(out, *l)
	}
	return out, nil
}

func (s *MemoryStore) CompletionDays(ctx context.Context) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[time.Time]struct{})
	var days []time.Time
	for _, l := range s.logs {
		day := internal.DayStart(l.CompletedAt, s.loc)
		if _, ok := seen[day]; !ok {
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days, nil
}

func (s *MemoryStore) CountCompletedBetween(ctx context.Context, start, end time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, l := range s.logs {
		if !l.CompletedAt.Before(start) && l.CompletedAt.Before(end) {
			count++
		}
	}
	return count, nil
}

// --- StatsRepository ---

func (s *MemoryStore) GetStatsByDate(ctx context.Context, userID string, day time.Time) (*internal.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stats[statsKey(userID, day)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *MemoryStore) UpsertStats(ctx context.Context, stats *internal.UserStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := statsKey(stats.UserID, stats.Date)
	if existing, ok := s.stats[key]; ok {
		existing.DailyGoal = stats.DailyGoal
		existing.ActivitiesCompleted = stats.ActivitiesCompleted
		existing.CurrentStreak = stats.CurrentStreak
		if stats.LongestStreak > existing.LongestStreak {
			existing.LongestStreak = stats.LongestStreak
		}
		if existing.CurrentStreak > existing.LongestStreak {
			existing.LongestStreak = existing.CurrentStreak
		}
		*stats = *existing
	} else {
		s.ids.Stats++
		stats.ID = s.ids.Stats
		if stats.LongestStreak < stats.CurrentStreak {
			stats.LongestStreak = stats.CurrentStreak
		}
		cp := *stats
		s.stats[key] = &cp
	}
	s.markDirty()
	return nil
}

// --- MenuRepository ---

func (s *MemoryStore) GetMenus(ctx context.Context) ([]internal.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]internal.Menu, 0, len(s.menus))
	for _, m := range s.menus {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetMenu(ctx context.Context, id int64) (*internal.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.menus[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) CreateMenu(ctx context.Context, m *internal.Menu) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids.Menu++
	m.ID = s.ids.Menu
	cp := *m
	s.menus[m.ID] = &cp
	s.markDirty()
	return nil
}

func (s *MemoryStore) UpdateMenu(ctx context.Context, m *internal.Menu) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menus[m.ID]; !ok {
		return ErrNotFound
	}
	cp := *m
	s.menus[m.ID] = &cp
	s.markDirty()
	return nil
}

func (s *MemoryStore) DeleteMenu(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menus[id]; !ok {
		return ErrNotFound
	}
	delete(s.menus, id)
	s.markDirty()
	return nil
}

// --- UserRepository ---

func (s *MemoryStore) GetUserBySubject(ctx context.Context, subject string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[subject]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateOrGetUser(ctx context.Context, subject, username, name string) (*internal.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[subject]; ok {
		cp := *u
		return &cp, nil
	}
	for _, u := range s.users {
		if u.Username == username {
			return nil, ErrUsernameTaken
		}
	}
	s.ids.User++
	u := &internal.User{ID: s.ids.User, SubjectID: subject, Username: username, Name: name}
	s.users[subject] = u
	s.markDirty()
	cp := *u
	return &cp, nil
}

// --- Compile-time assertion ---
var _ Store = (*MemoryStore)(nil)
