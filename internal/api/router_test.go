package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/srniranjan/dopamine-menu/internal"
	"github.com/srniranjan/dopamine-menu/internal/auth"
	"github.com/srniranjan/dopamine-menu/internal/config"
	"github.com/srniranjan/dopamine-menu/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "MOCK-TOKEN"

// testNow lands on a Sunday afternoon so the streak math in the
// end-to-end tests has a predictable "today".
var testNow = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

type harness struct {
	router *gin.Engine
	store  *storage.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewMemoryStore("", time.UTC, internal.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := internal.NopLogger()
	app := NewAppWithClock(logger, store, time.UTC, func() time.Time { return testNow })
	cfg := &config.Config{AuthMode: "local", DevToken: testToken}
	provider := auth.NewLocalProvider(cfg.DevToken, logger)
	return &harness{
		router: NewRouter(app, auth.Middleware(provider, cfg)),
		store:  store,
	}
}

func (h *harness) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestActivitiesRequireAuth(t *testing.T) {
	h := newHarness(t)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/activities"},
		{http.MethodPost, "/api/activities"},
		{http.MethodGet, "/api/activities/random"},
	} {
		w := h.do(t, tc.method, tc.path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}

	w := h.do(t, http.MethodGet, "/api/activities", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostActivity(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/activities", map[string]any{
		"name":     "Short walk",
		"category": "appetizers",
		"duration": 10,
		"emoji":    "🚶",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	var created internal.Activity
	require.NoError(t, json.Unmarshal(env["data"], &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "dev-user", created.UserID)

	// bad category is rejected before anything is written
	w = h.do(t, http.MethodPost, "/api/activities", map[string]any{
		"name":     "Nap",
		"category": "mains",
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	acts, err := h.store.GetActivities(context.Background(), "dev-user")
	require.NoError(t, err)
	assert.Len(t, acts, 1)
}

func TestPostActivitiesBatch(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/activities/batch", []map[string]any{
		{"name": "Stretch", "category": "appetizers"},
		{"name": "Deep work", "category": "entrees", "duration": 45},
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	var created []internal.Activity
	require.NoError(t, json.Unmarshal(env["data"], &created))
	assert.Len(t, created, 2)

	// one invalid entry fails the whole batch
	w = h.do(t, http.MethodPost, "/api/activities/batch", []map[string]any{
		{"name": "Ok", "category": "snacks"},
		{"name": "", "category": "snacks"},
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	acts, err := h.store.GetActivities(context.Background(), "dev-user")
	require.NoError(t, err)
	assert.Len(t, acts, 2)
}

func TestCompleteActivityEndToEnd(t *testing.T) {
	h := newHarness(t)

	a := &internal.Activity{Name: "Journal", Category: internal.CategoryDesserts, UserID: "dev-user"}
	require.NoError(t, h.store.CreateActivity(context.Background(), a))

	w := h.do(t, http.MethodPost, "/api/activities/1/complete", map[string]any{
		"duration": 15,
		"mood":     "neutral",
	}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Activity completed successfully")

	w = h.do(t, http.MethodGet, "/api/user/stats", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var stats internal.UserStats
	require.NoError(t, json.Unmarshal(env["data"], &stats))
	assert.Equal(t, 1, stats.ActivitiesCompleted)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, internal.DefaultDailyGoal, stats.DailyGoal)

	// an empty body is a plain completion
	w = h.do(t, http.MethodPost, "/api/activities/1/complete", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	got, err := h.store.GetActivity(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CompletionCount)
}

func TestCompleteActivityUnknownID(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/activities/99/complete", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodPost, "/api/activities/abc/complete", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserStatsDefaultWhenEmpty(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/user/stats", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var stats internal.UserStats
	require.NoError(t, json.Unmarshal(env["data"], &stats))
	assert.Zero(t, stats.ActivitiesCompleted)
	assert.Zero(t, stats.CurrentStreak)
	assert.Equal(t, internal.DefaultDailyGoal, stats.DailyGoal)
}

func TestPutActivityOwnership(t *testing.T) {
	h := newHarness(t)

	theirs := &internal.Activity{Name: "Their thing", Category: internal.CategoryEntrees, UserID: "someone-else"}
	require.NoError(t, h.store.CreateActivity(context.Background(), theirs))

	body := map[string]any{"name": "Renamed", "category": "entrees"}
	w := h.do(t, http.MethodPut, "/api/activities/1", body, true)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodPut, "/api/activities/99", body, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	mine := &internal.Activity{Name: "My thing", Category: internal.CategoryEntrees, UserID: "dev-user"}
	require.NoError(t, h.store.CreateActivity(context.Background(), mine))
	w = h.do(t, http.MethodPut, "/api/activities/2", body, true)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var updated internal.Activity
	require.NoError(t, json.Unmarshal(env["data"], &updated))
	assert.Equal(t, "Renamed", updated.Name)
}

func TestDeleteActivity(t *testing.T) {
	h := newHarness(t)

	a := &internal.Activity{Name: "Doomscroll", Category: internal.CategorySnacks, UserID: "dev-user"}
	require.NoError(t, h.store.CreateActivity(context.Background(), a))

	w := h.do(t, http.MethodDelete, "/api/activities/1", nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(t, http.MethodDelete, "/api/activities/1", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRandomActivityEmpty(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/api/activities/random", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserSync(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/users/sync", map[string]any{
		"subjectId": "subj-1",
		"username":  "alice",
		"name":      "Alice",
	}, false)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var user internal.User
	require.NoError(t, json.Unmarshal(env["data"], &user))
	assert.Equal(t, "alice", user.Username)

	// same username under another subject conflicts
	w = h.do(t, http.MethodPost, "/api/users/sync", map[string]any{
		"subjectId": "subj-2",
		"username":  "alice",
	}, false)
	assert.Equal(t, http.StatusConflict, w.Code)

	// missing username
	w = h.do(t, http.MethodPost, "/api/users/sync", map[string]any{
		"subjectId": "subj-3",
	}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategories(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/categories", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)

	var cats []struct {
		Name     string              `json:"name"`
		Examples []internal.Activity `json:"examples"`
	}
	require.NoError(t, json.Unmarshal(env["data"], &cats))
	require.Len(t, cats, len(internal.Categories))
	for _, c := range cats {
		assert.True(t, internal.ValidCategory(c.Name))
		assert.NotEmpty(t, c.Examples)
	}
}

func TestMenusCRUD(t *testing.T) {
	h := newHarness(t)

	a := &internal.Activity{Name: "Walk", Category: internal.CategoryAppetizers, UserID: "dev-user"}
	require.NoError(t, h.store.CreateActivity(context.Background(), a))

	w := h.do(t, http.MethodPost, "/api/menus", map[string]any{
		"name":       "Morning",
		"activities": []int64{a.ID},
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	var menu internal.Menu
	require.NoError(t, json.Unmarshal(env["data"], &menu))
	require.NotZero(t, menu.ID)

	w = h.do(t, http.MethodGet, "/api/menus", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	var menus []internal.Menu
	require.NoError(t, json.Unmarshal(env["data"], &menus))
	assert.Len(t, menus, 1)

	w = h.do(t, http.MethodPut, "/api/menus/1", map[string]any{"name": "Evening"}, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodDelete, "/api/menus/1", nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = h.do(t, http.MethodPut, "/api/menus/1", map[string]any{"name": "Gone"}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearAllActivities(t *testing.T) {
	h := newHarness(t)

	a := &internal.Activity{Name: "Walk", Category: internal.CategoryAppetizers, UserID: "dev-user"}
	require.NoError(t, h.store.CreateActivity(context.Background(), a))

	w := h.do(t, http.MethodDelete, "/api/activities/all", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "All activities cleared successfully")

	acts, err := h.store.GetActivities(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, acts)
}
