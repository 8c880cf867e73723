package api

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/srniranjan/dopamine-menu/internal/service"
	"github.com/srniranjan/dopamine-menu/internal/storage"
)

func GetActivities(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := RequireSubject(c)
		if !ok {
			return
		}
		activities, err := app.Store().GetActivities(c.Request.Context(), subject)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch activities")
			return
		}
		HandleSuccess(c, app.Logger(), activities, nil)
	}
}

func PostActivity(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := RequireSubject(c)
		if !ok {
			return
		}
		var req service.ActivityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateActivityRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid activity data")
			return
		}
		activity, err := service.CreateActivity(c.Request.Context(), app.Store(), subject, &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to create activity")
			return
		}
		HandleCreated(c, app.Logger(), activity)
	}
}

// PostActivitiesBatch creates many activities at once; the setup wizard
// uses it to install a picked subset of the seed catalog.
func PostActivitiesBatch(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := RequireSubject(c)
		if !ok {
			return
		}
		var reqs []service.ActivityRequest
		if err := c.ShouldBindJSON(&reqs); err != nil {
			HandleError(c, app.Logger(), err, 400, "Request body must be an array of activities")
			return
		}
		activities, err := service.CreateActivities(c.Request.Context(), app.Store(), subject, reqs)
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			HandleError(c, app.Logger(), err, 400, "Invalid activity data")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to create activities")
			return
		}
		HandleCreated(c, app.Logger(), activities)
	}
}

func PutActivity(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := RequireSubject(c)
		if !ok {
			return
		}
		id, err := ParamID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid activity id")
			return
		}
		existing, err := app.Store().GetActivity(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Activity not found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch activity")
			return
		}
		if existing.UserID != subject {
			HandleError(c, app.Logger(), errors.New("owner mismatch"), 403, "Not authorized to update this activity")
			return
		}
		var req service.ActivityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateActivityRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid activity data")
			return
		}
		activity, err := service.UpdateActivity(c.Request.Context(), app.Store(), existing, &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to update activity")
			return
		}
		HandleSuccess(c, app.Logger(), activity, nil)
	}
}

func DeleteActivity(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := RequireSubject(c)
		if !ok {
			return
		}
		id, err := ParamID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid activity id")
			return
		}
		existing, err := app.Store().GetActivity(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Activity not found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch activity")
			return
		}
		if existing.UserID != subject {
			HandleError(c, app.Logger(), errors.New("owner mismatch"), 403, "Not authorized to delete this activity")
			return
		}
		if err := app.Store().DeleteActivity(c.Request.Context(), id); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to delete activity")
			return
		}
		c.Status(204)
	}
}

func DeleteAllActivities(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Store().ClearAllActivities(c.Request.Context()); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to clear activities")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"message": "All activities cleared successfully"})
	}
}

func GetRandomActivity(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := RequireSubject(c)
		if !ok {
			return
		}
		activity, err := service.RandomActivity(c.Request.Context(), app.Store(), subject, c.Query("category"))
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "No activities found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to get random activity")
			return
		}
		HandleSuccess(c, app.Logger(), activity, nil)
	}
}

func GetRecentActivities(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
		if err != nil || limit <= 0 {
			limit = 5
		}
		logs, err := app.Store().RecentLogs(c.Request.Context(), limit)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to get recent activities")
			return
		}
		HandleSuccess(c, app.Logger(), logs, nil)
	}
}

func PostComplete(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParamID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid activity id")
			return
		}
		var req service.CompleteRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateCompleteRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid completion data")
			return
		}
		err = service.CompleteActivity(c.Request.Context(), app.Store(), id, &req, Subject(c), app.Now(), app.Location())
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Activity not found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to complete activity")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"message": "Activity completed successfully"})
	}
}

func GetSuggestions(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		excludeRecent := c.Query("excludeRecent") != "false"
		suggestions, err := service.SuggestActivities(c.Request.Context(), app.Store(), Subject(c), c.Query("mood"), excludeRecent)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to get activity suggestions")
			return
		}
		HandleSuccess(c, app.Logger(), suggestions, nil)
	}
}

func GetTransitionSuggestions(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParamID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid activity id")
			return
		}
		activity, err := app.Store().GetActivity(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Activity not found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch activity")
			return
		}
		suggestions, err := service.TransitionSuggestions(c.Request.Context(), app.Store(), activity)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to get transition suggestions")
			return
		}
		HandleSuccess(c, app.Logger(), suggestions, nil)
	}
}

func GetActivityLogs(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParamID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid activity id")
			return
		}
		logs, err := app.Store().LogsByActivity(c.Request.Context(), id)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to get activity logs")
			return
		}
		HandleSuccess(c, app.Logger(), logs, nil)
	}
}
