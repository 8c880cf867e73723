package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/srniranjan/dopamine-menu/internal"
	"github.com/srniranjan/dopamine-menu/internal/service"
	"github.com/srniranjan/dopamine-menu/internal/storage"
)

// PostUserSync upserts the local user row for a federation subject. The
// front end calls it right after sign-in.
func PostUserSync(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.UserSyncRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Missing required fields: subjectId and username")
			return
		}
		if err := service.ValidateUserSyncRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Missing required fields: subjectId and username")
			return
		}
		user, err := service.SyncUser(c.Request.Context(), app.Store(), &req)
		if errors.Is(err, storage.ErrUsernameTaken) {
			HandleError(c, app.Logger(), err, 409, "Username already exists")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to sync user")
			return
		}
		HandleSuccess(c, app.Logger(), user, nil)
	}
}

// GetCategories exposes the fixed category set with its descriptions and
// the built-in example catalog the setup wizard offers.
func GetCategories(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		type category struct {
			Name        string              `json:"name"`
			Description string              `json:"description"`
			Examples    []internal.Activity `json:"examples"`
		}
		out := make([]category, 0, len(internal.Categories))
		for _, name := range internal.Categories {
			out = append(out, category{
				Name:        name,
				Description: internal.CategoryDescriptions[name],
				Examples:    internal.SeedActivities[name],
			})
		}
		HandleSuccess(c, app.Logger(), out, nil)
	}
}
