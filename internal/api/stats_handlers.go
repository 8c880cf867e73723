package api

import (
	"github.com/gin-gonic/gin"
	"github.com/srniranjan/dopamine-menu/internal/service"
)

func GetUserStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := service.GetUserStats(c.Request.Context(), app.Store(), Subject(c), app.Now(), app.Location())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to get user stats")
			return
		}
		HandleSuccess(c, app.Logger(), stats, nil)
	}
}
