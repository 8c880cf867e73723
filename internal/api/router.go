package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the full route table. identityMW resolves the caller's
// identity without rejecting anonymous requests; handlers that need a
// subject enforce it themselves.
func NewRouter(app App, identityMW gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	apiGroup.Use(identityMW)

	// static paths must be registered before the :id routes so gin does
	// not swallow them as ids
	apiGroup.GET("/activities", GetActivities(app))
	apiGroup.POST("/activities", PostActivity(app))
	apiGroup.POST("/activities/batch", PostActivitiesBatch(app))
	apiGroup.GET("/activities/random", GetRandomActivity(app))
	apiGroup.GET("/activities/recent", GetRecentActivities(app))
	apiGroup.GET("/activities/suggestions", GetSuggestions(app))
	apiGroup.DELETE("/activities/all", DeleteAllActivities(app))
	apiGroup.PUT("/activities/:id", PutActivity(app))
	apiGroup.DELETE("/activities/:id", DeleteActivity(app))
	apiGroup.POST("/activities/:id/complete", PostComplete(app))
	apiGroup.GET("/activities/:id/suggestions", GetTransitionSuggestions(app))
	apiGroup.GET("/activities/:id/logs", GetActivityLogs(app))

	apiGroup.GET("/user/stats", GetUserStats(app))
	apiGroup.POST("/users/sync", PostUserSync(app))

	apiGroup.GET("/menus", GetMenus(app))
	apiGroup.POST("/menus", PostMenu(app))
	apiGroup.PUT("/menus/:id", PutMenu(app))
	apiGroup.DELETE("/menus/:id", DeleteMenu(app))

	apiGroup.GET("/categories", GetCategories(app))

	return r
}
