package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/srniranjan/dopamine-menu/internal/service"
	"github.com/srniranjan/dopamine-menu/internal/storage"
)

func GetMenus(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		menus, err := app.Store().GetMenus(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch menus")
			return
		}
		HandleSuccess(c, app.Logger(), menus, nil)
	}
}

func PostMenu(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.MenuRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateMenuRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid menu data")
			return
		}
		menu, err := service.CreateMenu(c.Request.Context(), app.Store(), Subject(c), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to create menu")
			return
		}
		HandleCreated(c, app.Logger(), menu)
	}
}

func PutMenu(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParamID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid menu id")
			return
		}
		var req service.MenuRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateMenuRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid menu data")
			return
		}
		menu, err := service.UpdateMenu(c.Request.Context(), app.Store(), id, &req)
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Menu not found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to update menu")
			return
		}
		HandleSuccess(c, app.Logger(), menu, nil)
	}
}

func DeleteMenu(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParamID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid menu id")
			return
		}
		err = app.Store().DeleteMenu(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Menu not found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to delete menu")
			return
		}
		c.Status(204)
	}
}
