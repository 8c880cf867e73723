package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/srniranjan/dopamine-menu/internal"
	"github.com/srniranjan/dopamine-menu/internal/auth"
	"github.com/srniranjan/dopamine-menu/internal/response"
)

func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	var resp response.APIResponse
	switch status {
	case 400:
		resp = response.BadRequest(msg + ": " + err.Error())
	case 403:
		resp = response.Forbidden(msg)
	case 404:
		resp = response.NotFound(msg + ": " + err.Error())
	case 409:
		resp = response.Conflict(msg)
	case 500:
		resp = response.InternalError(msg + ": " + err.Error())
	default:
		resp = response.NewAppError(status, msg+": "+err.Error())
	}
	c.JSON(status, resp)
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] Success", requestID)
	c.JSON(200, response.Success(data, meta))
}

func HandleCreated(c *gin.Context, logger internal.Logger, data interface{}) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] Created", requestID)
	c.JSON(201, response.Success(data, nil))
}

// RequireSubject enforces an authenticated caller, returning the subject
// id. When the caller is anonymous the 401 has already been written.
func RequireSubject(c *gin.Context) (string, bool) {
	id := auth.CurrentIdentity(c)
	if id == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Authentication required"))
		return "", false
	}
	return id.Subject, true
}

// Subject returns the caller's subject id, or "" for anonymous calls.
func Subject(c *gin.Context) string {
	if id := auth.CurrentIdentity(c); id != nil {
		return id.Subject
	}
	return ""
}

func ParamID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
