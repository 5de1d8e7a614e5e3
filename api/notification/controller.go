package notification

import (
	"net/http"
	"strconv"

	"storeassist/api/middleware"
	"storeassist/api/response"
	"storeassist/application/notification"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service *notification.Service
}

func NewController(service *notification.Service) *Controller {
	return &Controller{service: service}
}

func (ctl *Controller) List(c *gin.Context) {
	userID, ok := middleware.ActingUser(c)
	if !ok {
		response.HandleError(c, nil, "missing user identity", http.StatusUnauthorized)
		return
	}

	var (
		items any
		err   error
	)
	if c.Query("unread") == "true" {
		items, err = ctl.service.ListUnread(c.Request.Context(), userID)
	} else {
		items, err = ctl.service.ListForUser(c.Request.Context(), userID)
	}
	if err != nil {
		response.HandleDomainError(c, err)
		return
	}
	response.HandleSuccess(c, items, "notifications retrieved")
}

func (ctl *Controller) MarkRead(c *gin.Context) {
	userID, ok := middleware.ActingUser(c)
	if !ok {
		response.HandleError(c, nil, "missing user identity", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.HandleError(c, err, "invalid id", http.StatusBadRequest)
		return
	}

	marked, err := ctl.service.MarkRead(c.Request.Context(), uint(id), userID)
	if err != nil {
		response.HandleDomainError(c, err)
		return
	}
	if !marked {
		response.HandleError(c, nil, "notification not found", http.StatusNotFound)
		return
	}
	response.HandleNoContent(c)
}

func (ctl *Controller) MarkAllRead(c *gin.Context) {
	userID, ok := middleware.ActingUser(c)
	if !ok {
		response.HandleError(c, nil, "missing user identity", http.StatusUnauthorized)
		return
	}

	if err := ctl.service.MarkAllRead(c.Request.Context(), userID); err != nil {
		response.HandleDomainError(c, err)
		return
	}
	response.HandleNoContent(c)
}
