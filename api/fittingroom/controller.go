package fittingroom

import (
	"net/http"
	"strconv"

	"storeassist/api/middleware"
	"storeassist/api/response"
	"storeassist/application/fittingroom"
	"storeassist/domain/model"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service *fittingroom.Service
}

func NewController(service *fittingroom.Service) *Controller {
	return &Controller{service: service}
}

type createRequest struct {
	ItemID uint `json:"item_id" binding:"required"`
}

type respondRequest struct {
	Response string `json:"response" binding:"required"`
}

type statusRequest struct {
	Status       model.RequestStatus `json:"status" binding:"required"`
	StaffMessage string              `json:"staff_message"`
}

func (ctl *Controller) Create(c *gin.Context) {
	userID, ok := middleware.ActingUser(c)
	if !ok {
		response.HandleError(c, nil, "missing user identity", http.StatusUnauthorized)
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.HandleError(c, err, "invalid request body", http.StatusBadRequest)
		return
	}

	request, err := ctl.service.Create(c.Request.Context(), userID, req.ItemID)
	if err != nil {
		response.HandleDomainError(c, err)
		return
	}
	response.HandleCreated(c, request, "fitting room request created")
}

func (ctl *Controller) ListOpen(c *gin.Context) {
	requests, err := ctl.service.ListOpen(c.Request.Context())
	if err != nil {
		response.HandleDomainError(c, err)
		return
	}
	response.HandleSuccess(c, requests, "open fitting room requests")
}

// Respond records the staff response on a notification and relays it to
// the customer when the notification is addressed to one.
func (ctl *Controller) Respond(c *gin.Context) {
	notificationID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.HandleError(c, err, "invalid request body", http.StatusBadRequest)
		return
	}

	responded, err := ctl.service.Respond(c.Request.Context(), notificationID, req.Response)
	if err != nil {
		response.HandleDomainError(c, err)
		return
	}
	if !responded {
		response.HandleError(c, nil, "notification not found", http.StatusNotFound)
		return
	}
	response.HandleSuccess(c, nil, "response recorded")
}

func (ctl *Controller) SetStatus(c *gin.Context) {
	staffID, ok := middleware.ActingUser(c)
	if !ok {
		response.HandleError(c, nil, "missing user identity", http.StatusUnauthorized)
		return
	}

	requestID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.HandleError(c, err, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := ctl.service.SetStatus(c.Request.Context(), requestID, staffID, req.Status, req.StaffMessage); err != nil {
		response.HandleDomainError(c, err)
		return
	}
	response.HandleSuccess(c, nil, "request status updated")
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		response.HandleError(c, err, "invalid "+param, http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}
