package wishlist

import (
	"net/http"
	"strconv"

	"storeassist/api/middleware"
	"storeassist/api/response"
	"storeassist/application/wishlist"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service *wishlist.Service
}

func NewController(service *wishlist.Service) *Controller {
	return &Controller{service: service}
}

type addRequest struct {
	ItemID uint `json:"item_id" binding:"required"`
}

type escalateRequest struct {
	ItemIDs []uint `json:"item_ids" binding:"required"`
	Notes   string `json:"notes"`
}

func (ctl *Controller) List(c *gin.Context) {
	userID, ok := middleware.ActingUser(c)
	if !ok {
		response.HandleError(c, nil, "missing user identity", http.StatusUnauthorized)
		return
	}

	entries, err := ctl.service.List(c.Request.Context(), userID)
	if err != nil {
		response.HandleDomainError(c, err)
		return
	}
	response.HandleSuccess(c, entries, "wishlist retrieved")
}

func (ctl *Controller) Add(c *gin.Context) {
	userID, ok := middleware.ActingUser(c)
	if !ok {
		response.HandleError(c, nil, "missing user identity", http.StatusUnauthorized)
		return
	}

	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.HandleError(c, err, "invalid request body", http.StatusBadRequest)
		return
	}

	added, err := ctl.service.Add(c.Request.Context(), userID, req.ItemID)
	if err != nil {
		response.HandleDomainError(c, err)
		return
	}
	if !added {
		response.HandleError(c, nil, "item not available", http.StatusNotFound)
		return
	}
	response.HandleCreated(c, gin.H{"item_id": req.ItemID}, "item saved to wishlist")
}

func (ctl *Controller) Remove(c *gin.Context) {
	userID, ok := middleware.ActingUser(c)
	if !ok {
		response.HandleError(c, nil, "missing user identity", http.StatusUnauthorized)
		return
	}

	itemID, ok := parseID(c, "itemID")
	if !ok {
		return
	}

	removed, err := ctl.service.Remove(c.Request.Context(), userID, itemID)
	if err != nil {
		response.HandleDomainError(c, err)
		return
	}
	if !removed {
		response.HandleError(c, nil, "item not on wishlist", http.StatusNotFound)
		return
	}
	response.HandleNoContent(c)
}

// Escalate converts selected wishlist entries into fitting room
// requests.
func (ctl *Controller) Escalate(c *gin.Context) {
	userID, ok := middleware.ActingUser(c)
	if !ok {
		response.HandleError(c, nil, "missing user identity", http.StatusUnauthorized)
		return
	}

	var req escalateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.HandleError(c, err, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := ctl.service.RequestFromWishlist(c.Request.Context(), userID, req.ItemIDs, req.Notes)
	if err != nil {
		response.HandleDomainError(c, err)
		return
	}
	if !created {
		response.HandleError(c, nil, "no matching wishlist entries", http.StatusUnprocessableEntity)
		return
	}
	response.HandleCreated(c, nil, "fitting room requests created")
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		response.HandleError(c, err, "invalid "+param, http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}
