package booth

import (
	"net/http"
	"strconv"
	"time"

	"storeassist/api/middleware"
	"storeassist/api/response"
	"storeassist/application/booth"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service *booth.Service
}

func NewController(service *booth.Service) *Controller {
	return &Controller{service: service}
}

type reserveRequest struct {
	Until time.Time `json:"until" binding:"required"`
}

func (ctl *Controller) ListAvailable(c *gin.Context) {
	rooms, err := ctl.service.ListAvailable(c.Request.Context())
	if err != nil {
		response.HandleDomainError(c, err)
		return
	}
	response.HandleSuccess(c, rooms, "available fitting rooms")
}

func (ctl *Controller) Reserve(c *gin.Context) {
	userID, ok := middleware.ActingUser(c)
	if !ok {
		response.HandleError(c, nil, "missing user identity", http.StatusUnauthorized)
		return
	}

	roomNumber, ok := parseRoomNumber(c)
	if !ok {
		return
	}

	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.HandleError(c, err, "invalid request body", http.StatusBadRequest)
		return
	}

	reserved, err := ctl.service.Reserve(c.Request.Context(), roomNumber, userID, req.Until)
	if err != nil {
		response.HandleDomainError(c, err)
		return
	}
	if !reserved {
		response.HandleError(c, nil, "fitting room unavailable", http.StatusConflict)
		return
	}
	response.HandleSuccess(c, nil, "fitting room reserved")
}

func (ctl *Controller) Release(c *gin.Context) {
	roomNumber, ok := parseRoomNumber(c)
	if !ok {
		return
	}

	released, err := ctl.service.Release(c.Request.Context(), roomNumber)
	if err != nil {
		response.HandleDomainError(c, err)
		return
	}
	if !released {
		response.HandleError(c, nil, "fitting room not found", http.StatusNotFound)
		return
	}
	response.HandleSuccess(c, nil, "fitting room released")
}

func parseRoomNumber(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("roomNumber"))
	if err != nil || n <= 0 {
		response.HandleError(c, err, "invalid roomNumber", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}
