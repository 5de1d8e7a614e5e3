package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	version string
}

func NewController(version string) *Controller {
	return &Controller{version: version}
}

func (ctl *Controller) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": ctl.version,
	})
}
