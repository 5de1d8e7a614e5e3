package api

import (
	"storeassist/api/booth"
	"storeassist/api/fittingroom"
	"storeassist/api/health"
	"storeassist/api/middleware"
	"storeassist/api/notification"
	"storeassist/api/wishlist"
	"storeassist/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	engine *gin.Engine

	health       *health.Controller
	wishlist     *wishlist.Controller
	fittingRoom  *fittingroom.Controller
	notification *notification.Controller
	booth        *booth.Controller
}

func NewRouter(
	cfg *config.Config,
	healthCtl *health.Controller,
	wishlistCtl *wishlist.Controller,
	fittingRoomCtl *fittingroom.Controller,
	notificationCtl *notification.Controller,
	boothCtl *booth.Controller,
) *Router {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.RateLimit(&cfg.Server.RateLimit),
	)

	return &Router{
		engine:       engine,
		health:       healthCtl,
		wishlist:     wishlistCtl,
		fittingRoom:  fittingRoomCtl,
		notification: notificationCtl,
		booth:        boothCtl,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.engine.Group("/api/v1")
	v1.GET("/health", r.health.Check)

	v1.GET("/wishlist", r.wishlist.List)
	v1.POST("/wishlist/items", r.wishlist.Add)
	v1.DELETE("/wishlist/items/:itemID", r.wishlist.Remove)
	v1.POST("/wishlist/escalate", r.wishlist.Escalate)

	v1.POST("/fitting-room-requests", r.fittingRoom.Create)
	v1.GET("/fitting-room-requests/open", r.fittingRoom.ListOpen)
	v1.PUT("/fitting-room-requests/:id/status", r.fittingRoom.SetStatus)
	v1.POST("/notifications/:id/response", r.fittingRoom.Respond)

	v1.GET("/notifications", r.notification.List)
	v1.PUT("/notifications/:id/read", r.notification.MarkRead)
	v1.PUT("/notifications/read-all", r.notification.MarkAllRead)

	v1.GET("/fitting-rooms/available", r.booth.ListAvailable)
	v1.POST("/fitting-rooms/:roomNumber/reserve", r.booth.Reserve)
	v1.POST("/fitting-rooms/:roomNumber/release", r.booth.Release)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
