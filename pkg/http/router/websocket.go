package router

import (
	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/swarmnav/pkg/http/router/controllers"
	"github.com/lintang-b-s/swarmnav/pkg/metrics"
)

// websocketRoutes. GET /ws/wxroute streams one frame per simulation iteration of a raster search.
func (api *API) websocketRoutes(router *httprouter.Router, routingService controllers.RoutingService,
	registry *metrics.Registry) {
	api.hub = controllers.NewHub(routingService, api.log, registry.WebsocketFrames.Inc)
	router.GET("/ws/wxroute", api.hub.ServeWxRoute)
}
