package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/swarmnav/pkg"
	"github.com/lintang-b-s/swarmnav/pkg/datastructure"
	helper "github.com/lintang-b-s/swarmnav/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type routingAPI struct {
	routingService RoutingService
	validate       *requestValidator
	log            *zap.Logger
}

func New(routingService RoutingService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		routingService: routingService,
		validate:       newRequestValidator(),
		log:            log,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/computeRoutes", api.computeRoutes)
	group.POST("/computeWxRoutes", api.computeWxRoutes)
	group.GET("/strategies", api.strategies)
}

// computeRoutes godoc
//
//	@Summary	search a road route with the selected strategy. either coordinates or node ids.
//	@Tags		routing
//	@Param		strategy		query	string	false	"empty, greedy, aco or pso (default greedy)"
//	@Param		origin_lat		query	number	false	"origin latitude"
//	@Param		origin_lon		query	number	false	"origin longitude"
//	@Param		destination_lat	query	number	false	"destination latitude"
//	@Param		destination_lon	query	number	false	"destination longitude"
//	@Param		start_node		query	int		false	"start node id, replaces the coordinates"
//	@Param		end_node		query	int		false	"end node id"
//	@Produce	json
//	@Router		/computeRoutes [get]
func (api *routingAPI) computeRoutes(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	query := r.URL.Query()
	strategyName := query.Get("strategy")
	if strategyName == "" {
		strategyName = pkg.GREEDY.String()
	}

	if query.Has("start_node") || query.Has("end_node") {
		api.computeRoutesByNode(w, r, strategyName)
		return
	}

	var (
		request computeRoutesRequest
		err     error
	)
	request.Strategy = strategyName
	request.OriginLat, err = strconv.ParseFloat(query.Get("origin_lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("origin_lat is required and must be a valid float"))
		return
	}
	request.OriginLon, err = strconv.ParseFloat(query.Get("origin_lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("origin_lon is required and must be a valid float"))
		return
	}
	request.DestinationLat, err = strconv.ParseFloat(query.Get("destination_lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("destination_lat is required and must be a valid float"))
		return
	}
	request.DestinationLon, err = strconv.ParseFloat(query.Get("destination_lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("destination_lon is required and must be a valid float"))
		return
	}
	if err := api.validate.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	strategy, _ := pkg.GetStrategyType(request.Strategy)
	summary, err := api.routingService.ComputeRoute(r.Context(), strategy, request.OriginLat, request.OriginLon,
		request.DestinationLat, request.DestinationLon)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": NewRouteResponse(summary)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *routingAPI) computeRoutesByNode(w http.ResponseWriter, r *http.Request, strategyName string) {
	var (
		request computeRoutesByNodeRequest
		err     error
	)
	query := r.URL.Query()
	request.Strategy = strategyName
	request.StartNode, err = strconv.ParseInt(query.Get("start_node"), 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("start_node must be a valid node id"))
		return
	}
	request.EndNode, err = strconv.ParseInt(query.Get("end_node"), 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("end_node must be a valid node id"))
		return
	}
	if err := api.validate.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	strategy, _ := pkg.GetStrategyType(request.Strategy)
	summary, err := api.routingService.ComputeRouteBetweenNodes(r.Context(), strategy,
		datastructure.NodeID(request.StartNode), datastructure.NodeID(request.EndNode))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": NewRouteResponse(summary)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// computeWxRoutes godoc
//
//	@Summary	search the hazard raster, the answer is the convergence trace of the global best position.
//	@Tags		routing
//	@Accept		json
//	@Produce	json
//	@Router		/computeWxRoutes [post]
func (api *routingAPI) computeWxRoutes(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request wxRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if err := api.validate.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	strategy, _ := pkg.GetStrategyType(request.Strategy)
	summary, err := api.routingService.ComputeWxRoute(r.Context(), strategy,
		datastructure.NewGridPosition(request.StartX, request.StartY),
		datastructure.NewGridPosition(request.EndX, request.EndY), nil)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": NewWxRouteResponse(summary)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// strategies godoc
//
//	@Summary	registered strategies and whether they can search the hazard raster.
//	@Tags		routing
//	@Produce	json
//	@Router		/strategies [get]
func (api *routingAPI) strategies(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	resp := strategiesResponse{Strategies: api.routingService.Strategies()}
	if err := writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
