package controllers

import (
	"github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/engine/routing"
	"github.com/lintang-b-s/swarmnav/pkg/http/usecases"
)

type computeRoutesRequest struct {
	Strategy       string  `json:"strategy" validate:"required,oneof=empty greedy aco pso"`
	OriginLat      float64 `json:"origin_lat" validate:"gte=-90,lte=90"`
	OriginLon      float64 `json:"origin_lon" validate:"gte=-180,lte=180"`
	DestinationLat float64 `json:"destination_lat" validate:"gte=-90,lte=90"`
	DestinationLon float64 `json:"destination_lon" validate:"gte=-180,lte=180"`
}

type computeRoutesByNodeRequest struct {
	Strategy  string `json:"strategy" validate:"required,oneof=empty greedy aco pso"`
	StartNode int64  `json:"start_node"`
	EndNode   int64  `json:"end_node"`
}

type wxRouteRequest struct {
	Strategy string  `json:"strategy" validate:"required,oneof=empty greedy aco pso"`
	StartX   float64 `json:"start_x" validate:"gte=0"`
	StartY   float64 `json:"start_y" validate:"gte=0"`
	EndX     float64 `json:"end_x" validate:"gte=0"`
	EndY     float64 `json:"end_y" validate:"gte=0"`
}

type routeResponse struct {
	Strategy   string                 `json:"strategy"`
	Status     string                 `json:"status"`
	Reason     string                 `json:"reason,omitempty"`
	Iterations int                    `json:"iterations"`
	Distance   float64                `json:"distance"`
	Path       string                 `json:"path"`
	Nodes      []datastructure.NodeID `json:"nodes"`
	Edges      int                    `json:"edges"`
	Cached     bool                   `json:"cached"`
}

func NewRouteResponse(s usecases.RouteSummary) routeResponse {
	return routeResponse{
		Strategy:   s.Strategy,
		Status:     s.Status,
		Reason:     s.Reason,
		Iterations: s.Iterations,
		Distance:   s.Distance,
		Path:       s.Polyline,
		Nodes:      s.Nodes,
		Edges:      s.Edges,
		Cached:     s.Cached,
	}
}

type wxRouteResponse struct {
	Strategy    string                       `json:"strategy"`
	Status      string                       `json:"status"`
	Reason      string                       `json:"reason,omitempty"`
	Iterations  int                          `json:"iterations"`
	BestFitness float64                      `json:"best_fitness"`
	Positions   []datastructure.GridPosition `json:"positions"`
}

func NewWxRouteResponse(s usecases.WxRouteSummary) wxRouteResponse {
	return wxRouteResponse{
		Strategy:    s.Strategy,
		Status:      s.Status,
		Reason:      s.Reason,
		Iterations:  s.Iterations,
		BestFitness: s.BestFitness,
		Positions:   s.Positions,
	}
}

// wxRouteFrame. one websocket frame per simulation iteration.
type wxRouteFrame struct {
	Type       string                     `json:"type"`
	Iteration  int                        `json:"iteration"`
	GlobalBest datastructure.GridPosition `json:"global_best"`
	Fitness    float64                    `json:"fitness"`
}

type strategiesResponse struct {
	Strategies []routing.StrategyInfo `json:"strategies"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
