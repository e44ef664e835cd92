package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"
	"github.com/lintang-b-s/swarmnav/pkg"
	"github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"github.com/lintang-b-s/swarmnav/pkg/engine"
	"github.com/lintang-b-s/swarmnav/pkg/engine/routing"
	http_server "github.com/lintang-b-s/swarmnav/pkg/http/server"
	"github.com/lintang-b-s/swarmnav/pkg/http/usecases"
	"github.com/lintang-b-s/swarmnav/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func squareGraph() *datastructure.Graph {
	g := datastructure.NewGraph()
	nodes := []datastructure.Node{
		datastructure.NewNode(1, 0, 0),
		datastructure.NewNode(2, 0, 0.001),
		datastructure.NewNode(3, 0.001, 0.001),
		datastructure.NewNode(4, 0.001, 0),
	}
	for _, n := range nodes {
		g.AddNode(n)
	}
	for i := range nodes {
		from, to := nodes[i], nodes[(i+1)%len(nodes)]
		length := datastructure.EdgeLength(from, to)
		g.AddEdge(datastructure.NewEdge(from.GetID(), to.GetID(), length, pkg.RESIDENTIAL))
		g.AddEdge(datastructure.NewEdge(to.GetID(), from.GetID(), length, pkg.RESIDENTIAL))
		g.AddEdgeConnection(from.GetID(), to.GetID())
		g.AddEdgeConnection(to.GetID(), from.GetID())
	}
	return g
}

func newTestServer(t *testing.T, grid *datastructure.HazardGrid, rps float64) *httptest.Server {
	t.Helper()
	registry := metrics.NewRegistry()
	e := engine.NewEngineFromParts(squareGraph(), grid, routing.DefaultConfig(), registry, zap.NewNop())
	service, err := usecases.NewRoutingService(zap.NewNop(), e, e.GetDispatcher(), e.GetSpatialIndex(), registry,
		5*time.Second, 16)
	require.NoError(t, err)

	config := http_server.Config{Port: 0, Timeout: 5 * time.Second, SearchTimeout: 5 * time.Second,
		RateLimitRPS: rps}
	srv := httptest.NewServer(NewAPI(zap.NewNop()).Handler(config, rps > 0, service, registry))
	t.Cleanup(srv.Close)
	return srv
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestComputeRoutes(t *testing.T) {
	srv := newTestServer(t, nil, 0)

	type routeBody struct {
		Data struct {
			Status string                 `json:"status"`
			Nodes  []datastructure.NodeID `json:"nodes"`
			Edges  int                    `json:"edges"`
			Path   string                 `json:"path"`
		} `json:"data"`
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantNodes  []datastructure.NodeID
	}{
		{
			name:       "node ids",
			query:      "strategy=greedy&start_node=1&end_node=2",
			wantStatus: http.StatusOK,
			wantNodes:  []datastructure.NodeID{1, 2},
		},
		{
			name:       "coordinates snapped to nodes, default strategy",
			query:      "origin_lat=0.0001&origin_lon=0&destination_lat=0.0009&destination_lon=0.0009",
			wantStatus: http.StatusOK,
			wantNodes:  []datastructure.NodeID{1, 2, 3},
		},
		{name: "unknown node", query: "start_node=1&end_node=42", wantStatus: http.StatusBadRequest},
		{name: "bad node id", query: "start_node=one&end_node=2", wantStatus: http.StatusBadRequest},
		{name: "missing coordinates", query: "origin_lat=0", wantStatus: http.StatusBadRequest},
		{
			name:       "latitude out of range",
			query:      "origin_lat=91&origin_lon=0&destination_lat=0&destination_lon=0",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "outside the map",
			query:      "origin_lat=10&origin_lon=10&destination_lat=0&destination_lon=0",
			wantStatus: http.StatusBadRequest,
		},
		{name: "unknown strategy", query: "strategy=dijkstra&start_node=1&end_node=2", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantStatus != http.StatusOK {
				var body apiError
				resp := getJSON(t, srv.URL+"/api/computeRoutes?"+tt.query, &body)
				assert.Equal(t, tt.wantStatus, resp.StatusCode)
				assert.NotEmpty(t, body.Error.Message)
				return
			}
			var body routeBody
			resp := getJSON(t, srv.URL+"/api/computeRoutes?"+tt.query, &body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, "success", body.Data.Status)
			assert.Equal(t, tt.wantNodes, body.Data.Nodes)
			assert.Equal(t, len(tt.wantNodes)-1, body.Data.Edges)
			assert.NotEmpty(t, body.Data.Path)
		})
	}
}

func TestComputeWxRoutes(t *testing.T) {
	post := func(t *testing.T, url, contentType, body string) *http.Response {
		t.Helper()
		resp, err := http.Post(url, contentType, strings.NewReader(body))
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	srv := newTestServer(t, nil, 0)
	resp := post(t, srv.URL+"/api/computeWxRoutes", "application/json",
		`{"strategy":"pso","start_x":1,"start_y":1,"end_x":5,"end_y":5}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	srv = newTestServer(t, datastructure.NewHazardGrid(100), 0)

	resp = post(t, srv.URL+"/api/computeWxRoutes", "text/plain", `{}`)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	resp = post(t, srv.URL+"/api/computeWxRoutes", "application/json", `{"strategy":"pso","start_x":-3}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, srv.URL+"/api/computeWxRoutes", "application/json",
		`{"strategy":"pso","start_x":10,"start_y":10,"end_x":30,"end_y":40}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data struct {
			Status    string                       `json:"status"`
			Positions []datastructure.GridPosition `json:"positions"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEqual(t, "failed", body.Data.Status)
	assert.NotEmpty(t, body.Data.Positions)

	resp = post(t, srv.URL+"/api/computeWxRoutes", "application/json",
		`{"strategy":"aco","start_x":10,"start_y":10,"end_x":30,"end_y":40}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "failed", body.Data.Status)
	assert.Empty(t, body.Data.Positions)
}

func TestStrategiesHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil, 0)

	var body struct {
		Data struct {
			Strategies []routing.StrategyInfo `json:"strategies"`
		} `json:"data"`
	}
	resp := getJSON(t, srv.URL+"/api/strategies", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Data.Strategies, 4)
	assert.Equal(t, "pso", body.Data.Strategies[3].Name)
	assert.True(t, body.Data.Strategies[3].SupportsRealMode)
	assert.False(t, body.Data.Strategies[2].SupportsRealMode)
	_, err := uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err)

	resp = getJSON(t, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "swarmnav_graph_nodes 4")
	assert.Contains(t, string(raw), `swarmnav_http_requests_total{method="GET",path="/api/strategies",status="200"} 1`)
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, nil, 1)

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		resp := getJSON(t, srv.URL+"/api/strategies", nil)
		codes = append(codes, resp.StatusCode)
	}
	// burst of two, then the bucket refills at one token per second
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes, http.StatusTooManyRequests)
}

func TestWxRouteWebsocket(t *testing.T) {
	srv := newTestServer(t, datastructure.NewHazardGrid(100), 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, _, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/wxroute")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, wsutil.WriteClientText(conn,
		[]byte(`{"strategy":"pso","start_x":10,"start_y":10,"end_x":12,"end_y":15}`)))

	frames := 0
	for {
		msg, err := wsutil.ReadServerText(conn)
		require.NoError(t, err)

		var envelope struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.NewDecoder(bytes.NewReader(msg)).Decode(&envelope))
		if envelope.Type == "result" {
			var result struct {
				Positions []datastructure.GridPosition `json:"positions"`
			}
			require.NoError(t, json.Unmarshal(envelope.Data, &result))
			assert.Len(t, result.Positions, frames)
			break
		}

		var frame struct {
			Type      string `json:"type"`
			Iteration int    `json:"iteration"`
		}
		require.NoError(t, json.Unmarshal(envelope.Data, &frame))
		assert.Equal(t, "iteration", frame.Type)
		assert.Equal(t, frames, frame.Iteration)
		frames++
	}
	assert.Positive(t, frames)

	// validation errors come back as an error frame and keep the connection open
	require.NoError(t, wsutil.WriteClientText(conn, []byte(`{"strategy":"nope"}`)))
	msg, err := wsutil.ReadServerText(conn)
	require.NoError(t, err)
	var errBody apiError
	require.NoError(t, json.Unmarshal(msg, &errBody))
	assert.Equal(t, http.StatusText(http.StatusBadRequest), errBody.Error.Code)
}
