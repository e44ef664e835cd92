package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/swarmnav/pkg"
	"github.com/lintang-b-s/swarmnav/pkg/datastructure"
	"go.uber.org/zap"
)

// Subscriber. one websocket client. every request it sends starts a raster search whose iterations are
// streamed back as frames, followed by a final result frame.
type Subscriber struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id  uint
	hub *Hub
}

func (s *Subscriber) readRequest() (*wxRouteRequest, error) {
	h, r, err := wsutil.NextReader(s.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(s.conn, ws.StateServerSide)(h, r)
	}

	req := &wxRouteRequest{}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Subscriber) write(x interface{}) error {
	w := wsutil.NewWriter(s.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	s.io.Lock()
	defer s.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

func (s *Subscriber) writeError(status int, message string) error {
	return s.write(envelope{"error": newErrorResponse(status, message).Error})
}

// StreamWxRoute. handles a single request. control frames return a nil request and are not an error.
func (s *Subscriber) StreamWxRoute(ctx context.Context) error {
	req, err := s.readRequest()
	if err != nil {
		return err
	}
	if req == nil {
		return nil
	}

	if err := s.hub.validate.Struct(req); err != nil {
		return s.writeError(http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var writeErr error
	observer := func(iteration int, globalBest datastructure.GridPosition, fitness float64) {
		if writeErr != nil {
			return
		}
		writeErr = s.write(envelope{"data": wxRouteFrame{
			Type:       "iteration",
			Iteration:  iteration,
			GlobalBest: globalBest,
			Fitness:    fitness,
		}})
		if writeErr != nil {
			// client is gone, stop the simulation
			cancel()
			return
		}
		s.hub.onFrame()
	}

	strategy, _ := pkg.GetStrategyType(req.Strategy)
	summary, err := s.hub.routingService.ComputeWxRoute(ctx, strategy,
		datastructure.NewGridPosition(req.StartX, req.StartY), datastructure.NewGridPosition(req.EndX, req.EndY),
		observer)
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		return s.writeError(statusCode(err), errorMessage(err))
	}

	return s.write(envelope{"data": NewWxRouteResponse(summary), "type": "result"})
}

type Hub struct {
	mu             sync.RWMutex
	seq            uint
	us             []*Subscriber
	ns             map[uint]*Subscriber
	routingService RoutingService
	validate       *requestValidator
	log            *zap.Logger
	onFrame        func()
}

// NewHub. onFrame is called after every iteration frame written, may be nil.
func NewHub(routingService RoutingService, log *zap.Logger, onFrame func()) *Hub {
	if onFrame == nil {
		onFrame = func() {}
	}
	return &Hub{
		ns:             make(map[uint]*Subscriber),
		us:             make([]*Subscriber, 0),
		routingService: routingService,
		validate:       newRequestValidator(),
		log:            log,
		onFrame:        onFrame,
	}
}

func (h *Hub) Register(conn net.Conn) *Subscriber {
	sub := &Subscriber{
		hub:  h,
		conn: conn,
	}

	h.mu.Lock()
	sub.id = h.seq
	h.ns[sub.id] = sub
	h.us = append(h.us, sub)
	h.seq++
	h.mu.Unlock()

	return sub
}

func (h *Hub) Remove(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.ns[sub.id]; !ok {
		return
	}
	delete(h.ns, sub.id)

	i := sort.Search(len(h.us), func(i int) bool {
		return h.us[i].id >= sub.id
	})

	newUs := make([]*Subscriber, len(h.us)-1)
	copy(newUs[:i], h.us[:i])
	copy(newUs[i:], h.us[i+1:])
	h.us = newUs
}

func (h *Hub) NumberOfSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.us)
}

// ServeWxRoute. GET /ws/wxroute, upgrades to a websocket and serves requests until the client leaves.
func (h *Hub) ServeWxRoute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	// the server read and write timeouts are meant for plain requests, a stream lives until the client leaves
	_ = conn.SetDeadline(time.Time{})

	sub := h.Register(conn)
	defer func() {
		h.Remove(sub)
		conn.Close()
	}()
	h.log.Debug("websocket subscriber connected", zap.Uint("id", sub.id))

	for {
		if err := sub.StreamWxRoute(r.Context()); err != nil {
			h.log.Debug("websocket subscriber left", zap.Uint("id", sub.id), zap.Error(err))
			return
		}
	}
}
