package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Capture/internal/app"
	"github.com/dkeye/Capture/internal/config"
	"github.com/dkeye/Capture/internal/core"
	"github.com/dkeye/Capture/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the persistent signaling channels. Each connection
// gets a read/write pump pair; events of one session are handled
// serially by its read pump, sessions run in parallel.
type Controller struct {
	Coord *app.Coordinator
	Cfg   *config.Config
}

func NewController(coord *app.Coordinator, cfg *config.Config) *Controller {
	return &Controller{Coord: coord, Cfg: cfg}
}

type WsSignalConn struct {
	conn   *websocket.Conn
	send   chan core.Frame
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	sid    domain.SessionID
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

func (c *WsSignalConn) bind(sid domain.SessionID) {
	c.mu.Lock()
	c.sid = sid
	c.mu.Unlock()
}

func (c *WsSignalConn) boundSID() domain.SessionID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sid
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	ctx, cancel := context.WithCancel(ctx)
	conn := &WsSignalConn{
		conn:   ws,
		send:   make(chan core.Frame, 32),
		cancel: cancel,
	}
	log.Info().Str("module", "signal").Msg("new WS connection")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, conn)
}
