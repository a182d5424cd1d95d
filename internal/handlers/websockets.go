package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000

	wsTypeFleet = "fleet"
	wsTypeError = "error"
)

// wsEnvelope is the frame pushed to stream clients.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Dashboards are served from other origins, so any origin may connect.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// fleetStream pushes fleet snapshots to one client until it disconnects.
type fleetStream struct {
	h        *Handler
	conn     *websocket.Conn
	interval time.Duration
}

// @Summary      Live fleet stream
// @Description  WebSocket; pushes {"type":"fleet","data":FleetSnapshot} on connect and every interval
// @Tags         fleet
// @Param        interval     query  string  false  "Push interval, e.g. 500ms (max 10s)"
// @Param        interval_ms  query  int     false  "Push interval in milliseconds (max 10000)"
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	s := &fleetStream{h: h, conn: conn, interval: interval}
	s.run(c.Request.Context())
}

func (s *fleetStream) run(ctx context.Context) {
	s.conn.SetReadLimit(maxMsgSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go s.drain(done)

	push := time.NewTicker(s.interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		push.Stop()
		ping.Stop()
	}()

	if !s.pushFleet(ctx) {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.h.logInfo("ws_ping_failed", "err", err)
				return
			}
		case <-push.C:
			if !s.pushFleet(ctx) {
				return
			}
		}
	}
}

// drain reads and discards client frames so control frames are processed
// and a disconnect closes done.
func (s *fleetStream) drain(done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			s.h.logInfo("ws_read_closed", "err", err)
			return
		}
	}
}

// pushFleet sends the current snapshot. On failure the client gets an error
// frame when possible and the stream ends.
func (s *fleetStream) pushFleet(ctx context.Context) bool {
	snap, err := s.h.services.Monitoring.GetFleet(ctx)
	if err != nil {
		if s.h.log != nil {
			s.h.log.Errorw("ws_get_fleet_failed", "err", err)
		}
		_ = s.write(wsEnvelope{Type: wsTypeError, Error: errGetFleet})
		return false
	}
	if err := s.write(wsEnvelope{Type: wsTypeFleet, Data: snap}); err != nil {
		s.h.logInfo("ws_write_failed", "err", err)
		return false
	}
	return true
}

func (s *fleetStream) write(env wsEnvelope) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(env)
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 within bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultInterval
}

func (h *Handler) logInfo(msg string, kv ...interface{}) {
	if h.log != nil {
		h.log.Infow(msg, kv...)
	}
}
