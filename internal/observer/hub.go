package observer

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/orbarena/arena/internal/config"
	"github.com/orbarena/arena/internal/world"
)

// readWait is how long a client may stay silent. Pings go out at 9/10 of
// it and every pong extends the deadline.
var readWait = 60 * time.Second

const (
	writeWait = 5 * time.Second
	clientBuf = 8
	frameType = "FRAME"
	readLimit = 4 * 1024
)

// Hub is a Renderer that streams snapshots to websocket clients as JSON.
// Frames go out every BroadcastEvery ticks and always on a terminal
// outcome. A client that cannot keep up misses frames instead of
// stalling the tick loop.
type Hub struct {
	log      *zap.Logger
	every    uint64
	readWait time.Duration
	upgrader websocket.Upgrader

	nextID atomic.Uint64

	mu      sync.Mutex
	clients map[uint64]chan []byte
	last    []byte
}

func NewHub(cfg config.ObserverConfig, log *zap.Logger) *Hub {
	return &Hub{
		log:      log,
		every:    uint64(cfg.BroadcastEvery),
		readWait: readWait,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]chan []byte),
	}
}

// Render implements session.Renderer.
func (h *Hub) Render(snap *world.Snapshot) {
	if snap.Tick%h.every != 0 && !snap.Outcome.Terminal() {
		return
	}
	b, err := json.Marshal(NewFrame(snap))
	if err != nil {
		h.log.Error("encode observer frame", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = b
	for id, ch := range h.clients {
		select {
		case ch <- b:
		default:
			h.log.Debug("observer frame dropped", zap.Uint64("client", id))
		}
	}
}

// Clients returns the number of connected observers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler serves the websocket feed on /ws and the latest frame on /frame.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWS)
	mux.HandleFunc("/frame", h.serveFrame)
	return mux
}

func (h *Hub) serveFrame(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.mu.Lock()
	b := h.last
	h.mu.Unlock()
	if b == nil {
		rw.WriteHeader(http.StatusNoContent)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	_, _ = rw.Write(b)
}

func (h *Hub) serveWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		h.log.Debug("observer upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	id := h.nextID.Add(1)
	out := make(chan []byte, clientBuf)
	h.mu.Lock()
	h.clients[id] = out
	if h.last != nil {
		out <- h.last
	}
	h.mu.Unlock()
	h.log.Info("observer connected", zap.Uint64("client", id), zap.String("remote", r.RemoteAddr))

	defer func() {
		h.mu.Lock()
		delete(h.clients, id)
		h.mu.Unlock()
		h.log.Info("observer disconnected", zap.Uint64("client", id))
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer goroutine.
	writeErr := make(chan error, 1)
	go func() {
		ping := time.NewTicker(h.readWait * 9 / 10)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				writeErr <- ctx.Err()
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					writeErr <- err
					return
				}
			case b := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					writeErr <- err
					return
				}
			}
		}
	}()

	// The feed is one-way; reads only notice the client going away.
	conn.SetReadLimit(readLimit)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.readWait))
	})
	for {
		_ = conn.SetReadDeadline(time.Now().Add(h.readWait))
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))

	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
}
