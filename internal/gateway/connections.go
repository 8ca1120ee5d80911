package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Vishal-code-E/ipl/internal/models"
)

// ViewEvent is the message shape pushed to attached views. Every event
// carries the full session snapshot.
type ViewEvent struct {
	Type   string               `json:"type"`
	State  *models.AuctionState `json:"state"`
	SentAt time.Time            `json:"sent_at"`
}

// ConnectionConfig holds WebSocket tuning for view connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	ReadBufferSize  int
	WriteBufferSize int
	SendQueueSize   int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns the default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		SendQueueSize:   16,
		CheckOrigin: func(r *http.Request) bool {
			// Same-device views only; the listener binds locally.
			return true
		},
	}
}

// ConnectionManager fans the session snapshot out to every attached
// view over WebSocket.
type ConnectionManager struct {
	mu          sync.RWMutex
	connections map[*connection]bool

	upgrader    websocket.Upgrader
	config      ConnectionConfig
	broadcastCh chan ViewEvent
}

type connection struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	manager *ConnectionManager
}

// NewConnectionManager creates a manager with the given configuration.
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[*connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan ViewEvent, 64),
	}
}

// Start processes broadcasts until ctx is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("view connection manager started")
	for {
		select {
		case <-ctx.Done():
			cm.closeAll()
			log.Info().Msg("view connection manager stopped")
			return
		case event := <-cm.broadcastCh:
			cm.fanOut(event)
		}
	}
}

// Broadcast queues a snapshot for delivery to all attached views. Drops
// the event if the queue is full; the next broadcast supersedes it
// anyway.
func (cm *ConnectionManager) Broadcast(state *models.AuctionState) {
	event := ViewEvent{Type: "state_update", State: state, SentAt: time.Now().UTC()}
	select {
	case cm.broadcastCh <- event:
	default:
		log.Warn().Msg("view broadcast queue full, dropping event")
	}
}

// ConnectionCount returns how many views are attached.
func (cm *ConnectionManager) ConnectionCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// HandleConnection upgrades the request and attaches the view. The
// current snapshot is replayed immediately so a new view never waits
// for the next operation.
func (cm *ConnectionManager) HandleConnection(w http.ResponseWriter, r *http.Request, snapshot *models.AuctionState) {
	ws, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("upgrade view connection")
		return
	}
	c := &connection{
		id:      uuid.New().String(),
		conn:    ws,
		send:    make(chan []byte, cm.config.SendQueueSize),
		manager: cm,
	}
	cm.mu.Lock()
	cm.connections[c] = true
	cm.mu.Unlock()

	if snapshot != nil {
		if data, err := json.Marshal(ViewEvent{Type: "state_update", State: snapshot, SentAt: time.Now().UTC()}); err == nil {
			c.send <- data
		}
	}

	log.Info().Str("connection_id", c.id).Msg("view attached")
	go c.writePump()
	go c.readPump()
}

func (cm *ConnectionManager) fanOut(event ViewEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("encode view event")
		return
	}
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	for c := range cm.connections {
		select {
		case c.send <- data:
		default:
			// Slow consumer; it will catch up on the next snapshot.
			log.Warn().Str("connection_id", c.id).Msg("view send queue full")
		}
	}
}

func (cm *ConnectionManager) remove(c *connection) {
	cm.mu.Lock()
	if _, ok := cm.connections[c]; ok {
		delete(cm.connections, c)
		close(c.send)
	}
	cm.mu.Unlock()
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for c := range cm.connections {
		close(c.send)
		delete(cm.connections, c)
	}
}

// writePump pushes queued events and keepalive pings to the view.
func (c *connection) writePump() {
	ticker := time.NewTicker(c.manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection. Views are read-only mirrors, so every
// inbound frame is discarded; the pump exists to detect disconnects.
func (c *connection) readPump() {
	defer func() {
		c.manager.remove(c)
		c.conn.Close()
		log.Info().Str("connection_id", c.id).Msg("view detached")
	}()
	c.conn.SetReadLimit(1024)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
