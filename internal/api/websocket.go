package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"phone2pc/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins, the API is meant for the local network
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSManager handles WebSocket connections and broadcasting
type WSManager struct {
	server     *Server
	clients    map[*WebSocketClient]bool
	clientsMu  sync.Mutex
	messages   chan protocol.Message
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	done       chan struct{}
	stopOnce   sync.Once
}

// WebSocketClient is one status subscriber
type WebSocketClient struct {
	manager *WSManager
	conn    *websocket.Conn
	send    chan []byte
	ip      string
}

func newWSManager(s *Server) *WSManager {
	return &WSManager{
		server:     s,
		clients:    make(map[*WebSocketClient]bool),
		messages:   make(chan protocol.Message, 16),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		done:       make(chan struct{}),
	}
}

func (m *WSManager) start() {
	for {
		select {
		case client := <-m.register:
			m.clientsMu.Lock()
			m.clients[client] = true
			n := len(m.clients)
			m.clientsMu.Unlock()
			m.server.log.Info("ws client connected from %s, total: %d", client.ip, n)

		case client := <-m.unregister:
			m.clientsMu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.send)
				m.server.log.Info("ws client disconnected from %s, total: %d", client.ip, len(m.clients))
			}
			m.clientsMu.Unlock()

		case message := <-m.messages:
			m.broadcastMessage(message)

		case <-m.done:
			m.clientsMu.Lock()
			for client := range m.clients {
				delete(m.clients, client)
				close(client.send)
			}
			m.clientsMu.Unlock()
			return
		}
	}
}

func (m *WSManager) stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

// broadcast queues message for every client. It never blocks the caller:
// when the queue is full the message is dropped.
func (m *WSManager) broadcast(message protocol.Message) {
	select {
	case m.messages <- message:
	default:
		m.server.log.Warn("ws broadcast queue full, dropping %s message", message.Type)
	}
}

func (m *WSManager) broadcastMessage(message protocol.Message) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		m.server.log.Error("failed to marshal broadcast message: %v", err)
		return
	}

	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()

	for client := range m.clients {
		select {
		case client.send <- jsonMsg:
		default:
			// Slow consumer.
			close(client.send)
			delete(m.clients, client)
		}
	}
}

// clientCount returns the number of connected subscribers.
func (m *WSManager) clientCount() int {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()
	return len(m.clients)
}

func (m *WSManager) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.server.log.Warn("failed to upgrade connection: %v", err)
		return
	}

	client := &WebSocketClient{
		manager: m,
		conn:    conn,
		send:    make(chan []byte, 64),
		ip:      r.RemoteAddr,
	}

	select {
	case m.register <- client:
	case <-m.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump reads client requests until the connection drops.
func (c *WebSocketClient) readPump() {
	defer func() {
		select {
		case c.manager.unregister <- c:
		case <-c.manager.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.manager.server.log.Warn("ws read error: %v", err)
			}
			return
		}
		c.handleMessage(message)
	}
}

// writePump writes queued messages and keep-alive pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The manager closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WebSocketClient) handleMessage(data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.manager.server.log.Warn("invalid ws message from %s: %v", c.ip, err)
		return
	}

	switch msg.Type {
	case protocol.TypeSettings:
		var payload struct {
			Sensitivity     *float64 `json:"sensitivity"`
			SmoothingFactor *float64 `json:"smoothing_factor"`
		}
		raw, _ := json.Marshal(msg.Payload)
		if err := json.Unmarshal(raw, &payload); err != nil {
			c.manager.server.log.Warn("invalid settings payload from %s: %v", c.ip, err)
			return
		}
		c.manager.server.applySettings(payload.Sensitivity, payload.SmoothingFactor)

	case protocol.TypePing:
		resp, _ := json.Marshal(protocol.Message{Type: protocol.TypePong})
		c.reply(resp)

	default:
		c.manager.server.log.Debug("ignoring ws message type %q", msg.Type)
	}
}

// reply queues data for this client only. The send channel may already be
// closed by the manager, so it goes through the same lock.
func (c *WebSocketClient) reply(data []byte) {
	c.manager.clientsMu.Lock()
	defer c.manager.clientsMu.Unlock()
	if !c.manager.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
