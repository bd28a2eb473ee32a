package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/cardman/internal/service"
)

// MessageTypeCards tags a message carrying the full card list.
const MessageTypeCards = "cards"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocketHub manages WebSocket connections. Each client subscribes to the
// card service on its own, so its first message is the current list and
// every later one follows a mutation.
type WebSocketHub struct {
	cards *service.CardService
	log   *zap.SugaredLogger

	mu      sync.RWMutex
	clients map[*WebSocketClient]bool
}

// WebSocketClient represents a connected WebSocket client.
type WebSocketClient struct {
	hub         *WebSocketHub
	conn        *websocket.Conn
	send        chan []byte
	unsubscribe func()
}

// WebSocketMessage is the JSON message sent to clients.
type WebSocketMessage struct {
	Type string       `json:"type"`
	Data []model.Card `json:"data"`
}

// NewWebSocketHub creates a new WebSocket hub over the card service.
func NewWebSocketHub(cards *service.CardService, log *zap.SugaredLogger) *WebSocketHub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &WebSocketHub{
		cards:   cards,
		log:     log.Named("ws"),
		clients: make(map[*WebSocketClient]bool),
	}
}

// clientSubscriber forwards card snapshots to one client.
type clientSubscriber struct {
	client *WebSocketClient
}

func (s clientSubscriber) OnCards(cards []model.Card) {
	data, err := json.Marshal(WebSocketMessage{Type: MessageTypeCards, Data: cards})
	if err != nil {
		s.client.hub.log.Errorw("failed to marshal cards", "error", err)
		return
	}
	s.client.hub.trySend(s.client, data)
}

// OnComplete disconnects the client once the card service shuts down.
func (s clientSubscriber) OnComplete() {
	s.client.hub.removeClient(s.client)
}

// trySend attempts to send data to a client, handling the case where
// the client's channel was closed between snapshot and send.
func (h *WebSocketHub) trySend(client *WebSocketClient, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed by removeClient - client already cleaned up
		}
	}()

	select {
	case client.send <- data:
	default:
		// Client buffer full, close it
		h.log.Warnw("websocket client too slow, disconnecting")
		h.removeClient(client)
	}
}

func (h *WebSocketHub) addClient(client *WebSocketClient) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
}

func (h *WebSocketHub) removeClient(client *WebSocketClient) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	unsubscribe := client.unsubscribe
	h.mu.Unlock()

	if ok && unsubscribe != nil {
		unsubscribe()
	}
}

// ServeWS handles WebSocket connection requests.
func (h *WebSocketHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "error", err)
		return
	}

	client := &WebSocketClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	// Register before subscribing so a closed service can still disconnect
	// the client. The replayed snapshot lands in the buffer before the pumps
	// start.
	h.addClient(client)
	unsubscribe := h.cards.Subscribe(clientSubscriber{client: client})

	h.mu.Lock()
	_, live := h.clients[client]
	client.unsubscribe = unsubscribe
	h.mu.Unlock()
	if !live {
		unsubscribe()
	}

	go client.writePump()
	go client.readPump()
}

// Close disconnects every client.
func (h *WebSocketHub) Close() {
	h.mu.RLock()
	clients := make([]*WebSocketClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.removeClient(client)
	}
}

// readPump reads messages from the WebSocket connection.
// We don't expect client messages, but we need to read to detect disconnects.
func (c *WebSocketClient) readPump() {
	defer func() {
		// Closing send signals writePump to exit; writePump closes the connection
		c.hub.removeClient(c)
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debugw("websocket read error", "error", err)
			}
			break
		}
	}
}

// writePump writes messages to the WebSocket connection.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(30 * time.Second) // Ping interval
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One frame per message so every frame is a complete JSON document
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
