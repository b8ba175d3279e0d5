package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message is the envelope pushed to connected clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins. Adjust this in production!
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub tracks one notification connection per authenticated user. Events
// (new message, new connection request) are pushed here; clients that are
// offline simply miss the push and pick the data up on their next poll.
type Hub struct {
	clientsByUser map[uint]*Client
	register      chan *Client
	unregister    chan *Client
	mu            sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clientsByUser: make(map[uint]*Client),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
	}
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
	done   chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		done:   make(chan struct{}),
	}
}

// Run listens on the register and unregister channels and updates hub state.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			// A reconnect replaces the previous connection for the user.
			if prev, ok := h.clientsByUser[client.userID]; ok && prev != client {
				close(prev.send)
				close(prev.done)
			}
			h.clientsByUser[client.userID] = client
			h.mu.Unlock()
			log.Printf("Registered notification client for user %d", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clientsByUser[client.userID]; ok && current == client {
				delete(h.clientsByUser, client.userID)
				close(client.send)
				close(client.done)
			}
			h.mu.Unlock()
			log.Printf("Unregistered notification client for user %d", client.userID)
		}
	}
}

// SendToUser queues an event for the user's connection, if any.
func (h *Hub) SendToUser(userID uint, messageType string, data interface{}) {
	h.mu.RLock()
	client, exists := h.clientsByUser[userID]
	h.mu.RUnlock()
	if !exists || client == nil {
		log.Printf("No active client found for user %d", userID)
		return
	}

	msg := Message{
		Type: messageType,
		Data: data,
	}
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message for user %d: %v", userID, err)
		return
	}

	select {
	case client.send <- messageBytes:
	default:
		log.Printf("Send channel full for user %d; unregistering client", userID)
		h.unregister <- client
	}
}

// ServeUser upgrades the connection and registers it for the given user.
// Authentication happens upstream; callers pass the verified user id.
func (h *Hub) ServeUser(w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := NewClient(h, conn, userID)
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection; clients only listen, so inbound frames
// beyond pongs are discarded.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Unexpected close: %v", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Error writing message to user %d: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
