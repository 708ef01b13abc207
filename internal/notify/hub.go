// ===============================
// internal/notify/hub.go - Dashboard notification hub
// ===============================

package notify

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"signagebe/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ===============================
// EVENT TYPES
// ===============================

type EventType string

const (
	TypeConnectionEstablished EventType = "connection_established"
	TypeOverrideStarted       EventType = "override_started"
	TypeOverrideStopped       EventType = "override_stopped"
)

type Event struct {
	Type       EventType   `json:"type"`
	ServiceKey string      `json:"serviceKey,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// ===============================
// CLIENT CONNECTION
// ===============================

type Client struct {
	ID         string
	ServiceKey string
	Conn       *websocket.Conn
	Hub        *Hub
	Send       chan []byte
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Dashboards only listen; inbound frames just keep the connection alive.
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for client %s: %v", c.ID, err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ===============================
// HUB
// ===============================

// Hub fans override lifecycle events out to connected dashboards, keyed by
// service so tenants only see their own events. Resolution does not depend
// on it; displays keep polling whether or not anyone is connected here.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	events     chan *Event
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan *Event, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client.ID] = client
			h.mutex.Unlock()
			log.Printf("🔌 Notification client connected: %s (service: %s)", client.ID, client.ServiceKey)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mutex.Unlock()

		case event := <-h.events:
			h.broadcast(event)
		}
	}
}

func (h *Hub) broadcast(event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal notification event: %v", err)
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for _, client := range h.clients {
		if event.ServiceKey != "" && client.ServiceKey != event.ServiceKey {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			// Slow consumer; drop the event rather than block the hub.
		}
	}
}

// ===============================
// OVERRIDE NOTIFIER
// ===============================

func (h *Hub) OverrideStarted(override *models.Override) {
	h.publish(TypeOverrideStarted, override.ServiceKey, override)
}

func (h *Hub) OverrideStopped(override *models.Override) {
	h.publish(TypeOverrideStopped, override.ServiceKey, override)
}

func (h *Hub) publish(eventType EventType, serviceKey string, data interface{}) {
	event := &Event{
		Type:       eventType,
		ServiceKey: serviceKey,
		Data:       data,
		Timestamp:  time.Now(),
	}
	select {
	case h.events <- event:
	default:
		log.Printf("⚠️ Notification queue full, dropping %s event", eventType)
	}
}

// ===============================
// HTTP UPGRADE
// ===============================

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the router layer
	},
}

// ServeWS upgrades the request and attaches the client to the hub. The
// serviceKey query param scopes which events the client receives.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	serviceKey := r.URL.Query().Get("serviceKey")
	if serviceKey == "" {
		http.Error(w, "serviceKey query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		ID:         uuid.New().String(),
		ServiceKey: serviceKey,
		Conn:       conn,
		Hub:        h,
		Send:       make(chan []byte, 64),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()

	welcome, _ := json.Marshal(&Event{
		Type:       TypeConnectionEstablished,
		ServiceKey: serviceKey,
		Timestamp:  time.Now(),
	})
	client.Send <- welcome
}
