package services

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents an authenticated WebSocket connection.
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
}

// Hub maintains the set of connected clients and the per-trip rooms.
// Delivery is best-effort and at-most-once per connected session: a
// full send buffer or a disconnected recipient drops the event.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[uint]map[*Client]bool // tripID -> members
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			logrus.WithField("userId", client.UserID).Info("websocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				for tripID, members := range h.rooms {
					delete(members, client)
					if len(members) == 0 {
						delete(h.rooms, tripID)
					}
				}
				close(client.Send)
			}
			h.mutex.Unlock()
			logrus.WithField("userId", client.UserID).Info("websocket client disconnected")
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub and its rooms.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinTrip adds the client to a trip room.
func (h *Hub) JoinTrip(client *Client, tripID uint) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.rooms[tripID] == nil {
		h.rooms[tripID] = make(map[*Client]bool)
	}
	h.rooms[tripID][client] = true
}

// LeaveTrip removes the client from a trip room.
func (h *Hub) LeaveTrip(client *Client, tripID uint) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if members, ok := h.rooms[tripID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, tripID)
		}
	}
}

// WebSocketMessage is the JSON envelope for every frame in both
// directions: {"type": <event kind>, "data": <payload>}.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// EmitToUser sends an event to every connected session of a user.
func (h *Hub) EmitToUser(userID uint, eventKind string, payload interface{}) {
	data, err := json.Marshal(WebSocketMessage{Type: eventKind, Data: payload})
	if err != nil {
		logrus.WithError(err).WithField("event", eventKind).Error("failed to marshal websocket event")
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Send <- data:
			default:
				// Buffer full: drop rather than block the mutation path.
				logrus.WithField("userId", client.UserID).Warn("websocket send buffer full, dropping event")
			}
		}
	}
}

// EmitToTrip sends an event to every session in a trip room.
func (h *Hub) EmitToTrip(tripID uint, eventKind string, payload interface{}) {
	data, err := json.Marshal(WebSocketMessage{Type: eventKind, Data: payload})
	if err != nil {
		logrus.WithError(err).WithField("event", eventKind).Error("failed to marshal websocket event")
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for client := range h.rooms[tripID] {
		select {
		case client.Send <- data:
		default:
			logrus.WithField("userId", client.UserID).Warn("websocket send buffer full, dropping event")
		}
	}
}

// ConnectedClients returns the number of connected clients.
func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and starts the client pumps.
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("websocket upgrade failed")
		return
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Hub:    hub,
	}

	client.Hub.Register(client)

	go client.writePump()
	go client.readPump()
}

// readPump consumes frames from the connection. Clients drive trip
// room membership with {"type":"trip:join","data":<tripId>} and
// {"type":"trip:leave","data":<tripId>} frames.
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Warn("websocket read error")
			}
			break
		}

		var wsMessage WebSocketMessage
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			logrus.WithError(err).Warn("invalid websocket frame")
			continue
		}

		tripID, ok := wsMessage.Data.(float64)
		if !ok || tripID <= 0 {
			continue
		}

		switch wsMessage.Type {
		case "trip:join":
			c.Hub.JoinTrip(c, uint(tripID))
		case "trip:leave":
			c.Hub.LeaveTrip(c, uint(tripID))
		}
	}
}

// writePump pumps events from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logrus.WithError(err).Warn("websocket write error")
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
