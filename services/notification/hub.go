package notification

import (
	"encoding/json"
	"sync"
	"time"

	"medibook/models"
	"medibook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TopicAdmins is the shared channel every authenticated admin session joins.
const TopicAdmins = "admins"

// UserTopic names the per-identity channel for a user.
func UserTopic(userID string) string {
	return "user:" + userID
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// authMessage is the first frame a client must send after connecting.
type authMessage struct {
	Token string `json:"token"`
}

// Client represents a single real-time connection. A client starts
// unauthenticated; it joins its channels only after presenting a valid token,
// and is forcibly disconnected if authentication fails.
type Client struct {
	ID     string
	UserID string
	Role   models.Role
	Send   chan []byte

	conn          Conn
	topics        []string
	authenticated bool
}

// Hub owns the connection registry: an explicit mapping from channel name to
// the set of subscribed clients. All operations are safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // topic -> set of clients
	all     map[*Client]struct{}            // every connected client
}

// NewHub creates a Hub ready to manage real-time connections.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
	}
}

// NewClient wraps a connection as an unauthenticated client and registers it.
func (h *Hub) NewClient(conn Conn) *Client {
	client := &Client{
		ID:   uuid.New().String(),
		Send: make(chan []byte, 256),
		conn: conn,
	}

	h.mu.Lock()
	h.all[client] = struct{}{}
	h.mu.Unlock()

	return client
}

// Authenticate validates the client's credential token and, on success, joins
// the client to its per-identity channel and, for admins, the shared admins
// channel. A client may authenticate at most once.
func (h *Hub) Authenticate(client *Client, token string) error {
	userID, roleStr, err := utils.ExtractIdentityFromToken(token)
	if err != nil {
		return utils.UnauthenticatedError("invalid credential token")
	}
	role, ok := models.ParseRole(roleStr)
	if !ok {
		return utils.UnauthenticatedError("unknown role in credential token")
	}

	topics := []string{UserTopic(userID)}
	if role == models.RoleAdmin {
		topics = append(topics, TopicAdmins)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, connected := h.all[client]; !connected || client.authenticated {
		return utils.UnauthenticatedError("connection not eligible for authentication")
	}

	client.UserID = userID
	client.Role = role
	client.authenticated = true
	client.topics = topics
	for _, topic := range topics {
		if h.clients[topic] == nil {
			h.clients[topic] = make(map[*Client]struct{})
		}
		h.clients[topic][client] = struct{}{}
	}
	return nil
}

// Unregister removes a client from the hub and all of its channels, and
// closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}

	for _, topic := range client.topics {
		if subscribers, ok := h.clients[topic]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.clients, topic)
			}
		}
	}

	delete(h.all, client)
	close(client.Send)
}

// broadcast sends an event to all clients subscribed to the given topic.
// Sends are non-blocking: a client with a full buffer misses the event.
func (h *Hub) broadcast(topic string, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		utils.GetLogger().Error("Failed to marshal event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[topic] {
		select {
		case client.Send <- data:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
}

// PublishToUser implements Publisher.
func (h *Hub) PublishToUser(userID string, event Event) {
	h.broadcast(UserTopic(userID), event)
}

// PublishToAdmins implements Publisher.
func (h *Hub) PublishToAdmins(event Event) {
	h.broadcast(TopicAdmins, event)
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// TopicCount returns the number of clients subscribed to a channel.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// ReadPump drives the connection lifecycle: the first frame must be an
// authenticate message carrying a valid token, otherwise the connection is
// closed. After authentication the pump keeps reading until the transport
// errors, then unregisters the client.
func (h *Hub) ReadPump(client *Client) {
	defer func() {
		h.Unregister(client)
		client.conn.Close()
	}()

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		if client.authenticated {
			// Authenticated clients are receive-only; inbound frames are ignored.
			continue
		}

		var msg authMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Token == "" {
			utils.GetLogger().Warn("Realtime client sent malformed authenticate frame", zap.String("client", client.ID))
			return
		}
		if err := h.Authenticate(client, msg.Token); err != nil {
			utils.GetLogger().Warn("Realtime client failed authentication", zap.String("client", client.ID), zap.Error(err))
			return
		}
		utils.GetLogger().Debug("Realtime client authenticated",
			zap.String("client", client.ID), zap.String("userID", client.UserID))
	}
}

// WritePump writes queued events to the connection until the send channel is
// closed or the transport errors.
func (h *Hub) WritePump(client *Client, messageType int) {
	defer client.conn.Close()

	for message := range client.Send {
		if err := client.conn.WriteMessage(messageType, message); err != nil {
			return
		}
	}
}
