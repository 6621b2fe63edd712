package realtime

import (
	"encoding/json"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/wodhub/internal/notifications"
	"github.com/2beens/wodhub/internal/telemetry/metrics"
)

const (
	EventNotification        = "notification"
	EventProgramNotification = "program_notification"
	EventJoinUserRoom        = "join_user_room"
	EventLeaveUserRoom       = "leave_user_room"
	EventRoomJoined          = "room_joined"
	EventRoomLeft            = "room_left"
	EventError               = "error"
)

var ErrForeignRoom = errors.New("clients can only join their own user room")

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type roomRequest struct {
	UserID int `json:"user_id"`
}

func encodeFrame(event string, data any) ([]byte, error) {
	return json.Marshal(outboundFrame{Event: event, Data: data})
}

// Hub tracks the connected clients of this instance and the per-user rooms they joined.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[int]map[*Client]struct{}

	wg             sync.WaitGroup
	metricsManager *metrics.Manager
}

func NewHub(metricsManager *metrics.Manager) *Hub {
	return &Hub{
		clients:        map[*Client]struct{}{},
		rooms:          map[int]map[*Client]struct{}{},
		metricsManager: metricsManager,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if h.metricsManager != nil {
		h.metricsManager.GaugeRealtimeConnections.Inc()
	}
	log.Debugf("realtime client %s connected for user %d", c.id, c.userID)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for userID := range c.rooms {
		h.removeFromRoomLocked(c, userID)
	}
	h.mu.Unlock()

	c.closeSend()
	if h.metricsManager != nil {
		h.metricsManager.GaugeRealtimeConnections.Dec()
	}
	log.Debugf("realtime client %s disconnected", c.id)
}

func (h *Hub) removeFromRoomLocked(c *Client, userID int) {
	room := h.rooms[userID]
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, userID)
	}
	delete(c.rooms, userID)
}

func (h *Hub) joinRoom(c *Client, userID int) error {
	if userID != c.userID {
		return ErrForeignRoom
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return nil
	}
	room, ok := h.rooms[userID]
	if !ok {
		room = map[*Client]struct{}{}
		h.rooms[userID] = room
	}
	room[c] = struct{}{}
	c.rooms[userID] = struct{}{}
	return nil
}

func (h *Hub) leaveRoom(c *Client, userID int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := c.rooms[userID]; ok {
		h.removeFromRoomLocked(c, userID)
	}
}

// Deliver pushes ev to the matching local clients: user events go to the user's
// room, broadcasts go to every client.
func (h *Hub) Deliver(ev notifications.Event) {
	var (
		msg     []byte
		err     error
		targets []*Client
	)

	h.mu.RLock()
	switch ev.Kind {
	case notifications.EventUser:
		msg, err = encodeFrame(EventNotification, ev.Notification)
		for c := range h.rooms[ev.UserID] {
			targets = append(targets, c)
		}
	case notifications.EventBroadcast:
		msg, err = encodeFrame(EventProgramNotification, ev.Broadcast)
		for c := range h.clients {
			targets = append(targets, c)
		}
	default:
		err = errors.New("unknown event kind " + string(ev.Kind))
	}
	h.mu.RUnlock()

	if err != nil {
		log.Errorf("realtime deliver: %s", err)
		return
	}

	for _, c := range targets {
		if !c.trySend(msg) {
			log.Warnf("realtime client %s is too slow, disconnecting", c.id)
			h.unregister(c)
		}
	}
}

// ConnectedClients returns the number of clients connected to this instance.
func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and waits for their goroutines to exit.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.unregister(c)
	}
	h.wg.Wait()
}
