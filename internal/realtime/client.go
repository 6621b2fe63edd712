package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 32
)

// Client is one websocket connection of an authenticated user.
type Client struct {
	id     string
	userID int
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte

	// rooms is guarded by hub.mu
	rooms map[int]struct{}

	sendMu     sync.Mutex
	sendClosed bool
}

func newClient(hub *Hub, conn *websocket.Conn, userID int) *Client {
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		rooms:  map[int]struct{}{},
	}
}

// trySend queues msg without blocking. It returns false when the buffer is full.
func (c *Client) trySend(msg []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

func (c *Client) reply(event string, data any) {
	msg, err := encodeFrame(event, data)
	if err != nil {
		log.Errorf("realtime client %s, encode %s: %s", c.id, event, err)
		return
	}
	if !c.trySend(msg) {
		c.hub.unregister(c)
	}
}

func (c *Client) run() {
	c.hub.wg.Add(2)
	c.hub.register(c)
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
		c.hub.wg.Done()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debugf("realtime client %s read: %s", c.id, err)
			}
			return
		}
		c.handle(raw)
	}
}

func (c *Client) handle(raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.reply(EventError, map[string]string{"message": "invalid frame"})
		return
	}

	var req roomRequest
	if len(frame.Data) > 0 {
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			c.reply(EventError, map[string]string{"message": "invalid frame data"})
			return
		}
	}

	switch frame.Event {
	case EventJoinUserRoom:
		if err := c.hub.joinRoom(c, req.UserID); err != nil {
			log.Debugf("realtime client %s (user %d) tried to join room %d", c.id, c.userID, req.UserID)
			c.reply(EventError, map[string]string{"message": err.Error()})
			return
		}
		c.reply(EventRoomJoined, roomRequest{UserID: req.UserID})
	case EventLeaveUserRoom:
		c.hub.leaveRoom(c, req.UserID)
		c.reply(EventRoomLeft, roomRequest{UserID: req.UserID})
	default:
		c.reply(EventError, map[string]string{"message": "unknown event " + frame.Event})
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		c.hub.wg.Done()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
