package chathub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"travelbay/backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements the Client interface on top of a
// gorilla/websocket connection.
type WebSocketClient struct {
	UserID   string
	Role     string
	AgencyID string

	// Post scopes this connection to one listing conversation; zero value
	// means the client connected without a chat context.
	Post    PostKey
	HasPost bool

	Conn *websocket.Conn
	Hub  *Hub
	Send chan models.Outbound

	// mu guards closed and the Send channel close. Pushes can come from
	// goroutines outside the hub loop, which may be closing this handle
	// concurrently after a reconnect replaced it.
	mu     sync.Mutex
	closed bool
}

func (c *WebSocketClient) GetUserID() string   { return c.UserID }
func (c *WebSocketClient) GetRole() string     { return c.Role }
func (c *WebSocketClient) GetAgencyID() string { return c.AgencyID }

func (c *WebSocketClient) GetPost() (PostKey, bool) { return c.Post, c.HasPost }

// TrySend pushes a frame without blocking. A closed handle or a full
// buffer drops the frame and reports false.
func (c *WebSocketClient) TrySend(out models.Outbound) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- out:
		return true
	default:
		return false
	}
}

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close marks the handle closed and closes the Send channel, which stops
// the write pump. The read pump stops on its own once the connection is
// closed. Close is idempotent and safe against concurrent TrySend calls.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// readPump reads frames from the websocket and forwards them to the hub.
// Unregistering in the defer covers every exit path, including abnormal
// disconnects; a stale registry entry would swallow deliveries.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var env models.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("Error decoding frame from client %s: %v", c.UserID, err)
			continue
		}

		c.Hub.IncomingCh <- Frame{Client: c, Envelope: env}
	}
}

// writePump drains the Send channel into the websocket and keeps the
// connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case out, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by the hub.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(out)
			if err != nil {
				log.Printf("Error encoding frame for client %s: %v", c.UserID, err)
				continue
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
