package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 5120
)

type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte

	// UserID is resolved once, from the credential presented at
	// connect time.
	UserID string
	// Handle identifies this connection in the presence registry;
	// a reconnect gets a fresh handle.
	Handle string

	sendMu sync.Mutex
	closed bool
}

// trySend enqueues payload for the write pump, reporting false when the
// client's buffer is full or the connection has been retired. Event
// handlers run on other connections' read goroutines, so a delivery can
// race teardown; the mutex pairs with closeSend so a late send can
// never hit a closed channel.
func (c *Client) trySend(payload []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// closeSend retires the client. Idempotent.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}
		var ev inboundEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			c.Hub.sendError(c, "invalid event payload")
			continue
		}
		switch ev.Type {
		case "sendMessage":
			c.Hub.HandleSend(c, ev)
		case "deleteMessage":
			c.Hub.HandleDelete(c, ev)
		case "addReaction":
			c.Hub.HandleReaction(c, ev)
		default:
			c.Hub.sendError(c, "unknown event type")
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)
			if err := w.Close(); err != nil {
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
