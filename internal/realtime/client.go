package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"pet-adoption-marketplace/internal/auth"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// Client is one authenticated socket connection.
type Client struct {
	id        string
	principal *auth.Principal
	conn      *websocket.Conn
	gateway   *Gateway
	log       *zap.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// rooms is guarded by the hub lock.
	rooms map[string]struct{}
}

func (c *Client) Principal() *auth.Principal {
	return c.principal
}

// enqueue never blocks. A client that cannot keep up is disconnected.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- payload:
		return true
	default:
		c.log.Warn("Outbound queue full, dropping client")
		c.gateway.stats.Update(func(s *Stats) { s.ClientsDropped++ })
		c.close()
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) readPump() {
	defer func() {
		c.gateway.disconnect(c)
		c.close()
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
				c.log.Debug("Socket read error", zap.Error(err))
			}
			return
		}

		var frame inbound
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.log.Debug("Ignoring malformed frame", zap.Error(err))
			continue
		}
		c.gateway.dispatch(c, frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
