package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/memalerts/rewards-backend/pkg/config"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin from channel pages.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// Client is one live websocket connection registered with a Hub.
type Client struct {
	conn *websocket.Conn
	send chan Message

	writeTimeout time.Duration
	pongTimeout  time.Duration

	closeOnce sync.Once
}

// ServeWS upgrades the request to a websocket, joins the given rooms, and
// pumps messages until the peer disconnects.
func ServeWS(hub *Hub, cfg config.RealtimeConfig, w http.ResponseWriter, r *http.Request, rooms ...string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		conn:         conn,
		send:         make(chan Message, cfg.SendBufferSize),
		writeTimeout: cfg.WriteTimeout,
		pongTimeout:  cfg.PongTimeout,
	}
	for _, room := range rooms {
		hub.Join(room, client)
	}

	go client.writePump()
	go client.readPump(hub)
	return nil
}

func (c *Client) enqueue(msg Message) bool {
	defer func() {
		// Send on a closed channel races with Leave; the message is lost,
		// which is fine for a disconnecting client.
		_ = recover()
	}()
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// readPump discards inbound frames (clients only listen) and unregisters the
// client once the connection dies.
func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.Leave(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	pingInterval := c.pongTimeout * 9 / 10
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
