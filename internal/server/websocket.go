package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingPeriod   = 54 * time.Second
)

// isValidOrigin allows same-origin and localhost connections, rejecting
// everything else (§6.1). A request with no Origin header is assumed to
// be a non-browser client and allowed through.
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == u.Host {
		return true
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1"
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true,
}

// HandleWebSocket upgrades an HTTP request to a websocket connection,
// registers the resulting Client on the engine goroutine, and starts its
// read/write pumps (§6.1).
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := newClient(conn, s)
	s.register <- c

	go c.writePump()
	go c.readPump()
}

// readPump forwards every well-formed client frame onto the engine's
// single inbound channel, gated by a token-bucket limiter so a flooding
// client is throttled rather than disconnected (§5).
func (c *Client) readPump() {
	defer func() {
		c.server.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.log.Debug().Err(err).Str("client", c.ID).Msg("websocket read error")
			}
			return
		}
		if err := c.limiter.Wait(context.Background()); err != nil {
			return
		}
		c.server.inbound <- inboundMessage{client: c, msg: msg}
	}
}

// writePump drains c.send to the connection, interleaving periodic pings
// so idle connections are detected and cleaned up.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case m, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(m); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
