// Package realtime maintains the inventory-updates WebSocket subscription.
//
// The channel is a latest-value signal, not a queue: it retains at most one
// event, and each successfully parsed frame replaces the previous one.
// Consumers treat an event as an invalidation signal and re-query the
// authoritative state; the payload is never applied as a patch.
package realtime

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"stockdeck/internal/model"
)

// Channel owns at most one WebSocket connection, keyed by the current session
// token. There is no timed reconnect: a new connection is only attempted when
// the token changes.
type Channel struct {
	mu     sync.Mutex
	dialer *websocket.Dialer

	conn      *websocket.Conn
	connected bool
	lastEvent *model.InventoryUpdateEvent

	// epoch identifies the socket that owns the current state. Callbacks of a
	// superseded socket compare their epoch and drop their updates, so a
	// closed old socket can never stomp state belonging to a new one.
	epoch int

	subscribers []func()
}

// NewChannel creates a disconnected channel.
func NewChannel() *Channel {
	return &Channel{dialer: websocket.DefaultDialer}
}

// OnChange registers a callback invoked after every state transition
// (connection flips and event arrivals).
func (c *Channel) OnChange(fn func()) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

func (c *Channel) notifyLocked() func() {
	subs := make([]func(), len(c.subscribers))
	copy(subs, c.subscribers)
	return func() {
		for _, fn := range subs {
			fn()
		}
	}
}

// Connected reports whether the current socket is open.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// LastEvent returns the most recently parsed event, or nil.
func (c *Channel) LastEvent() *model.InventoryUpdateEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastEvent
}

// ClearLastEvent resets the retained event without touching the connection.
func (c *Channel) ClearLastEvent() {
	c.mu.Lock()
	c.lastEvent = nil
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}

// SetToken reacts to a session-token change. Any existing socket is torn down.
// An empty token leaves the channel disconnected with no retained event; a
// non-empty token dials a fresh socket against baseURL.
func (c *Channel) SetToken(baseURL, token string) {
	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.connected = false

	if token == "" {
		c.lastEvent = nil
		notify := c.notifyLocked()
		c.mu.Unlock()
		notify()
		return
	}

	wsURL, err := DeriveURL(baseURL, token)
	if err != nil {
		logrus.WithError(err).Error("invalid websocket URL")
		notify := c.notifyLocked()
		c.mu.Unlock()
		notify()
		return
	}
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()

	go c.dial(epoch, wsURL)
}

// Close tears down the active socket. The channel can be revived by a later
// SetToken.
func (c *Channel) Close() {
	c.mu.Lock()
	c.epoch++
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.connected = false
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}

func (c *Channel) dial(epoch int, wsURL string) {
	conn, resp, err := c.dialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c.mu.Lock()
	if epoch != c.epoch {
		// Token changed again while dialing; this socket is already obsolete.
		if conn != nil {
			_ = conn.Close()
		}
		c.mu.Unlock()
		return
	}

	if err != nil {
		// Socket-level failures only downgrade the connection indicator.
		logrus.WithError(err).Warn("websocket dial failed")
		c.connected = false
		notify := c.notifyLocked()
		c.mu.Unlock()
		notify()
		return
	}

	c.conn = conn
	c.connected = true
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()

	go c.readLoop(epoch, conn)
}

func (c *Channel) readLoop(epoch int, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if epoch == c.epoch {
				c.connected = false
				notify := c.notifyLocked()
				c.mu.Unlock()
				notify()
			} else {
				c.mu.Unlock()
			}
			return
		}

		var event model.InventoryUpdateEvent
		if err := json.Unmarshal(data, &event); err != nil {
			// Malformed frames are non-fatal; the last known-good event stays.
			logrus.WithError(err).Warn("failed to parse inventory update")
			continue
		}

		c.mu.Lock()
		if epoch != c.epoch {
			c.mu.Unlock()
			return
		}
		c.lastEvent = &event
		notify := c.notifyLocked()
		c.mu.Unlock()
		notify()
	}
}

// DeriveURL builds the websocket endpoint from an HTTP base URL: the scheme is
// upgraded (http→ws, https→wss), any path prefix is preserved, and the token
// travels as a query parameter.
func DeriveURL(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}

	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/api/ws"

	q := url.Values{}
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
