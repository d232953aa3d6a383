package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdeck/internal/model"
)

func TestDeriveURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{name: "http", base: "http://localhost:8080", want: "ws://localhost:8080/api/ws?token=tok"},
		{name: "https", base: "https://api.example.com", want: "wss://api.example.com/api/ws?token=tok"},
		{name: "path prefix preserved", base: "https://example.com/backend/", want: "wss://example.com/backend/api/ws?token=tok"},
		{name: "ws passthrough", base: "ws://example.com", want: "ws://example.com/api/ws?token=tok"},
		{name: "unsupported scheme", base: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveURL(tt.base, "tok")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// eventServer upgrades connections at /api/ws and hands each one to accept.
func eventServer(t *testing.T, accept func(conn *websocket.Conn, token string)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ws" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		accept(conn, r.URL.Query().Get("token"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func testEvent(inventoryID string, quantity int) model.InventoryUpdateEvent {
	return model.InventoryUpdateEvent{
		OperationType: model.OpAdjust,
		InventoryID:   inventoryID,
		SKUID:         "sku-1",
		SKUName:       "Widget",
		StoreID:       "store-1",
		StoreName:     "Downtown",
		DeltaQuantity: 1,
		NewQuantity:   quantity,
		Version:       quantity,
		UpdatedAt:     time.Now().UTC(),
	}
}

func TestConnectAndReceiveEvents(t *testing.T) {
	frames := make(chan []byte, 4)
	srv := eventServer(t, func(conn *websocket.Conn, token string) {
		assert.Equal(t, "secret", token)
		for frame := range frames {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
		}
	})

	c := NewChannel()
	defer c.Close()
	c.SetToken(srv.URL, "secret")

	waitFor(t, c.Connected, "channel never connected")
	assert.Nil(t, c.LastEvent(), "no event retained before the first frame")

	frame, _ := json.Marshal(testEvent("inv-1", 5))
	frames <- frame
	waitFor(t, func() bool { return c.LastEvent() != nil }, "event never arrived")
	assert.Equal(t, "inv-1", c.LastEvent().InventoryID)

	// A newer event replaces the retained one; the channel is not a queue.
	frame, _ = json.Marshal(testEvent("inv-2", 6))
	frames <- frame
	waitFor(t, func() bool {
		e := c.LastEvent()
		return e != nil && e.InventoryID == "inv-2"
	}, "second event never replaced the first")
}

func TestMalformedFrameKeepsLastGoodEvent(t *testing.T) {
	frames := make(chan []byte, 4)
	srv := eventServer(t, func(conn *websocket.Conn, _ string) {
		for frame := range frames {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
		}
	})

	c := NewChannel()
	defer c.Close()
	c.SetToken(srv.URL, "tok")
	waitFor(t, c.Connected, "channel never connected")

	good, _ := json.Marshal(testEvent("inv-1", 5))
	frames <- good
	waitFor(t, func() bool { return c.LastEvent() != nil }, "event never arrived")

	frames <- []byte("{not json")
	frames <- []byte(`"wrong shape"`)

	// The connection survives and the retained event is unchanged.
	probe, _ := json.Marshal(testEvent("inv-2", 7))
	frames <- probe
	waitFor(t, func() bool {
		e := c.LastEvent()
		return e != nil && e.InventoryID == "inv-2"
	}, "channel stopped processing after malformed frames")
	assert.True(t, c.Connected())
}

func TestEmptyTokenDisconnectsAndClears(t *testing.T) {
	frames := make(chan []byte, 1)
	srv := eventServer(t, func(conn *websocket.Conn, _ string) {
		for frame := range frames {
			_ = conn.WriteMessage(websocket.TextMessage, frame)
		}
	})

	c := NewChannel()
	defer c.Close()
	c.SetToken(srv.URL, "tok")
	waitFor(t, c.Connected, "channel never connected")

	frame, _ := json.Marshal(testEvent("inv-1", 5))
	frames <- frame
	waitFor(t, func() bool { return c.LastEvent() != nil }, "event never arrived")

	c.SetToken(srv.URL, "")
	assert.False(t, c.Connected())
	assert.Nil(t, c.LastEvent(), "logout clears the retained event")
}

func TestTokenChangeSupersedesOldSocket(t *testing.T) {
	var mu sync.Mutex
	conns := map[string]*websocket.Conn{}
	srv := eventServer(t, func(conn *websocket.Conn, token string) {
		mu.Lock()
		conns[token] = conn
		mu.Unlock()
		// Keep the connection open; writes happen from the test body.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	c := NewChannel()
	defer c.Close()
	c.SetToken(srv.URL, "old")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return conns["old"] != nil
	}, "first socket never connected")

	c.SetToken(srv.URL, "new")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return conns["new"] != nil
	}, "second socket never connected")
	waitFor(t, c.Connected, "channel not connected after re-key")

	// A frame from the superseded socket must not surface. The old server
	// handler may race its own shutdown, so tolerate a write error.
	mu.Lock()
	old := conns["old"]
	mu.Unlock()
	frame, _ := json.Marshal(testEvent("stale", 1))
	_ = old.WriteMessage(websocket.TextMessage, frame)

	mu.Lock()
	fresh := conns["new"]
	mu.Unlock()
	frame, _ = json.Marshal(testEvent("fresh", 2))
	require.NoError(t, fresh.WriteMessage(websocket.TextMessage, frame))

	waitFor(t, func() bool { return c.LastEvent() != nil }, "event never arrived")
	assert.Equal(t, "fresh", c.LastEvent().InventoryID,
		"superseded socket must not publish events")
}

func TestServerCloseFlipsConnectedWithoutReconnect(t *testing.T) {
	srv := eventServer(t, func(conn *websocket.Conn, _ string) {
		conn.Close()
	})

	c := NewChannel()
	defer c.Close()
	c.SetToken(srv.URL, "tok")

	waitFor(t, func() bool { return !c.Connected() }, "connected flag never dropped")

	// No timed retry: the channel stays down until the token changes again.
	time.Sleep(50 * time.Millisecond)
	assert.False(t, c.Connected())
}

func TestDialFailureOnlyDowngradesIndicator(t *testing.T) {
	c := NewChannel()
	defer c.Close()

	// Nothing listens here; the dial fails.
	c.SetToken("http://127.0.0.1:1", "tok")

	waitFor(t, func() bool { return !c.Connected() }, "connected flag should stay false")
	assert.Nil(t, c.LastEvent())
}

func TestClearLastEvent(t *testing.T) {
	c := NewChannel()
	notified := false
	c.OnChange(func() { notified = true })

	c.ClearLastEvent()
	assert.Nil(t, c.LastEvent())
	assert.True(t, notified)
}

func TestDeriveURLTrailingSlash(t *testing.T) {
	got, err := DeriveURL("http://example.com/", "t")
	require.NoError(t, err)
	assert.False(t, strings.Contains(got, "//api"), "no double slash in derived path")
}
