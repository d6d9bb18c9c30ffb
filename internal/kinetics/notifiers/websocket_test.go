package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/strandlab/foldsim/internal/kinetics"
)

// wsTestServer upgrades incoming connections and registers them on the
// notifier, the way the server's /ws handler does.
func wsTestServer(t *testing.T, n *WebSocketNotifier) *httptest.Server {
	t.Helper()
	upgrader := n.Upgrader()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n.RegisterClient(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWebSocketNotifierBroadcast(t *testing.T) {
	n := NewWebSocketNotifier("ws-1")
	defer func() { _ = n.Close() }()
	srv := wsTestServer(t, n)

	c1 := dialWS(t, srv)
	c2 := dialWS(t, srv)

	deadline := time.After(5 * time.Second)
	for n.ClientCount() < 2 {
		select {
		case <-deadline:
			t.Fatalf("clients never registered: count=%d", n.ClientCount())
		case <-time.After(time.Millisecond):
		}
	}

	ev := kinetics.TrajectoryEvent{TrajectoryID: "t1", Step: 7}
	if err := n.Notify(context.Background(), ev); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	for i, conn := range []*websocket.Conn{c1, c2} {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("client %d read: %v", i, err)
		}
		var got kinetics.TrajectoryEvent
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("client %d decode: %v", i, err)
		}
		if got.TrajectoryID != "t1" || got.Step != 7 {
			t.Errorf("client %d event = %+v", i, got)
		}
	}
}

func TestWebSocketNotifierDropsDeadClients(t *testing.T) {
	n := NewWebSocketNotifier("ws-1")
	defer func() { _ = n.Close() }()
	srv := wsTestServer(t, n)

	conn := dialWS(t, srv)
	deadline := time.After(5 * time.Second)
	for n.ClientCount() < 1 {
		select {
		case <-deadline:
			t.Fatalf("client never registered")
		case <-time.After(time.Millisecond):
		}
	}

	_ = conn.Close()

	// Broadcasting to the dead connection should evict it eventually.
	deadline = time.After(5 * time.Second)
	for n.ClientCount() > 0 {
		_ = n.Notify(context.Background(), kinetics.TrajectoryEvent{TrajectoryID: "t"})
		select {
		case <-deadline:
			t.Fatalf("dead client never evicted: count=%d", n.ClientCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestWebSocketNotifierUnregister(t *testing.T) {
	n := NewWebSocketNotifier("ws-1")
	defer func() { _ = n.Close() }()
	srv := wsTestServer(t, n)

	dialWS(t, srv)
	deadline := time.After(5 * time.Second)
	for n.ClientCount() < 1 {
		select {
		case <-deadline:
			t.Fatalf("client never registered")
		case <-time.After(time.Millisecond):
		}
	}

	n.mu.Lock()
	var registered *websocket.Conn
	for c := range n.clients {
		registered = c
	}
	n.mu.Unlock()

	n.UnregisterClient(registered)
	if n.ClientCount() != 0 {
		t.Errorf("client count = %d after unregister", n.ClientCount())
	}
	n.UnregisterClient(nil)
	n.RegisterClient(nil)
}

func TestWebSocketNotifierClose(t *testing.T) {
	n := NewWebSocketNotifier("ws-1")
	if n.ID() != "ws-1" || n.Type() != "websocket" {
		t.Errorf("identity = %s/%s", n.ID(), n.Type())
	}
	if err := n.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := n.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := n.Notify(context.Background(), kinetics.TrajectoryEvent{}); err == nil {
		t.Error("Notify after Close should fail")
	}
}
