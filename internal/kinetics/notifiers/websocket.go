package notifiers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/strandlab/foldsim/internal/kinetics"
)

// WebSocketNotifier broadcasts trajectory events to connected WebSocket
// clients. Delivery is fan-out and best effort: a client that cannot be
// written to is dropped.
type WebSocketNotifier struct {
	id        string
	mu        sync.Mutex
	clients   map[*websocket.Conn]struct{}
	upgrader  websocket.Upgrader
	broadcast chan kinetics.TrajectoryEvent
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewWebSocketNotifier creates a notifier and starts its broadcaster.
func NewWebSocketNotifier(id string) *WebSocketNotifier {
	n := &WebSocketNotifier{
		id:        id,
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan kinetics.TrajectoryEvent, 256),
		done:      make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	n.wg.Add(1)
	go n.run()
	return n
}

// ID returns the notifier ID.
func (n *WebSocketNotifier) ID() string {
	return n.id
}

// Type returns "websocket".
func (n *WebSocketNotifier) Type() string {
	return "websocket"
}

// Upgrader returns the upgrader HTTP handlers use to accept clients.
func (n *WebSocketNotifier) Upgrader() websocket.Upgrader {
	return n.upgrader
}

// RegisterClient adds a client connection to the broadcast set.
func (n *WebSocketNotifier) RegisterClient(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	n.mu.Lock()
	n.clients[conn] = struct{}{}
	n.mu.Unlock()
}

// UnregisterClient removes and closes a client connection.
func (n *WebSocketNotifier) UnregisterClient(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	n.mu.Lock()
	if _, ok := n.clients[conn]; ok {
		delete(n.clients, conn)
		_ = conn.Close()
	}
	n.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (n *WebSocketNotifier) ClientCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.clients)
}

// Notify queues an event for broadcast.
func (n *WebSocketNotifier) Notify(ctx context.Context, event kinetics.TrajectoryEvent) error {
	select {
	case n.broadcast <- event:
		return nil
	case <-n.done:
		return fmt.Errorf("websocket notifier %s closed", n.id)
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(1 * time.Second):
		return fmt.Errorf("websocket broadcast queue full")
	}
}

func (n *WebSocketNotifier) run() {
	defer n.wg.Done()
	for {
		select {
		case <-n.done:
			return
		case event := <-n.broadcast:
			data, err := event.JSON()
			if err != nil {
				continue
			}
			n.writeAll(data)
		}
	}
}

// writeAll sends one frame to every client, dropping the ones that fail.
func (n *WebSocketNotifier) writeAll(data []byte) {
	n.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(n.clients))
	for conn := range n.clients {
		conns = append(conns, conn)
	}
	n.mu.Unlock()

	var failed []*websocket.Conn
	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			_ = conn.Close()
			failed = append(failed, conn)
		}
	}

	if len(failed) > 0 {
		n.mu.Lock()
		for _, conn := range failed {
			delete(n.clients, conn)
		}
		n.mu.Unlock()
	}
}

// Close stops the broadcaster and closes every client connection.
func (n *WebSocketNotifier) Close() error {
	select {
	case <-n.done:
		return nil
	default:
	}
	close(n.done)
	n.wg.Wait()

	n.mu.Lock()
	for conn := range n.clients {
		_ = conn.Close()
		delete(n.clients, conn)
	}
	n.mu.Unlock()
	return nil
}
