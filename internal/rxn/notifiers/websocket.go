package notifiers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rxnkit/rxnkit/internal/rxn"
)

// WebSocketNotifier broadcasts run events to connected WebSocket clients.
// Clients attach through ServeHTTP; slow clients are dropped rather than
// allowed to back up the broadcast loop.
type WebSocketNotifier struct {
	id         string
	upgrader   websocket.Upgrader
	broadcast  chan rxn.Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	wg         sync.WaitGroup

	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
}

// NewWebSocketNotifier creates a WebSocket notifier and starts its
// broadcaster.
func NewWebSocketNotifier(id string) *WebSocketNotifier {
	n := &WebSocketNotifier{
		id:         id,
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan rxn.Event, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	n.wg.Add(1)
	go n.run()
	return n
}

// ID returns the notifier ID.
func (n *WebSocketNotifier) ID() string { return n.id }

// Type returns "websocket".
func (n *WebSocketNotifier) Type() string { return "websocket" }

// ServeHTTP upgrades the request and registers the connection for event
// broadcasts. The connection stays registered until the peer closes it or
// the notifier shuts down.
func (n *WebSocketNotifier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	select {
	case n.register <- conn:
	case <-n.done:
		_ = conn.Close()
		return
	}
	// Drain (and discard) client reads so pings and close frames are
	// processed; unregister on error.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				select {
				case n.unregister <- conn:
				case <-n.done:
				}
				return
			}
		}
	}()
}

// Notify enqueues an event for broadcast to every connected client.
func (n *WebSocketNotifier) Notify(ctx context.Context, event rxn.Event) error {
	select {
	case n.broadcast <- event:
		return nil
	case <-n.done:
		return fmt.Errorf("websocket notifier %s is closed", n.id)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientCount returns the number of connected clients.
func (n *WebSocketNotifier) ClientCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.clients)
}

func (n *WebSocketNotifier) run() {
	defer n.wg.Done()
	for {
		select {
		case conn := <-n.register:
			n.mu.Lock()
			n.clients[conn] = true
			n.mu.Unlock()
		case conn := <-n.unregister:
			n.dropClient(conn)
		case event := <-n.broadcast:
			n.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(n.clients))
			for conn := range n.clients {
				conns = append(conns, conn)
			}
			n.mu.RUnlock()
			for _, conn := range conns {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteJSON(event); err != nil {
					n.dropClient(conn)
				}
			}
		case <-n.done:
			n.mu.Lock()
			for conn := range n.clients {
				_ = conn.Close()
				delete(n.clients, conn)
			}
			n.mu.Unlock()
			return
		}
	}
}

func (n *WebSocketNotifier) dropClient(conn *websocket.Conn) {
	n.mu.Lock()
	if n.clients[conn] {
		delete(n.clients, conn)
		_ = conn.Close()
	}
	n.mu.Unlock()
}

// Close disconnects every client and stops the broadcaster.
func (n *WebSocketNotifier) Close() error {
	select {
	case <-n.done:
		return nil
	default:
	}
	close(n.done)
	n.wg.Wait()
	return nil
}
