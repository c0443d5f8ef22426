package gallery

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub pushes library generations to connected pages so they refresh after
// a reload.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	once       sync.Once
	mutex      sync.RWMutex
	log        *logrus.Logger
}

type generationMessage struct {
	Generation int64 `json:"generation"`
}

// NewHub creates a Hub. Call Run in its own goroutine.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 8),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves registrations and broadcasts until Close.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mutex.Unlock()
			h.log.WithField("clients", n).Debug("websocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			n := len(h.clients)
			h.mutex.Unlock()
			h.log.WithField("clients", n).Debug("websocket client disconnected")

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				client.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.WithError(err).Debug("websocket send failed")
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register adds a connection. It returns false once the hub is closed.
func (h *Hub) Register(client *websocket.Conn) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes and closes a connection.
func (h *Hub) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends the generation to every client. When the queue is full
// the message is dropped.
func (h *Hub) Broadcast(generation int64) {
	msg, err := json.Marshal(generationMessage{Generation: generation})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.log.WithField("generation", generation).Debug("websocket broadcast queue full")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and stops Run.
func (h *Hub) Close() {
	h.once.Do(func() { close(h.done) })
}

func (a *App) handleWebsocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "websocket upgrade failed")
	}
	if !a.Hub.Register(conn) {
		conn.Close()
		return nil
	}
	// Greet with the current generation so a page that missed a reload
	// catches up.
	if msg, err := json.Marshal(generationMessage{Generation: a.Library.Current().Generation}); err == nil {
		a.Hub.mutex.Lock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		err = conn.WriteMessage(websocket.TextMessage, msg)
		a.Hub.mutex.Unlock()
		if err != nil {
			a.Hub.Unregister(conn)
			return nil
		}
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			a.Hub.Unregister(conn)
			return nil
		}
	}
}
