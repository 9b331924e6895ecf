// Package realtime difunde los eventos del POS (stock, precios, ventas) a los clientes websocket.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ArtEnginer/POS/internal/application/ports"
)

var _ ports.Notifier = (*Hub)(nil)

const broadcastBuffer = 256

// Message sobre enviado a cada cliente.
type Message struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub registra conexiones y difunde mensajes. Publish nunca bloquea: con el buffer lleno el
// evento se descarta.
type Hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{} // se cierra cuando Run termina
	mutex      sync.Mutex
}

// NewHub crea el hub; llamar Run en una goroutine.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

// Run atiende registros, bajas y difusiones hasta que ctx termina.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.register:
			h.mutex.Lock()
			h.clients[conn] = true
			n := len(h.clients)
			h.mutex.Unlock()
			log.Debug().Int("clients", n).Msg("cliente ws conectado")

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				_ = conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					_ = conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Publish serializa el evento y lo encola para difusión.
func (h *Hub) Publish(eventType string, data any) {
	msg, err := json.Marshal(Message{Type: eventType, Data: data, Timestamp: time.Now()})
	if err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("evento ws no serializable")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Warn().Str("type", eventType).Msg("buffer ws lleno, evento descartado")
	}
}

// Clients número de conexiones activas.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Upgrade middleware que exige el handshake websocket (426 en otro caso).
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.SendStatus(fiber.StatusUpgradeRequired)
}

// Handler registra la conexión y la mantiene viva hasta que el cliente cierra.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		if !h.join(c) {
			return
		}
		defer h.leave(c)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}

// join entrega la conexión a Run; false si el hub ya se detuvo.
func (h *Hub) join(c *websocket.Conn) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave da de baja la conexión sin bloquear cuando Run ya salió (apagado).
func (h *Hub) leave(c *websocket.Conn) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
