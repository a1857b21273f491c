package ws

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// Hub управляет WebSocket подключениями операторов. Уведомления
// сохраняются в БД сервисом уведомлений до отправки сюда, хаб
// отвечает только за realtime доставку.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
}

type message struct {
	// adminID == uuid.Nil означает рассылку всем подключённым операторам.
	adminID uuid.UUID
	payload []byte
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
	}
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.adminID, msg.payload)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Push реализует порт realtime доставки сервиса уведомлений.
// nil targetUserID означает рассылку всем подключённым операторам.
func (h *Hub) Push(targetUserID *uuid.UUID, event string, data interface{}) {
	// Сообщение для клиента строго следует контракту WebSocket API:
	// поле "type" содержит имя события, "data" — полезную нагрузку.
	payload := map[string]interface{}{
		"type": event,
		"data": data,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("ws: не удалось сериализовать сообщение: %v\n", err)
		return
	}

	adminID := uuid.Nil
	if targetUserID != nil {
		adminID = *targetUserID
	}

	h.broadcast <- message{adminID: adminID, payload: raw}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.adminID]; !ok {
		h.clients[client.adminID] = make(map[*Client]struct{})
	}
	h.clients[client.adminID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.adminID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.adminID)
		}
	}
}

func (h *Hub) send(adminID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if adminID == uuid.Nil {
		for _, clients := range h.clients {
			for client := range clients {
				h.deliver(client, payload)
			}
		}
		return
	}

	for client := range h.clients[adminID] {
		h.deliver(client, payload)
	}
}

func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		// Закрываем переполненный клиент асинхронно с panic recovery
		go func(c *Client) {
			defer func() {
				if r := recover(); r != nil {
					fmt.Printf("WebSocket client close panic recovered: %v\nStack trace:\n%s\n", r, debug.Stack())
				}
			}()
			c.Close()
		}(client)
	}
}
