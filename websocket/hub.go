package websocket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub maintains the set of active clients keyed by family and delivers
// live events to them.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Families mapping (familyID -> clients)
	families map[string]map[*Client]bool

	// Mutex for families map
	familiesMux sync.RWMutex

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	logger *zap.Logger
}

// NewHub creates a new hub instance.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		families:   make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run starts the hub loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.familiesMux.Lock()
			if _, ok := h.families[client.familyID]; !ok {
				h.families[client.familyID] = make(map[*Client]bool)
			}
			h.families[client.familyID][client] = true
			h.familiesMux.Unlock()
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				h.familiesMux.Lock()
				if clients, ok := h.families[client.familyID]; ok {
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.families, client.familyID)
					}
				}
				h.familiesMux.Unlock()
			}
		}
	}
}

// SendToFamily delivers an event to every open connection for a family.
// Families with no open connection are skipped silently; push
// notifications cover the offline case.
func (h *Hub) SendToFamily(familyID, msgType string, payload interface{}) {
	msg := Message{
		Type:    msgType,
		Payload: payload,
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal websocket message", zap.Error(err))
		return
	}

	var stale []*Client

	h.familiesMux.RLock()
	if clients, ok := h.families[familyID]; ok {
		for client := range clients {
			select {
			case client.send <- msgBytes:
			default:
				stale = append(stale, client)
			}
		}
	}
	h.familiesMux.RUnlock()

	// Evict clients with a full send buffer through the hub loop, which
	// owns the maps and the channel close.
	for _, client := range stale {
		h.unregister <- client
	}
}
