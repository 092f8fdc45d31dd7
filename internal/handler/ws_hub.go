package handler

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// GameEvent is the envelope for every WebSocket notification. Per §6,
// events never carry authoritative state — a client that receives one
// re-fetches GET /games/{id}/state or /spectator to learn what changed.
type GameEvent struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Data   any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client: only
// channel subscription, since clients never push state over the socket.
type ClientMessage struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	GameID string `json:"game_id"`
}

// wsConn is one WebSocket connection's outbound message queue; the games
// it is subscribed to are tracked by the Hub.
type wsConn struct {
	send chan []byte
}

// Hub fans out game events to every connection subscribed to that game.
// It implements service.Broadcaster.
type Hub struct {
	mu          sync.RWMutex
	connections map[*wsConn]bool
	games       map[string]map[*wsConn]bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*wsConn]bool),
		games:       make(map[string]map[*wsConn]bool),
	}
}

func (h *Hub) register(c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

func (h *Hub) unregister(c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, c)
	for gameID, conns := range h.games {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.games, gameID)
		}
	}
	close(c.send)
}

func (h *Hub) subscribe(c *wsConn, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.games[gameID] == nil {
		h.games[gameID] = make(map[*wsConn]bool)
	}
	h.games[gameID][c] = true
}

func (h *Hub) unsubscribe(c *wsConn, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.games[gameID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.games, gameID)
		}
	}
}

// BroadcastGameEvent sends an event to every connection subscribed to
// gameID. Satisfies service.Broadcaster.
func (h *Hub) BroadcastGameEvent(gameID string, eventType string, data any) {
	payload, err := json.Marshal(GameEvent{Type: eventType, GameID: gameID, Data: data})
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("failed to marshal game event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.games[gameID] {
		select {
		case c.send <- payload:
		default:
			log.Warn().Str("gameId", gameID).Msg("dropping game event, connection buffer full")
		}
	}
}

// ConnectionCount returns the number of live WebSocket connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}
