package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/pawangupta079/skill-hire/pkg/model"
)

// Hub maps room ids to the connections currently joined to them. Membership is
// transient and only changed by the owning connection.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{}), log: log}
}

func (h *Hub) join(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[roomID] = members
	}
	members[c] = struct{}{}
}

func (h *Hub) leave(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(roomID, c)
}

func (h *Hub) leaveLocked(roomID string, c *Client) {
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

// remove drops c from every room in rooms.
func (h *Hub) remove(c *Client, rooms []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range rooms {
		h.leaveLocked(id, c)
	}
}

// RoomSize returns the number of connections joined to roomID.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Deliver pushes an encoded frame to every connection joined to roomID and
// returns how many accepted it. Connections with a full buffer are skipped.
func (h *Hub) Deliver(roomID string, frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.rooms[roomID] {
		select {
		case c.send <- frame:
			n++
		default:
			h.log.Debug("skip slow connection", zap.String("room_id", roomID), zap.String("user_id", c.actor.ID))
		}
	}
	return n
}

// Broadcast sends m as a receive-message event to its room on this node.
func (h *Hub) Broadcast(_ context.Context, m *model.ChatMessage) error {
	return h.deliverPayload(receiveFrom(m))
}

func (h *Hub) deliverPayload(p ReceivePayload) error {
	frame, err := encode(EventReceiveMessage, p)
	if err != nil {
		return err
	}
	h.Deliver(p.RoomID, frame)
	return nil
}
