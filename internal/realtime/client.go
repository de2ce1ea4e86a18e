package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/internal/service"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 16 * 1024

	sendBuffer = 64
)

// ChatBackend is what a connection needs from the chat service.
type ChatBackend interface {
	CanJoin(ctx context.Context, actor service.Actor, roomID string) error
	Send(ctx context.Context, actor service.Actor, roomID string, req model.SendMessageReq) (*model.ChatMessage, error)
}

// Client is one authenticated websocket connection.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	actor service.Actor
	chat  ChatBackend
	log   *zap.Logger

	// rooms is owned by readPump.
	rooms map[string]struct{}
}

// Serve runs the pumps for conn until the peer goes away. It blocks.
func Serve(ctx context.Context, hub *Hub, conn *websocket.Conn, actor service.Actor, chat ChatBackend, log *zap.Logger) {
	c := &Client{
		hub:   hub,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		actor: actor,
		chat:  chat,
		log:   log.With(zap.String("user_id", actor.ID)),
		rooms: make(map[string]struct{}),
	}
	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		rooms := make([]string, 0, len(c.rooms))
		for id := range c.rooms {
			rooms = append(rooms, id)
		}
		c.hub.remove(c, rooms)
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNoStatusReceived) {
				c.log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.log.Debug("malformed frame", zap.Error(err))
			continue
		}
		c.route(ctx, env)
	}
}

func (c *Client) route(ctx context.Context, env Envelope) {
	switch env.Event {
	case EventJoinRoom:
		roomID := roomIDFrom(env.Data)
		if err := c.chat.CanJoin(ctx, c.actor, roomID); err != nil {
			c.reject(err)
			return
		}
		c.hub.join(roomID, c)
		c.rooms[roomID] = struct{}{}

	case EventLeaveRoom:
		roomID := roomIDFrom(env.Data)
		if _, ok := c.rooms[roomID]; ok {
			c.hub.leave(roomID, c)
			delete(c.rooms, roomID)
		}

	case EventSendMessage:
		var p SendPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.reject(apperr.Validation("malformed send-message payload"))
			return
		}
		// the service broadcasts on success; failures are not retried
		_, err := c.chat.Send(ctx, c.actor, p.RoomID, model.SendMessageReq{Message: p.Message, MessageType: p.MessageType})
		if err != nil {
			c.log.Warn("drop socket message", zap.String("room_id", p.RoomID), zap.Error(err))
			c.reject(err)
		}

	default:
		c.log.Debug("unknown event", zap.String("event", env.Event))
	}
}

// reject tells the peer why a request failed. Internal failures are not echoed.
func (c *Client) reject(err error) {
	if apperr.IsInternal(err) {
		return
	}
	frame, encErr := encode(EventError, errorPayload{Message: apperr.Message(err)})
	if encErr != nil {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug("websocket write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
