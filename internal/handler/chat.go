package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pawangupta079/skill-hire/pkg/model"
	"github.com/pawangupta079/skill-hire/pkg/response"
)

// OpenRoom describes the room for a direct pair or an application.
func (h *Handler) OpenRoom(c *gin.Context) {
	var req model.OpenRoomReq
	if !h.bindJSON(c, "open room", &req) {
		return
	}
	room, err := h.Chat.OpenRoom(c.Request.Context(), h.actor(c), req)
	if err != nil {
		h.fail(c, "open room", err)
		return
	}
	response.OK(c, room)
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.Chat.ListRooms(c.Request.Context(), h.actor(c))
	if err != nil {
		h.fail(c, "list rooms", err)
		return
	}
	response.OK(c, rooms)
}

func (h *Handler) ListMessages(c *gin.Context) {
	var q model.ListMessagesQuery
	if !h.bindQuery(c, "list messages", &q) {
		return
	}
	page, err := h.Chat.ListMessages(c.Request.Context(), h.actor(c), c.Param("roomId"), q)
	if err != nil {
		h.fail(c, "list messages", err)
		return
	}
	response.OKWithMeta(c, page.Items, &response.Meta{
		Page:     page.Page,
		PageSize: page.Limit,
		HasNext:  len(page.Items) == page.Limit,
	})
}

// SendMessage is the HTTP path into the same persist-then-broadcast flow the
// socket uses.
func (h *Handler) SendMessage(c *gin.Context) {
	var req model.SendMessageReq
	if !h.bindJSON(c, "send message", &req) {
		return
	}
	msg, err := h.Chat.Send(c.Request.Context(), h.actor(c), c.Param("roomId"), req)
	if err != nil {
		h.fail(c, "send message", err)
		return
	}
	response.Created(c, msg)
}

func (h *Handler) MarkRead(c *gin.Context) {
	err := h.Chat.MarkRead(c.Request.Context(), h.actor(c), c.Param("roomId"), c.Param("messageId"))
	if err != nil {
		h.fail(c, "mark read", err)
		return
	}
	response.Message(c, "message marked as read")
}

func (h *Handler) EditMessage(c *gin.Context) {
	var req model.EditMessageReq
	if !h.bindJSON(c, "edit message", &req) {
		return
	}
	msg, err := h.Chat.Edit(c.Request.Context(), h.actor(c), c.Param("messageId"), req)
	if err != nil {
		h.fail(c, "edit message", err)
		return
	}
	response.OK(c, msg)
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	msg, err := h.Chat.Delete(c.Request.Context(), h.actor(c), c.Param("messageId"))
	if err != nil {
		h.fail(c, "delete message", err)
		return
	}
	response.OK(c, msg)
}

// UnreadCount counts across all of the caller's rooms unless roomId is given.
func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.Chat.UnreadCount(c.Request.Context(), h.actor(c), c.Query("roomId"))
	if err != nil {
		h.fail(c, "unread count", err)
		return
	}
	response.OK(c, gin.H{"unread_count": n})
}
