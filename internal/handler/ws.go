package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pawangupta079/skill-hire/internal/realtime"
)

// ServeWS upgrades an authenticated request and runs the connection until it
// closes.
func (h *Handler) ServeWS(c *gin.Context) {
	actor := h.actor(c)
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		h.Logger.Sugar().Warnw("websocket upgrade failed", "user_id", actor.ID, "err", err)
		return
	}
	h.Logger.Sugar().Debugw("websocket connected", "user_id", actor.ID)
	realtime.Serve(c.Request.Context(), h.Hub, conn, actor, h.Chat, h.Logger)
}
