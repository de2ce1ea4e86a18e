package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/internal/auth"
	"github.com/pawangupta079/skill-hire/internal/cache"
	"github.com/pawangupta079/skill-hire/internal/realtime"
	"github.com/pawangupta079/skill-hire/internal/service"
	"github.com/pawangupta079/skill-hire/pkg/model"
	"github.com/pawangupta079/skill-hire/pkg/response"
)

// ContextUserKey is where the auth middleware stores the *model.User.
const ContextUserKey = "user"

type Handler struct {
	Logger       *zap.Logger
	Users        *service.UserService
	Jobs         *service.JobService
	Applications *service.ApplicationService
	Chat         *service.ChatService
	TokenMaker   *auth.JWTMaker
	UserCache    *cache.UserCache
	Hub          *realtime.Hub
	Upgrader     websocket.Upgrader
}

// GetUserFromContext retrieves the current user from the gin context
func (h *Handler) GetUserFromContext(c *gin.Context) *model.User {
	contextUser, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := contextUser.(*model.User)
	if !ok {
		return nil
	}
	return user
}

// actor is only called behind the auth middleware.
func (h *Handler) actor(c *gin.Context) service.Actor {
	u := h.GetUserFromContext(c)
	if u == nil {
		return service.Actor{}
	}
	return service.ActorFromUser(u)
}

// optionalActor is nil on routes where authentication was not required and
// the caller sent no token.
func (h *Handler) optionalActor(c *gin.Context) *service.Actor {
	u := h.GetUserFromContext(c)
	if u == nil {
		return nil
	}
	a := service.ActorFromUser(u)
	return &a
}

func (h *Handler) forgetUser(id string) {
	if h.UserCache != nil {
		h.UserCache.Forget(id)
	}
}

// fail writes err and logs the ones the client cannot see.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	if apperr.IsInternal(err) {
		h.Logger.Sugar().Errorw(op+" failed", "path", c.FullPath(), "err", err)
	} else {
		h.Logger.Sugar().Debugw(op+" rejected", "path", c.FullPath(), "err", err)
	}
	response.Error(c, err)
}

func (h *Handler) bindJSON(c *gin.Context, op string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.Logger.Sugar().Warnw(op+" bad request", "err", err)
		response.BadRequest(c, err.Error())
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, op string, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		h.Logger.Sugar().Warnw(op+" bad query", "err", err)
		response.BadRequest(c, err.Error())
		return false
	}
	return true
}
