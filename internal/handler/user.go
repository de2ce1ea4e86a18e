package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/pawangupta079/skill-hire/pkg/model"
	"github.com/pawangupta079/skill-hire/pkg/response"
)

func (h *Handler) issueToken(c *gin.Context, u *model.User) (*model.LoginRes, bool) {
	token, claims, err := h.TokenMaker.CreateToken(u)
	if err != nil {
		h.Logger.Sugar().Errorw("error creating token", "user_id", u.UserID, "err", err)
		response.InternalError(c, "could not generate token")
		return nil, false
	}
	return &model.LoginRes{
		AccessToken:          token,
		AccessTokenExpiresAt: claims.ExpiresAt.Time,
		User:                 u,
	}, true
}

// Register creates a candidate or recruiter account and returns a token.
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterReq
	if !h.bindJSON(c, "register", &req) {
		return
	}
	u, err := h.Users.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "register", err)
		return
	}
	res, ok := h.issueToken(c, u)
	if !ok {
		return
	}
	response.Created(c, res)
}

// Login verifies credentials and returns JWT
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginReq
	if !h.bindJSON(c, "login", &req) {
		return
	}
	u, err := h.Users.Authenticate(c.Request.Context(), req)
	if err != nil {
		h.Logger.Sugar().Warnw("login rejected", "email", req.Email, "err", err)
		response.Error(c, err)
		return
	}
	res, ok := h.issueToken(c, u)
	if !ok {
		return
	}
	response.OK(c, res)
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.Users.Get(c.Request.Context(), h.actor(c).ID)
	if err != nil {
		h.fail(c, "me", err)
		return
	}
	response.OK(c, u)
}

// UpdateProfile applies a partial document of permitted profile fields.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var patch map[string]json.RawMessage
	if !h.bindJSON(c, "update profile", &patch) {
		return
	}
	actor := h.actor(c)
	u, err := h.Users.UpdateProfile(c.Request.Context(), actor, patch)
	if err != nil {
		h.fail(c, "update profile", err)
		return
	}
	h.forgetUser(actor.ID)
	response.OK(c, u)
}

func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.Users.PublicProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get user", err)
		return
	}
	response.OK(c, u)
}

func (h *Handler) ListUsers(c *gin.Context) {
	var q model.ListUsersQuery
	if !h.bindQuery(c, "list users", &q) {
		return
	}
	page, err := h.Users.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, "list users", err)
		return
	}
	response.OKWithMeta(c, page.Items, response.Paging(page.Page, page.Limit, page.Total))
}

func (h *Handler) SetUserStatus(c *gin.Context) {
	var req model.UpdateUserStatusReq
	if !h.bindJSON(c, "set user status", &req) {
		return
	}
	id := c.Param("id")
	u, err := h.Users.SetActive(c.Request.Context(), h.actor(c), id, *req.IsActive)
	if err != nil {
		h.fail(c, "set user status", err)
		return
	}
	h.forgetUser(id)
	response.OK(c, u)
}
