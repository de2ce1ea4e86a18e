package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pawangupta079/skill-hire/internal/auth"
	"github.com/pawangupta079/skill-hire/internal/cache"
	"github.com/pawangupta079/skill-hire/internal/realtime"
	"github.com/pawangupta079/skill-hire/internal/repository"
	"github.com/pawangupta079/skill-hire/internal/service"
	"github.com/pawangupta079/skill-hire/pkg"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

const testUserHeader = "X-Test-User"

type testServer struct {
	engine *gin.Engine
	store  *repository.MemoryStore
	h      *Handler
}

// newTestServer wires the handlers to an in-memory store. Requests are
// authenticated by naming a user id in testUserHeader.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore()
	log := zap.NewNop()
	hub := realtime.NewHub(log)

	h := &Handler{
		Logger:       log,
		Users:        service.NewUserService(store, pkg.PasswordHasher{Cost: bcrypt.MinCost}, log),
		Jobs:         service.NewJobService(store, store, log),
		Applications: service.NewApplicationService(store, store, log),
		Chat:         service.NewChatService(store, hub, log),
		TokenMaker:   auth.NewJWTMaker("0123456789abcdef0123456789abcdef", time.Hour),
		UserCache:    cache.NewUserCache(time.Minute, store.GetUserByID),
		Hub:          hub,
	}

	identify := func(required bool) gin.HandlerFunc {
		return func(c *gin.Context) {
			id := c.GetHeader(testUserHeader)
			if id == "" {
				if required {
					c.AbortWithStatus(http.StatusUnauthorized)
					return
				}
				c.Next()
				return
			}
			u, err := h.UserCache.Get(c.Request.Context(), id)
			if err != nil {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.Set(ContextUserKey, u)
			c.Next()
		}
	}

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/jobs", h.ListJobs)
	api.GET("/jobs/search/suggestions", h.JobSuggestions)
	api.GET("/jobs/:id", identify(false), h.GetJob)

	authed := api.Group("/", identify(true))
	authed.GET("/auth/me", h.Me)
	authed.PUT("/users/profile", h.UpdateProfile)
	authed.GET("/users/:id", h.GetUser)
	authed.PUT("/users/:id/status", h.SetUserStatus)
	authed.POST("/jobs", h.CreateJob)
	authed.DELETE("/jobs/:id", h.DeleteJob)
	authed.POST("/applications", h.SubmitApplication)
	authed.GET("/applications/my-applications", h.MyApplications)
	authed.GET("/applications/job/:jobId", h.JobApplications)
	authed.GET("/applications/:id", h.GetApplication)
	authed.PUT("/applications/:id/status", h.UpdateApplicationStatus)
	authed.POST("/applications/:id/notes", h.AddApplicationNote)
	authed.POST("/chat/room", h.OpenRoom)
	authed.GET("/chat/rooms", h.ListRooms)
	authed.GET("/chat/room/:roomId/messages", h.ListMessages)
	authed.POST("/chat/room/:roomId/messages", h.SendMessage)
	authed.POST("/chat/room/:roomId/messages/:messageId/read", h.MarkRead)
	authed.PUT("/chat/messages/:messageId", h.EditMessage)
	authed.DELETE("/chat/messages/:messageId", h.DeleteMessage)
	authed.GET("/chat/unread-count", h.UnreadCount)

	return &testServer{engine: r, store: store, h: h}
}

func (s *testServer) user(t *testing.T, id string, typ model.UserType) {
	t.Helper()
	require.NoError(t, s.store.CreateUser(context.Background(), &model.User{
		UserID:    id,
		FirstName: "User",
		LastName:  id,
		Email:     id + "@example.com",
		UserType:  typ,
		IsActive:  true,
	}))
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Page     int  `json:"page"`
		PageSize int  `json:"page_size"`
		Total    int  `json:"total"`
		HasNext  bool `json:"has_next"`
	} `json:"meta"`
}

func (s *testServer) do(t *testing.T, method, path, as string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set(testUserHeader, as)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// postJob creates an active posting owned by recruiterID.
func (s *testServer) postJob(t *testing.T, recruiterID string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/jobs", recruiterID, map[string]any{
		"title":       "Backend Engineer",
		"description": "Build services",
		"company":     map[string]any{"name": "Acme"},
		"status":      "active",
	})
	require.Equal(t, http.StatusCreated, code)
	return decode[model.Job](t, env.Data).JobID
}
