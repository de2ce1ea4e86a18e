package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/internal/auth"
	"github.com/pawangupta079/skill-hire/internal/cache"
	"github.com/pawangupta079/skill-hire/internal/config"
	"github.com/pawangupta079/skill-hire/internal/handler"
	"github.com/pawangupta079/skill-hire/internal/realtime"
	"github.com/pawangupta079/skill-hire/internal/repository"
	"github.com/pawangupta079/skill-hire/internal/service"
	"github.com/pawangupta079/skill-hire/pkg"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

func newTestApp(t *testing.T) (*application, *repository.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore()
	log := zap.NewNop()
	hub := realtime.NewHub(log)
	users := service.NewUserService(store, pkg.PasswordHasher{Cost: bcrypt.MinCost}, log)

	cfg := &config.Config{
		Env:     "test",
		Store:   config.StoreDriverMemory,
		Limiter: config.RateLimiterConfig{RPS: 1, Burst: 2, Enabled: false},
		CORS:    config.CORSConfig{TrustedOrigins: []string{"http://localhost:3000"}},
	}
	app := &application{
		Logger: log,
		Config: cfg,
		Handler: &handler.Handler{
			Logger:       log,
			Users:        users,
			Jobs:         service.NewJobService(store, store, log),
			Applications: service.NewApplicationService(store, store, log),
			Chat:         service.NewChatService(store, hub, log),
			TokenMaker:   auth.NewJWTMaker(strings.Repeat("k", 32), time.Hour),
			UserCache:    cache.NewUserCache(0, users.Get),
			Hub:          hub,
		},
	}
	return app, store
}

func addUser(t *testing.T, store *repository.MemoryStore, id string, typ model.UserType, active bool) *model.User {
	t.Helper()
	u := &model.User{UserID: id, FirstName: "User", Email: id + "@example.com", UserType: typ, IsActive: active}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func (app *application) token(t *testing.T, u *model.User) string {
	t.Helper()
	tok, _, err := app.Handler.TokenMaker.CreateToken(u)
	require.NoError(t, err)
	return tok
}

func serve(app *application, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.routes().ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	app, store := newTestApp(t)
	active := addUser(t, store, "c1", model.UserTypeCandidate, true)
	inactive := addUser(t, store, "c2", model.UserTypeCandidate, false)

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "no token", want: http.StatusUnauthorized},
		{name: "malformed header", header: "Token abc", want: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "deactivated account", header: "Bearer " + app.token(t, inactive), want: http.StatusUnauthorized},
		{name: "bearer header", header: "Bearer " + app.token(t, active), want: http.StatusOK},
		{name: "query token", query: "?token=" + app.token(t, active), want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, serve(app, req).Code)
		})
	}
}

func TestAuthMiddlewareStoreFailure(t *testing.T) {
	app, store := newTestApp(t)
	u := addUser(t, store, "c1", model.UserTypeCandidate, true)
	app.Handler.UserCache = cache.NewUserCache(0, func(context.Context, string) (*model.User, error) {
		return nil, errors.New("connection refused")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+app.token(t, u))
	w := serve(app, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	app.Handler.UserCache = cache.NewUserCache(0, func(context.Context, string) (*model.User, error) {
		return nil, apperr.NotFound("user")
	})
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+app.token(t, u))
	assert.Equal(t, http.StatusUnauthorized, serve(app, req).Code)
}

func TestRequireRole(t *testing.T) {
	app, store := newTestApp(t)
	candidate := addUser(t, store, "c1", model.UserTypeCandidate, true)
	admin := addUser(t, store, "a1", model.UserTypeAdmin, true)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+app.token(t, candidate))
	assert.Equal(t, http.StatusForbidden, serve(app, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+app.token(t, admin))
	assert.Equal(t, http.StatusOK, serve(app, req).Code)
}

func TestOptionalAuthOnJobDetail(t *testing.T) {
	app, store := newTestApp(t)
	addUser(t, store, "r1", model.UserTypeRecruiter, true)
	title, desc, status := "Go Developer", "Write Go", model.JobStatusActive
	job, err := app.Handler.Jobs.Create(context.Background(),
		service.Actor{ID: "r1", Type: model.UserTypeRecruiter},
		model.JobInput{Title: &title, Description: &desc, Company: &model.Company{Name: "Acme"}, Status: &status})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.JobID, nil)
	assert.Equal(t, http.StatusOK, serve(app, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.JobID, nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, serve(app, req).Code)
}

func TestRateLimit(t *testing.T) {
	app, _ := newTestApp(t)
	app.Config.Limiter.Enabled = true
	router := app.routes()

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.RemoteAddr = "198.51.100.2:1234"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/jobs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(app, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = serve(app, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthz(t *testing.T) {
	app, _ := newTestApp(t)
	w := serve(app, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:3000"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req))
	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, check(req))
	req.Header.Set("Origin", "http://evil.test")
	assert.False(t, check(req))
}
