package main

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/internal/auth"
	"github.com/pawangupta079/skill-hire/internal/handler"
	"github.com/pawangupta079/skill-hire/pkg/model"
	"github.com/pawangupta079/skill-hire/pkg/response"
)

var errNoToken = errors.New("authorization token is missing")

// AuthMiddleware requires a valid token for an active account.
func (app *application) AuthMiddleware() gin.HandlerFunc {
	return app.authenticate(true)
}

// OptionalAuthMiddleware identifies the caller when a token is sent and lets
// anonymous requests through.
func (app *application) OptionalAuthMiddleware() gin.HandlerFunc {
	return app.authenticate(false)
}

func (app *application) authenticate(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifyClaims(c, app.Handler.TokenMaker)
		if errors.Is(err, errNoToken) && !required {
			c.Next()
			return
		}
		if err != nil {
			response.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		// Check if user still exists and is allowed in
		user, err := app.Handler.UserCache.Get(c.Request.Context(), claims.UserID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			app.Logger.Sugar().Errorw("load authenticated user", "user_id", claims.UserID, "error", err)
			response.Error(c, err)
			c.Abort()
			return
		}
		if err != nil || !user.IsActive {
			response.Unauthorized(c, "unauthorized access")
			c.Abort()
			return
		}

		c.Set(handler.ContextUserKey, user)
		c.Next()
	}
}

// RequireRole runs after AuthMiddleware.
func (app *application) RequireRole(types ...model.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := app.Handler.GetUserFromContext(c)
		if user == nil || !slices.Contains(types, user.UserType) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// verifyClaims reads a bearer token from the Authorization header, or from the
// token query parameter for websocket upgrades that cannot set headers.
func verifyClaims(c *gin.Context, tokenMaker *auth.JWTMaker) (*auth.UserClaims, error) {
	token := c.Query("token")
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		fields := strings.Fields(authHeader)
		if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
			return nil, errors.New("invalid authorization header")
		}
		token = fields[1]
	}
	if token == "" {
		return nil, errNoToken
	}

	claims, err := tokenMaker.VerifyToken(token)
	if err != nil {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

// rateLimiter hands out one token bucket per client IP. Idle buckets expire.
type rateLimiter struct {
	limit   rate.Limit
	burst   int
	clients *gocache.Cache
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	return &rateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		clients: gocache.New(3*time.Minute, time.Minute),
	}
}

func (l *rateLimiter) allow(ip string) bool {
	if v, ok := l.clients.Get(ip); ok {
		return v.(*rate.Limiter).Allow()
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	// Add fails when another request for ip won the race
	if err := l.clients.Add(ip, lim, gocache.DefaultExpiration); err != nil {
		if v, ok := l.clients.Get(ip); ok {
			lim = v.(*rate.Limiter)
		}
	}
	return lim.Allow()
}

func (app *application) RateLimitMiddleware() gin.HandlerFunc {
	if !app.Config.Limiter.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := newRateLimiter(app.Config.Limiter.RPS, app.Config.Limiter.Burst)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			response.TooManyRequests(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (app *application) CORSMiddleware() gin.HandlerFunc {
	origins := app.Config.GetCORSOrigins()
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && slices.Contains(origins, origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (app *application) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		app.Logger.Sugar().Infow("http",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}

// originChecker accepts socket upgrades from trusted origins and from clients
// that send no Origin header.
func originChecker(origins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}
