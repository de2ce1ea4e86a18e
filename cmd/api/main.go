package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pawangupta079/skill-hire/internal/auth"
	"github.com/pawangupta079/skill-hire/internal/cache"
	"github.com/pawangupta079/skill-hire/internal/config"
	"github.com/pawangupta079/skill-hire/internal/database"
	"github.com/pawangupta079/skill-hire/internal/handler"
	"github.com/pawangupta079/skill-hire/internal/logger"
	"github.com/pawangupta079/skill-hire/internal/realtime"
	"github.com/pawangupta079/skill-hire/internal/repository"
	"github.com/pawangupta079/skill-hire/internal/service"
	"github.com/pawangupta079/skill-hire/pkg"
)

type application struct {
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Logger  *zap.Logger
	Config  *config.Config
	Handler *handler.Handler
	Relay   *realtime.Relay
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	sugar := log.Sugar()
	sugar.Infof("config loaded: %s", cfg)

	app := &application{Logger: log, Config: cfg}

	var store service.Store
	switch cfg.Store {
	case config.StoreDriverMemory:
		sugar.Warn("using in-memory store, data is lost on restart")
		store = repository.NewMemoryStore()
	default:
		pool, err := database.Connect(ctx, database.Options{
			URL:             cfg.DB.DSN,
			MaxConns:        cfg.DB.MaxConns,
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			sugar.Fatal(err)
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := database.Migrate(ctx, pool); err != nil {
				sugar.Fatal(err)
			}
		}
		app.DB = pool
		store = repository.New(pool)
	}

	hub := realtime.NewHub(log)
	var broadcaster service.Broadcaster = hub
	if cfg.RelayEnabled() {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			sugar.Fatal(err)
		}
		defer rdb.Close()
		app.Redis = rdb
		app.Relay = realtime.NewRelay(rdb, cfg.Redis.Channel, hub, log)
		broadcaster = realtime.NewRedisBroadcaster(rdb, cfg.Redis.Channel)
	}

	users := service.NewUserService(store, pkg.PasswordHasher{}, log)
	app.Handler = &handler.Handler{
		Logger:       log,
		Users:        users,
		Jobs:         service.NewJobService(store, store, log),
		Applications: service.NewApplicationService(store, store, log),
		Chat:         service.NewChatService(store, broadcaster, log),
		TokenMaker:   auth.NewJWTMaker(cfg.JWT.Secret, cfg.JWT.TTL),
		UserCache:    cache.NewUserCache(cfg.Cache.UserTTL, users.Get),
		Hub:          hub,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.GetCORSOrigins()),
		},
	}

	if err := app.serve(ctx); err != nil {
		sugar.Fatal(err)
	}
}
