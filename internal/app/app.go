package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"todoapi/internal/cache"
	"todoapi/internal/config"
	"todoapi/internal/repo"
	"todoapi/internal/service"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg    config.Config
	log    *log.Logger
	pg     *pgxpool.Pool
	sqlite *sql.DB
	redis  *redis.Client
	svc    *service.TodoService
	router *gin.Engine
}

// New connects the configured store and optional Redis, applies
// migrations and builds the router.
func New(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, error) {
	a := &App{cfg: cfg, log: logger}

	todoRepo, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	var todoCache *cache.TodoCache
	if cfg.Redis.Enabled() {
		rdb, err := newRedis(ctx, cfg.Redis)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.redis = rdb
		todoCache = cache.NewTodoCache(rdb, cfg.Redis.DefaultTTL.Duration())
	} else {
		logger.Info("redis not configured, cache disabled")
	}

	a.svc = service.NewTodoService(todoRepo, todoCache, logger, cfg.Import.MaxRows)
	a.router = NewRouter(cfg, logger, a.svc, todoRepo)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Service exposes the todo service for non-HTTP entry points.
func (a *App) Service() *service.TodoService {
	return a.svc
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pg != nil {
		a.pg.Close()
	}
	if a.sqlite != nil {
		if err := a.sqlite.Close(); err != nil {
			return fmt.Errorf("sqlite close: %w", err)
		}
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (repo.TodoRepo, error) {
	switch a.cfg.Store.Driver {
	case config.DriverSQLite:
		db, err := repo.OpenSQLite(ctx, a.cfg.SQLite.Path, a.log)
		if err != nil {
			return nil, err
		}
		a.sqlite = db
		a.log.Info("store ready", "driver", config.DriverSQLite, "path", a.cfg.SQLite.Path)
		return repo.NewSQLiteTodoRepo(db), nil
	default:
		if err := repo.MigratePostgres(ctx, a.cfg.PG.DSN, a.log); err != nil {
			return nil, err
		}
		pool, err := newPostgres(ctx, a.cfg.PG.DSN)
		if err != nil {
			return nil, err
		}
		a.pg = pool
		a.log.Info("store ready", "driver", config.DriverPostgres)
		return repo.NewPGTodoRepo(pool), nil
	}
}

// Migrate applies the migrations of the configured store and returns.
func Migrate(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	if cfg.Store.Driver == config.DriverSQLite {
		db, err := repo.OpenSQLite(ctx, cfg.SQLite.Path, logger)
		if err != nil {
			return err
		}
		return db.Close()
	}
	return repo.MigratePostgres(ctx, cfg.PG.DSN, logger)
}

func newPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// NewRouter builds the HTTP engine around svc. store backs the health check.
func NewRouter(cfg config.Config, logger *log.Logger, svc *service.TodoService, store repo.TodoRepo) *gin.Engine {
	if !cfg.App.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(requestID(), requestLogger(logger), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, svc, store)
	return r
}
