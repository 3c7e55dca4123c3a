package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ageniuscoder/blinkchat/internal/auth"
	"github.com/ageniuscoder/blinkchat/internal/chat"
	"github.com/ageniuscoder/blinkchat/internal/config"
	"github.com/ageniuscoder/blinkchat/internal/eventlog"
	"github.com/ageniuscoder/blinkchat/internal/history"
	"github.com/ageniuscoder/blinkchat/internal/presence"
	"github.com/ageniuscoder/blinkchat/internal/storage/postgres"
	"github.com/ageniuscoder/blinkchat/internal/storage/sqlite"
	"github.com/ageniuscoder/blinkchat/internal/store"
)

type database interface {
	Migrate() error
	Ping(ctx context.Context) error
}

func main() {
	migrate := flag.Bool("migrate", false, "run migrations and exit")
	flag.Parse()

	//config part
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using process environment")
	}
	cfg := config.MustLoad()

	//database handling
	var db *sql.DB
	var backend database
	switch cfg.DBDriver {
	case "postgres":
		pg, err := postgres.New(cfg.PostgresDsn)
		if err != nil {
			log.Fatalf("Error connecting to postgres: %v", err)
		}
		db, backend = pg.Db, pg
	default:
		sq, err := sqlite.New(cfg.SQLITEDsn)
		if err != nil {
			log.Fatalf("Error opening sqlite: %v", err)
		}
		db, backend = sq.Db, sq
	}
	defer db.Close()

	if err := backend.Migrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if *migrate {
		slog.Info("Migration Completed")
		return
	}

	st := store.New(db, cfg.DBDriver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// presence + event log: redis when configured, in-process otherwise
	var reg presence.Registry
	var lg eventlog.Log
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		reg = presence.NewRedisRegistry(rdb)
		lg = eventlog.NewRedisLog(rdb, cfg.EventStream)

		consumer := eventlog.NewConsumer(rdb, cfg.EventStream, cfg.EventGroup, consumerName(), st)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("event log consumer stopped", "err", err)
			}
		}()
		slog.Info("event log bridge enabled", "stream", cfg.EventStream, "group", cfg.EventGroup)
	} else {
		reg = presence.NewMemoryRegistry()
		lg = eventlog.NewNopLog()
		slog.Info("redis not configured; using in-process presence, event log disabled")
	}

	hub := chat.NewHub(st, reg, lg)
	go hub.Run()

	r := gin.Default()
	r.GET("/health", func(c *gin.Context) {
		if err := backend.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	chat.RegisterWS(r.Group(""), hub, cfg.JWTSecret)

	api := r.Group("/api", auth.JWTMiddleware(cfg.JWTSecret))
	history.Register(api, st)

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		slog.Info("blinkchat listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "err", err)
	}
}

func consumerName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return uuid.NewString()
}
