package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr      string
	JWTSecret string
	JWTTTLMin int

	// DBDriver selects the durable store: "sqlite" or "postgres".
	DBDriver    string
	SQLITEDsn   string
	PostgresDsn string

	// RedisAddr is optional; when empty, presence falls back to the
	// in-process registry and the event log bridge is disabled.
	RedisAddr   string
	EventStream string
	EventGroup  string
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val != "" {
		return val
	}
	return def
}

func MustLoad() Config {
	jwtttl, _ := strconv.Atoi(getenv("JWT_TTL_MIN", "1440"))

	cfg := Config{
		Addr:        getenv("HTTP_ADDR", ":8080"),
		JWTSecret:   getenv("JWT_SECRET", ""),
		JWTTTLMin:   jwtttl,
		DBDriver:    getenv("DB_DRIVER", "sqlite"),
		SQLITEDsn:   getenv("SQLITE_DSN", "file:blinkchat.db?_pragma=foreign_keys(ON)"),
		PostgresDsn: getenv("POSTGRES_DSN", ""),
		RedisAddr:   getenv("REDIS_ADDR", ""),
		EventStream: getenv("EVENT_STREAM", "chat-messages"),
		EventGroup:  getenv("EVENT_GROUP", "chat-persister"),
	}
	return cfg
}
