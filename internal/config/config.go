package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Streaming StreamingConfig
	World     WorldConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LoggingConfig struct {
	Level      string
	Format     string
	Structured bool
}

// StreamingConfig holds the process-wide loader and streaming knobs.
type StreamingConfig struct {
	MaxConcurrentLoads int
	LoadingPoolSize    int
	MaxLoadingTime     time.Duration
	ShutdownGrace      time.Duration
	LoadRadius         int
	PreloadRadius      int
	CacheRadius        int
	TickInterval       time.Duration
}

type WorldConfig struct {
	ManifestPath string
	MapDir       string
	Seed         int64
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnvStr("PORT", "8080"),
			ReadTimeout:     getEnvDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Path:            getEnvStr("DB_PATH", "./worldstream.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 1),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 1),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:      getEnvStr("LOG_LEVEL", "info"),
			Format:     getEnvStr("LOG_FORMAT", "json"),
			Structured: getEnvBool("LOG_STRUCTURED", true),
		},
		Streaming: StreamingConfig{
			MaxConcurrentLoads: getEnvInt("STREAM_MAX_CONCURRENT_LOADS", 2),
			LoadingPoolSize:    getEnvInt("STREAM_LOADING_POOL_SIZE", 2),
			MaxLoadingTime:     getEnvDuration("STREAM_MAX_LOADING_TIME", 2000*time.Millisecond),
			ShutdownGrace:      getEnvDuration("STREAM_SHUTDOWN_GRACE", 5*time.Second),
			LoadRadius:         getEnvInt("STREAM_LOAD_RADIUS", 1),
			PreloadRadius:      getEnvInt("STREAM_PRELOAD_RADIUS", 2),
			CacheRadius:        getEnvInt("STREAM_CACHE_RADIUS", 0),
			TickInterval:       getEnvDuration("STREAM_TICK_INTERVAL", 33*time.Millisecond),
		},
		World: WorldConfig{
			ManifestPath: getEnvStr("WORLD_MANIFEST", "./worlds.yaml"),
			MapDir:       getEnvStr("MAP_DIR", "./maps"),
			Seed:         getEnvInt64("WORLD_SEED", 1337),
		},
	}
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
