package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Proxies whose X-Forwarded-For is honored; empty trusts none.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// Storage: "memory", "mongo" or "mysql".
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DatabaseName  string `mapstructure:"DATABASE_NAME"`
	MySQLDSN      string `mapstructure:"MYSQL_DSN"`
	SeedRooms     bool   `mapstructure:"SEED_ROOMS"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisTaskDB   int    `mapstructure:"REDIS_TASK_DB"`

	// Per-room booking lock: "local" or "redis".
	LockBackend string        `mapstructure:"LOCK_BACKEND"`
	LockTTL     time.Duration `mapstructure:"LOCK_TTL"`
	LockWait    time.Duration `mapstructure:"LOCK_WAIT"`

	// Background flag refresh (asynq).
	TasksEnabled    bool   `mapstructure:"TASKS_ENABLED"`
	FlagRefreshSpec string `mapstructure:"FLAG_REFRESH_SPEC"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("TRUSTED_PROXIES", []string{})
	viper.SetDefault("STORAGE_DRIVER", "memory")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "innkeeper")
	viper.SetDefault("MYSQL_DSN", "innkeeper:innkeeper@tcp(localhost:3306)/innkeeper?charset=utf8mb4&parseTime=True&loc=UTC")
	viper.SetDefault("SEED_ROOMS", true)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_LOCK_DB", 0)
	viper.SetDefault("REDIS_TASK_DB", 1)
	viper.SetDefault("LOCK_BACKEND", "local")
	viper.SetDefault("LOCK_TTL", "10s")
	viper.SetDefault("LOCK_WAIT", "3s")
	viper.SetDefault("TASKS_ENABLED", false)
	viper.SetDefault("FLAG_REFRESH_SPEC", "@every 1h")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
