package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	MigrationsPath string
	StoreDriver    string // postgres or memory
	Port           string
	IsProduction   bool
	JWTSecret      string

	// Locking. With no Redis address locks are held in-process.
	RedisAddr   string
	LockTTL     time.Duration
	LockMaxWait time.Duration

	// Ledger events. With no brokers events are discarded.
	KafkaBrokers []string
	KafkaTopic   string

	RateLimit          string // ulule/limiter format, e.g. "60-M"
	CORSAllowedOrigins []string

	SideEffectRetryInterval time.Duration
	SideEffectMaxAttempts   int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("LOCK_TTL", "10s")
	viper.SetDefault("LOCK_MAX_WAIT", "5s")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "crediario.ledger")
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("SIDE_EFFECT_RETRY_INTERVAL", "1m")
	viper.SetDefault("SIDE_EFFECT_MAX_ATTEMPTS", 10)

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:    viper.GetString("PGSQL_URL"),
		MigrationsPath: viper.GetString("MIGRATIONS_PATH"),
		StoreDriver:    strings.ToLower(viper.GetString("STORE_DRIVER")),
		Port:           viper.GetString("PORT"),
		IsProduction:   viper.GetBool("IS_PRODUCTION"),
		JWTSecret:      viper.GetString("JWT_SECRET"),
		RedisAddr:      viper.GetString("REDIS_ADDR"),
		KafkaBrokers:   splitList(viper.GetString("KAFKA_BROKERS")),
		KafkaTopic:     viper.GetString("KAFKA_TOPIC"),
		RateLimit:      viper.GetString("RATE_LIMIT"),

		CORSAllowedOrigins:    splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		SideEffectMaxAttempts: viper.GetInt("SIDE_EFFECT_MAX_ATTEMPTS"),
	}

	if cfg.StoreDriver != StoreDriverPostgres && cfg.StoreDriver != StoreDriverMemory {
		log.Printf("Warning: Unknown STORE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StoreDriver, StoreDriverPostgres)
		cfg.StoreDriver = StoreDriverPostgres
	}
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.LockTTL = durationOr("LOCK_TTL", 10*time.Second)
	cfg.LockMaxWait = durationOr("LOCK_MAX_WAIT", 5*time.Second)
	cfg.SideEffectRetryInterval = durationOr("SIDE_EFFECT_RETRY_INTERVAL", time.Minute)

	if cfg.SideEffectMaxAttempts < 1 {
		log.Printf("Warning: Invalid SIDE_EFFECT_MAX_ATTEMPTS (%d). Defaulting to 10.\n", cfg.SideEffectMaxAttempts)
		cfg.SideEffectMaxAttempts = 10
	}

	return cfg, nil
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
