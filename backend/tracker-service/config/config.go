package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory    = "memory"
	BackendMongo     = "mongo"
	BackendRedis     = "redis"
	BackendCassandra = "cassandra"
)

type Config struct {
	ServerPort string
	CORSOrigin string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	StoreBackend string
	MongoURI     string
	MongoDBName  string
	SeedFile     string

	TokenStore string
	RedisAddr  string

	NotificationsBackend string
	CassandraHost        string

	LogFile  string
	LogLevel string

	LoginRateLimit float64
	LoginRateBurst int
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	cfg := &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		CORSOrigin:           getEnv("CORS_ORIGIN", "*"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		StoreBackend:         getEnv("STORE_BACKEND", BackendMemory),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:          getEnv("MONGO_DB_NAME", "tracker_db"),
		SeedFile:             os.Getenv("SEED_FILE"),
		TokenStore:           getEnv("TOKEN_STORE", BackendMemory),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		NotificationsBackend: getEnv("NOTIFICATIONS_BACKEND", BackendMemory),
		CassandraHost:        getEnv("CASS_DB", "127.0.0.1"),
		LogFile:              os.Getenv("LOG_FILE"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.LoginRateLimit, err = getFloat("LOGIN_RATE_LIMIT", 1); err != nil {
		return nil, err
	}
	burst, err := getFloat("LOGIN_RATE_BURST", 5)
	if err != nil {
		return nil, err
	}
	cfg.LoginRateBurst = int(burst)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= c.AccessTokenTTL {
		return fmt.Errorf("invalid token lifetimes: access=%s refresh=%s", c.AccessTokenTTL, c.RefreshTokenTTL)
	}
	if err := oneOf("STORE_BACKEND", c.StoreBackend, BackendMemory, BackendMongo); err != nil {
		return err
	}
	if err := oneOf("TOKEN_STORE", c.TokenStore, BackendMemory, BackendRedis); err != nil {
		return err
	}
	return oneOf("NOTIFICATIONS_BACKEND", c.NotificationsBackend, BackendMemory, BackendCassandra)
}

func oneOf(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %q", name, allowed, value)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return f, nil
}
