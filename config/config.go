package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Env         string
	Port        string
	StoreDriver string

	DBURL       string
	MongoURI    string
	MongoDBName string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessExpiryMin    int
	RefreshExpiryMin   int

	AdminEmail    string
	AdminPassword string
	AdminName     string

	EnableRegistration bool
	AdminOnlyLogin     bool

	StoreTimeout time.Duration
}

func Load() (*Config, error) {
	// Best effort: a missing .env just means everything comes from the
	// real environment.
	_ = godotenv.Load()

	cfg := &Config{
		Env:                getEnv("ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		StoreDriver:        getEnv("STORE_DRIVER", DriverPostgres),
		DBURL:              os.Getenv("DB_URL"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:        getEnv("MONGO_DB", "auth_service"),
		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		AccessExpiryMin:    getEnvAsInt("ACCESS_TOKEN_EXPIRY", 15),
		RefreshExpiryMin:   getEnvAsInt("REFRESH_TOKEN_EXPIRY", 10080),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		AdminName:          getEnv("ADMIN_NAME", "Administrator"),
		EnableRegistration: getEnvAsBool("ENABLE_REGISTRATION", false),
		AdminOnlyLogin:     getEnvAsBool("ADMIN_ONLY_LOGIN", false),
		StoreTimeout:       time.Duration(getEnvAsInt("STORE_TIMEOUT", 5)) * time.Second,
	}

	if cfg.AccessTokenSecret == "" {
		return nil, fmt.Errorf("missing required environment variable: ACCESS_TOKEN_SECRET")
	}
	if cfg.RefreshTokenSecret == "" {
		return nil, fmt.Errorf("missing required environment variable: REFRESH_TOKEN_SECRET")
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("missing required environment variable: DB_URL")
		}
	case DriverMongo, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.AdminOnlyLogin && cfg.AdminEmail == "" {
		return nil, fmt.Errorf("ADMIN_ONLY_LOGIN requires ADMIN_EMAIL")
	}

	return cfg, nil
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}
