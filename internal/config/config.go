package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB        DBConfig
	Server    ServerConfig
	Seeder    SeederConfig
	Discovery DiscoveryConfig
	Redeem    RedeemConfig
	Cache     CacheConfig
	Analytics AnalyticsConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// SeederConfig holds settings for catalog import
type SeederConfig struct {
	DataDir   string
	BatchSize int
	// Cities limits the import to these city codes; empty imports all
	Cities []string
}

// DiscoveryConfig holds location and ranking settings
type DiscoveryConfig struct {
	// Fallback origin used when the caller's position is unavailable
	FallbackLat       float64
	FallbackLng       float64
	TrendingThreshold int
	LocateTimeout     time.Duration
	// GeoLookupURL enables IP based geolocation when the client sends no position
	GeoLookupURL string
	GeoLookupRPS int
}

// RedeemConfig holds redemption code settings
type RedeemConfig struct {
	CodeLength int
	Interval   time.Duration
	Tick       time.Duration
	IdleTTL    time.Duration
	Seed       int64
}

// CacheConfig holds Redis settings. An empty address disables caching.
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// Enabled reports whether a Redis address is configured
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// AnalyticsConfig holds dashboard settings
type AnalyticsConfig struct {
	Seed int64
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		// SQLite in-memory database
		if c.Name != "" && c.Name != "crwd" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "crwd"),
			Password: getEnv("DB_PASSWORD", "crwd_password"),
			Name:     getEnv("DB_NAME", "crwd"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port:            getEnv("APP_PORT", "8080"),
			ShutdownTimeout: getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Seeder: SeederConfig{
			DataDir:   getEnv("SEEDER_DATA_DIR", "data"),
			BatchSize: getEnvAsInt("SEEDER_BATCH_SIZE", 500),
			Cities:    getEnvAsSlice("SEEDER_CITIES"),
		},
		Discovery: DiscoveryConfig{
			FallbackLat:       getEnvAsFloat("FALLBACK_LAT", 44.4268),
			FallbackLng:       getEnvAsFloat("FALLBACK_LNG", 26.1025),
			TrendingThreshold: getEnvAsInt("TRENDING_THRESHOLD", 200),
			LocateTimeout:     getEnvAsDuration("LOCATE_TIMEOUT", 10*time.Second),
			GeoLookupURL:      getEnv("GEO_LOOKUP_URL", ""),
			GeoLookupRPS:      getEnvAsInt("GEO_LOOKUP_RPS", 5),
		},
		Redeem: RedeemConfig{
			CodeLength: getEnvAsInt("REDEEM_CODE_LENGTH", 5),
			Interval:   getEnvAsDuration("REDEEM_INTERVAL", 60*time.Second),
			Tick:       getEnvAsDuration("REDEEM_TICK", time.Second),
			IdleTTL:    getEnvAsDuration("REDEEM_IDLE_TTL", 30*time.Minute),
			Seed:       int64(getEnvAsInt("REDEEM_SEED", 0)),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			TTL:           getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		},
		Analytics: AnalyticsConfig{
			Seed: int64(getEnvAsInt("ANALYTICS_SEED", 1)),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
