package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds environment-based settings
type Config struct {
	Environment   string
	ServerAddress string
	LogLevel      string

	DatabaseURL string

	JWTSecret      string
	JWTAlgorithm   string
	AccessTokenTTL time.Duration

	AdminUsername string
	AdminPassword string
	UserUsername  string
	UserPassword  string

	ListDefaultLimit int
	NullTimeLiteral  string

	CORSAllowedOrigins []string

	RedisAddress  string
	RedisUsername string
	RedisPassword string
	CacheTTL      time.Duration

	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTTopicPrefix string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	jwt := os.Getenv("JWT_SECRET")
	if jwt == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ttl, err := getDuration("ACCESS_TOKEN_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getDuration("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	limit, err := getInt("LIST_DEFAULT_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, fmt.Errorf("LIST_DEFAULT_LIMIT must not be negative")
	}

	return &Config{
		Environment:   getString("APP_ENV", "production"),
		ServerAddress: getString("SERVER_ADDRESS", ":8080"),
		LogLevel:      getString("LOG_LEVEL", "info"),

		DatabaseURL: getString("DATABASE_URL", "file:media.db"),

		JWTSecret:      jwt,
		JWTAlgorithm:   getString("JWT_ALGORITHM", "HS256"),
		AccessTokenTTL: ttl,

		AdminUsername: getString("ADMIN_USERNAME", "admin"),
		AdminPassword: getString("ADMIN_PASSWORD", "adminpassword"),
		UserUsername:  getString("USER_USERNAME", "user"),
		UserPassword:  getString("USER_PASSWORD", "userpassword"),

		ListDefaultLimit: limit,
		NullTimeLiteral:  os.Getenv("NULL_TIME_LITERAL"),

		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CacheTTL:      cacheTTL,

		MQTTBrokerURL:   os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:    getString("MQTT_CLIENT_ID", "cuepoint"),
		MQTTTopicPrefix: getString("MQTT_TOPIC_PREFIX", "media"),
	}, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
