package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For the upstream timeout

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort         string        // Application port
	DBUser          string        // Database user
	DBPassword      string        // Database password
	DBHost          string        // Database host
	DBPort          string        // Database port
	DBName          string        // Database name
	JWTSecret       string        // JWT secret key
	RedisAddr       string        // Redis server address
	RedisPass       string        // Redis password
	RedisDB         int           // Redis database number
	UpstreamBaseURL string        // Fulfillment provider base URL
	UpstreamAPIKey  string        // Fulfillment provider API key
	UpstreamTimeout time.Duration // Bound on every provider call
	CallbackToken   string        // Shared secret on the provider callback endpoint
	IsProd          bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	timeoutSec, _ := strconv.Atoi(os.Getenv("UPSTREAM_TIMEOUT_SEC"))
	if timeoutSec <= 0 {
		timeoutSec = 10 // Default provider timeout
	}
	return &Config{
		AppPort:         os.Getenv("APP_PORT"),                   // Application port
		DBUser:          os.Getenv("DB_USER"),                    // Database user
		DBPassword:      os.Getenv("DB_PASSWORD"),                // Database password
		DBHost:          os.Getenv("DB_HOST"),                    // Database host
		DBPort:          os.Getenv("DB_PORT"),                    // Database port
		DBName:          os.Getenv("DB_NAME"),                    // Database name
		JWTSecret:       os.Getenv("JWT_SECRET"),                 // JWT secret key
		RedisAddr:       os.Getenv("REDIS_ADDR"),                 // Redis server address
		RedisPass:       os.Getenv("REDIS_PASS"),                 // Redis password
		RedisDB:         redisDB,                                 // Redis database number
		UpstreamBaseURL: os.Getenv("UPSTREAM_BASE_URL"),          // Fulfillment provider base URL
		UpstreamAPIKey:  os.Getenv("UPSTREAM_API_KEY"),           // Fulfillment provider API key
		UpstreamTimeout: time.Duration(timeoutSec) * time.Second, // Provider call timeout
		CallbackToken:   os.Getenv("CALLBACK_TOKEN"),             // Callback shared secret
		IsProd:          os.Getenv("IS_PROD") == "true",          // Is production environment
	}
}
