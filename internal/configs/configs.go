/*
Package configs is responsible for loading and parsing the application's configuration settings.

All settings are read from operating system environment variables at startup
and treated as read-only afterwards: server parameters, Redis connection
details, room and connection limits, message bounds, and file sharing rules.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment    string
	Port           int
	AllowedOrigins []string

	// Redis Settings (durable code/history store)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Room and Connection Limits
	MaxConnectionsPerRoom int
	MaxConnectionsPerUser int
	MessageHistoryLength  int
	RoomCodeLength        int

	// Message and Identifier Bounds
	MaxMessageLength           int
	MaxRoomIDLength            int
	MaxUserIDLength            int
	RateLimitMessagesPerMinute int

	// File Sharing Settings
	MaxFileSize      int64
	AllowedFileTypes []string

	// S3 Blob Storage Settings
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// defaultAllowedFileTypes is the MIME allow-list applied when
// ALLOWED_FILE_TYPES is not set.
var defaultAllowedFileTypes = []string{
	"image/jpeg", "image/png", "image/gif", "image/webp",
	"application/pdf", "text/plain", "text/csv",
	"application/json", "application/zip",
}

// LoadConfig reads and parses the application configuration from environment
// variables, applying defaults and validating values. It returns a pointer to
// the AppConfig struct and any error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	// --- Redis Settings ---
	// Redis is the durable store for room codes and history. It is allowed
	// to be unreachable: the store layer falls back to in-process memory.
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}

	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.RedisDB = redisDB

	// --- Room and Connection Limits ---
	if cfg.MaxConnectionsPerRoom, err = intEnv("MAX_CONNECTIONS_PER_ROOM", 100); err != nil {
		return nil, err
	}
	if cfg.MaxConnectionsPerUser, err = intEnv("MAX_CONNECTIONS_PER_USER", 5); err != nil {
		return nil, err
	}
	if cfg.MessageHistoryLength, err = intEnv("MESSAGE_HISTORY_LENGTH", 50); err != nil {
		return nil, err
	}
	if cfg.RoomCodeLength, err = intEnv("ROOM_CODE_LENGTH", 5); err != nil {
		return nil, err
	}

	if cfg.MaxConnectionsPerRoom < 1 || cfg.MaxConnectionsPerUser < 1 {
		return nil, fmt.Errorf("connection limits must be at least 1 (room=%d, user=%d)", cfg.MaxConnectionsPerRoom, cfg.MaxConnectionsPerUser)
	}
	if cfg.MessageHistoryLength < 1 {
		return nil, fmt.Errorf("MESSAGE_HISTORY_LENGTH must be at least 1, got %d", cfg.MessageHistoryLength)
	}
	if cfg.RoomCodeLength < 4 {
		return nil, fmt.Errorf("ROOM_CODE_LENGTH below 4 offers no meaningful protection, got %d", cfg.RoomCodeLength)
	}

	// --- Message and Identifier Bounds ---
	if cfg.MaxMessageLength, err = intEnv("MAX_MESSAGE_LENGTH", 1000); err != nil {
		return nil, err
	}
	if cfg.MaxRoomIDLength, err = intEnv("MAX_ROOM_ID_LENGTH", 50); err != nil {
		return nil, err
	}
	if cfg.MaxUserIDLength, err = intEnv("MAX_USER_ID_LENGTH", 50); err != nil {
		return nil, err
	}
	if cfg.RateLimitMessagesPerMinute, err = intEnv("RATE_LIMIT_MESSAGES_PER_MINUTE", 60); err != nil {
		return nil, err
	}

	// --- File Sharing Settings ---
	maxFileSize, err := intEnv("MAX_FILE_SIZE", 10*1024*1024)
	if err != nil {
		return nil, err
	}
	cfg.MaxFileSize = int64(maxFileSize)

	typesStr := os.Getenv("ALLOWED_FILE_TYPES")
	if typesStr != "" {
		for _, t := range strings.Split(typesStr, ",") {
			trimmed := strings.TrimSpace(t)
			if trimmed != "" {
				cfg.AllowedFileTypes = append(cfg.AllowedFileTypes, strings.ToLower(trimmed))
			}
		}
	} else {
		cfg.AllowedFileTypes = defaultAllowedFileTypes
	}

	// --- S3 Blob Storage Settings ---
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	if cfg.S3BucketName == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME environment variable is required for blob storage")
	}

	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	if cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("S3_ENDPOINT environment variable is required for blob storage")
	}

	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	if cfg.S3AccessKeyID == "" {
		return nil, fmt.Errorf("S3_ACCESS_KEY_ID environment variable is required for blob storage")
	}

	cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	if cfg.S3SecretAccessKey == "" {
		return nil, fmt.Errorf("S3_SECRET_ACCESS_KEY environment variable is required for blob storage")
	}

	return cfg, nil
}

// intEnv reads an integer environment variable, returning the fallback when unset.
func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}

	return value, nil
}
