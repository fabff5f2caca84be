package configs

import (
	"strings"
	"testing"
)

// clearEnv blanks every variable LoadConfig reads, so values leaking in from
// the test environment cannot skew the assertions.
func clearEnv(t *testing.T) {
	t.Helper()

	vars := []string{
		"ENVIRONMENT", "PORT", "ALLOWED_ORIGINS",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"MAX_CONNECTIONS_PER_ROOM", "MAX_CONNECTIONS_PER_USER",
		"MESSAGE_HISTORY_LENGTH", "ROOM_CODE_LENGTH",
		"MAX_MESSAGE_LENGTH", "MAX_ROOM_ID_LENGTH", "MAX_USER_ID_LENGTH",
		"RATE_LIMIT_MESSAGES_PER_MINUTE",
		"MAX_FILE_SIZE", "ALLOWED_FILE_TYPES",
		"S3_BUCKET_NAME", "S3_ENDPOINT", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
	}
	for _, v := range vars {
		t.Setenv(v, "")
	}
}

// setRequiredEnv provides the blob storage settings without which LoadConfig fails.
func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("S3_BUCKET_NAME", "relay-files")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3_ACCESS_KEY_ID", "test-access")
	t.Setenv("S3_SECRET_ACCESS_KEY", "test-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want localhost:6379", cfg.RedisAddr)
	}
	if cfg.MaxConnectionsPerRoom != 100 {
		t.Errorf("MaxConnectionsPerRoom = %d, want 100", cfg.MaxConnectionsPerRoom)
	}
	if cfg.MaxConnectionsPerUser != 5 {
		t.Errorf("MaxConnectionsPerUser = %d, want 5", cfg.MaxConnectionsPerUser)
	}
	if cfg.MessageHistoryLength != 50 {
		t.Errorf("MessageHistoryLength = %d, want 50", cfg.MessageHistoryLength)
	}
	if cfg.RoomCodeLength != 5 {
		t.Errorf("RoomCodeLength = %d, want 5", cfg.RoomCodeLength)
	}
	if cfg.MaxMessageLength != 1000 {
		t.Errorf("MaxMessageLength = %d, want 1000", cfg.MaxMessageLength)
	}
	if cfg.MaxRoomIDLength != 50 || cfg.MaxUserIDLength != 50 {
		t.Errorf("identifier bounds = (%d, %d), want (50, 50)", cfg.MaxRoomIDLength, cfg.MaxUserIDLength)
	}
	if cfg.RateLimitMessagesPerMinute != 60 {
		t.Errorf("RateLimitMessagesPerMinute = %d, want 60", cfg.RateLimitMessagesPerMinute)
	}
	if cfg.MaxFileSize != 10*1024*1024 {
		t.Errorf("MaxFileSize = %d, want 10 MiB", cfg.MaxFileSize)
	}
	if len(cfg.AllowedFileTypes) != 9 {
		t.Errorf("AllowedFileTypes has %d entries, want the 9 defaults", len(cfg.AllowedFileTypes))
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins = %v, want empty", cfg.AllowedOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)

	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("MAX_CONNECTIONS_PER_ROOM", "7")
	t.Setenv("ROOM_CODE_LENGTH", "8")
	t.Setenv("ALLOWED_FILE_TYPES", "image/png, Application/PDF")
	t.Setenv("MAX_FILE_SIZE", "1048576")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Environment != "production" {
		t.Errorf("Environment = %q, want production", cfg.Environment)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example" || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v, want the two trimmed origins", cfg.AllowedOrigins)
	}
	if cfg.MaxConnectionsPerRoom != 7 {
		t.Errorf("MaxConnectionsPerRoom = %d, want 7", cfg.MaxConnectionsPerRoom)
	}
	if cfg.RoomCodeLength != 8 {
		t.Errorf("RoomCodeLength = %d, want 8", cfg.RoomCodeLength)
	}
	if cfg.MaxFileSize != 1048576 {
		t.Errorf("MaxFileSize = %d, want 1048576", cfg.MaxFileSize)
	}

	// MIME types are normalized to lower case.
	want := []string{"image/png", "application/pdf"}
	if len(cfg.AllowedFileTypes) != len(want) {
		t.Fatalf("AllowedFileTypes = %v, want %v", cfg.AllowedFileTypes, want)
	}
	for i, w := range want {
		if cfg.AllowedFileTypes[i] != w {
			t.Errorf("AllowedFileTypes[%d] = %q, want %q", i, cfg.AllowedFileTypes[i], w)
		}
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		envName string
		value   string
		wantIn  string
	}{
		{"privileged port", "PORT", "80", "port number"},
		{"non-numeric port", "PORT", "http", "invalid PORT"},
		{"short room code", "ROOM_CODE_LENGTH", "3", "ROOM_CODE_LENGTH"},
		{"zero history", "MESSAGE_HISTORY_LENGTH", "0", "MESSAGE_HISTORY_LENGTH"},
		{"zero room limit", "MAX_CONNECTIONS_PER_ROOM", "0", "connection limits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			setRequiredEnv(t)
			t.Setenv(tt.envName, tt.value)

			_, err := LoadConfig()
			if err == nil {
				t.Fatal("LoadConfig accepted an invalid value")
			}
			if !strings.Contains(err.Error(), tt.wantIn) {
				t.Errorf("error %q does not mention %q", err, tt.wantIn)
			}
		})
	}
}

func TestLoadConfigRequiresBlobSettings(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)
	t.Setenv("S3_BUCKET_NAME", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig accepted a missing S3 bucket name")
	}
}
