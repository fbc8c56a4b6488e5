package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every runtime setting of the service.
type Config struct {
	Server   ServerConfig
	Reply    ReplyConfig
	Storage  StorageConfig
	Greeting GreetingConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	replyCfg, err := loadReplyConfig()
	if err != nil {
		return nil, err
	}

	storageCfg := loadStorageConfig()

	greetingCfg, err := loadGreetingConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Reply: replyCfg, Storage: storageCfg, Greeting: greetingCfg}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// ReplyConfig describes the remote reply-generation service.
type ReplyConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Enabled reports whether a remote backend is configured. Without one the
// reply client answers from its local canned set.
func (c ReplyConfig) Enabled() bool {
	return c.BaseURL != ""
}

func loadReplyConfig() (ReplyConfig, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("REPLY_API_BASE_URL")), "/")

	timeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("REPLY_TIMEOUT_SECONDS")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return ReplyConfig{}, fmt.Errorf("invalid REPLY_TIMEOUT_SECONDS value: %q", raw)
		}
		timeout = time.Duration(seconds) * time.Second
	}

	return ReplyConfig{BaseURL: baseURL, Timeout: timeout}, nil
}

// StorageConfig locates the sqlite database file.
type StorageConfig struct {
	Path string
}

func loadStorageConfig() StorageConfig {
	path := strings.TrimSpace(os.Getenv("DB_PATH"))
	if path == "" {
		path = "magonotec.db"
	}
	return StorageConfig{Path: path}
}

// GreetingConfig controls the auto-greeting check cadence.
type GreetingConfig struct {
	CheckInterval time.Duration
}

func loadGreetingConfig() (GreetingConfig, error) {
	minutes := 5
	if raw := strings.TrimSpace(os.Getenv("GREETING_CHECK_MINUTES")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return GreetingConfig{}, fmt.Errorf("invalid GREETING_CHECK_MINUTES value: %q", raw)
		}
		minutes = parsed
	}
	return GreetingConfig{CheckInterval: time.Duration(minutes) * time.Minute}, nil
}
