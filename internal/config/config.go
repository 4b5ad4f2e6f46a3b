package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/stellar/go/network"
)

const (
	DefaultRPCServerURL  = "https://soroban-testnet.stellar.org"
	DefaultDecompilerURL = "https://steexp-api.fly.dev"
	DefaultAPIPort       = 8080
)

type Config struct {
	// RPC Server URL
	RPCServerURL string

	// Network passphrase ( mainnet or testnet )
	NetworkPassphrase string

	// Base URL of the decompilation service, "/decompile" is appended
	DecompilerURL string

	// Port for the HTTP API ( serve command only )
	APIPort int

	// debug, info, warn or error
	LogLevel string
}

// Load reads a .env file if one exists and builds the configuration from the environment
func Load() *Config {
	// A missing .env file is fine, the process environment is used as-is
	_ = godotenv.Load()

	return &Config{
		RPCServerURL:      getEnv("RPC_SERVER_URL", DefaultRPCServerURL),
		NetworkPassphrase: getEnv("NETWORK_PASSPHRASE", network.TestNetworkPassphrase),
		DecompilerURL:     getEnv("DECOMPILER_URL", DefaultDecompilerURL),
		APIPort:           getEnvAsInt("API_PORT", DefaultAPIPort),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.RPCServerURL == "" {
		return fmt.Errorf("RPCServerURL is required")
	}
	if _, err := url.ParseRequestURI(c.RPCServerURL); err != nil {
		return fmt.Errorf("RPCServerURL is not a valid URL: %w", err)
	}
	if c.NetworkPassphrase == "" {
		return fmt.Errorf("NetworkPassphrase is required")
	}
	if c.DecompilerURL == "" {
		return fmt.Errorf("DecompilerURL is required")
	}
	if _, err := url.ParseRequestURI(c.DecompilerURL); err != nil {
		return fmt.Errorf("DecompilerURL is not a valid URL: %w", err)
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535, got %d", c.APIPort)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, unknown values fall back to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper: get string from env
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// Helper: get int from env
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
