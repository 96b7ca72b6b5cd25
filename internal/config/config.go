// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all simulation and transport
// settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// WORLD CONFIGURATION
// =============================================================================

// WorldConfig holds map and simulation tuning.
type WorldConfig struct {
	MapPath  string  // Path to the map JSON document
	TickRate float64 // Target simulation ticks per second
}

// DefaultWorld returns the default world configuration.
func DefaultWorld() WorldConfig {
	return WorldConfig{
		MapPath:  "map.json",
		TickRate: 240,
	}
}

// WorldFromEnv returns world configuration with environment overrides.
func WorldFromEnv() WorldConfig {
	cfg := DefaultWorld()

	if p := os.Getenv("ELUDING_MAP_PATH"); p != "" {
		cfg.MapPath = p
	}
	if r := getEnvFloat("ELUDING_TICK_RATE", 0); r > 0 {
		cfg.TickRate = r
	}

	return cfg
}

// =============================================================================
// NETWORK CONFIGURATION
// =============================================================================

// NetworkConfig holds UDP transport and debug-surface binding settings.
type NetworkConfig struct {
	Port          int    // UDP port the server listens on
	DebugAddr     string // bind address for /metrics, /debug/pprof, /health
	EventLogPath  string
}

// DefaultNetwork returns the default network configuration.
func DefaultNetwork() NetworkConfig {
	return NetworkConfig{
		Port:         12345,
		DebugAddr:    "127.0.0.1:6060",
		EventLogPath: "events.jsonl",
	}
}

// NetworkFromEnv returns network configuration with environment overrides.
func NetworkFromEnv() NetworkConfig {
	cfg := DefaultNetwork()

	if p := getEnvInt("ELUDING_PORT", 0); p > 0 {
		cfg.Port = p
	}
	if a := os.Getenv("ELUDING_DEBUG_ADDR"); a != "" {
		cfg.DebugAddr = a
	}
	if p := os.Getenv("ELUDING_EVENT_LOG_PATH"); p != "" {
		cfg.EventLogPath = p
	}

	return cfg
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits controls DoS protection and performance limits.
type ResourceLimits struct {
	MaxClients        int // Hard cap on concurrently connected clients
	MaxEnemiesPerArea int // Hard cap on enemies alive in a single area
	MaxTotalEnemies   int // Hard cap on enemies alive across the whole world
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxClients:        64,
		MaxEnemiesPerArea: 256,
		MaxTotalEnemies:   2048,
	}
}

// LimitsFromEnv returns resource limits with environment overrides.
func LimitsFromEnv() ResourceLimits {
	cfg := DefaultLimits()

	if v := getEnvInt("ELUDING_MAX_CLIENTS", 0); v > 0 {
		cfg.MaxClients = v
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	World   WorldConfig
	Network NetworkConfig
	Limits  ResourceLimits
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		World:   WorldFromEnv(),
		Network: NetworkFromEnv(),
		Limits:  LimitsFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
