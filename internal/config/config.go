package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

// Insecure defaults that must never reach production
var insecureDefaults = map[string]bool{
	"your-secret-key-change-in-production": true,
	"internal-secret":                      true,
	"admin-key":                            true,
	"":                                     true,
}

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	JWT            JWTConfig
	Provision      ProvisionConfig
	AdminAPIKey    string
	InternalSecret string
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Schema   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

// ProvisionConfig controls what gets materialized on the remote hosts.
type ProvisionConfig struct {
	BaseDir    string // per-instance directories live under here
	Image      string // game server container image
	Network    string // external docker network the containers join
	DataVolume string // shared writable volume with the game install
	TickRate   int
	MaxPlayers int
}

func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8020"),
			Mode: getEnv("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "portal_user"),
			Password: getEnv("DB_PASSWORD", "portal_pass"),
			DBName:   getEnv("DB_NAME", "portal_db"),
			Schema:   getEnv("DB_SCHEMA", "gameservers"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", ""),
		},
		Provision: ProvisionConfig{
			BaseDir:    getEnv("PROVISION_BASE_DIR", "/opt/cs2/instances"),
			Image:      getEnv("PROVISION_IMAGE", "joedwards32/cs2:latest"),
			Network:    getEnv("PROVISION_NETWORK", "cs2-net"),
			DataVolume: getEnv("PROVISION_DATA_VOLUME", "cs2-data"),
			TickRate:   getEnvInt("PROVISION_TICKRATE", 128),
			MaxPlayers: getEnvInt("PROVISION_MAX_PLAYERS", 12),
		},
		AdminAPIKey:    getEnv("ADMIN_API_KEY", ""),
		InternalSecret: getEnv("INTERNAL_SECRET", ""),
	}

	// Do not log secrets
	log.Printf("[config] Gameserver Service loaded: port=%s db=%s/%s.%s image=%s",
		cfg.Server.Port, cfg.Database.Host, cfg.Database.DBName, cfg.Database.Schema, cfg.Provision.Image)

	return cfg
}

// Validate verifies the configuration; production must set real secrets.
func (c *Config) Validate() error {
	if insecureDefaults[c.JWT.SecretKey] {
		return fmt.Errorf("JWT_SECRET_KEY must be set to a secure value (current value is insecure or empty)")
	}
	if len(c.JWT.SecretKey) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters long")
	}

	if insecureDefaults[c.InternalSecret] {
		return fmt.Errorf("INTERNAL_SECRET must be set to a secure value (current value is insecure or empty)")
	}
	if len(c.InternalSecret) < 32 {
		return fmt.Errorf("INTERNAL_SECRET must be at least 32 characters long")
	}

	if insecureDefaults[c.AdminAPIKey] {
		return fmt.Errorf("ADMIN_API_KEY must be set to a secure value (current value is insecure or empty)")
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
