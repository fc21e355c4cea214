// Command gen-config writes config/{RUN_MODE}.yaml from the built-in
// defaults and the current environment (.env included).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NomadCrew/cats-backend/config"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const header = "# Generated by cmd/gen-config. Environment variables override every value here.\n"

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func validateRequiredEnv(key string, minLen int) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s environment variable is not set", key)
	}
	if len(value) < minLen {
		return "", fmt.Errorf("%s value is too short. It must be at least %d characters long. Current length: %d", key, minLen, len(value))
	}
	return value, nil
}

func build() (*config.Config, error) {
	cfg, err := config.Defaults()
	if err != nil {
		return nil, err
	}

	cfg.Server.Environment = config.Environment(getEnvOrDefault("SERVER_ENVIRONMENT", string(cfg.Server.Environment)))
	cfg.Server.Port = getEnvOrDefault("PORT", cfg.Server.Port)
	cfg.Server.Version = getEnvOrDefault("VERSION", cfg.Server.Version)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	jwtKey, err := validateRequiredEnv("JWT_SECRET_KEY", 32)
	if err != nil {
		return nil, err
	}
	cfg.Server.JwtSecretKey = jwtKey

	cfg.Database.URI = getEnvOrDefault("MONGODB_URI", cfg.Database.URI)
	cfg.Database.Name = getEnvOrDefault("MONGODB_DATABASE", cfg.Database.Name)
	cfg.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", cfg.Redis.Address)
	cfg.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Printf("Error loading .env: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := build()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Printf("Error marshaling YAML: %v\n", err)
		os.Exit(1)
	}

	// The file name is the RUN_MODE layer it will be loaded as.
	env := getEnvOrDefault("RUN_MODE", "development")
	if len(os.Args) > 1 {
		env = os.Args[1]
	}

	if err := os.MkdirAll("config", 0o755); err != nil {
		fmt.Printf("Error creating config directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join("config", env+".yaml")
	if err := os.WriteFile(filename, append([]byte(header), yamlData...), 0o600); err != nil {
		fmt.Printf("Error writing config file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated %s\n", filename)
}
