package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NomadCrew/cats-backend/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestMain(m *testing.M) {
	logger.IsTest = true
	os.Exit(m.Run())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
	}{
		{
			name:    "valid configuration",
			envVars: map[string]string{"JWT_SECRET_KEY": testSecret},
		},
		{
			name:        "missing JWT secret",
			envVars:     map[string]string{},
			expectError: true,
		},
		{
			name:        "short JWT secret",
			envVars:     map[string]string{"JWT_SECRET_KEY": "too-short"},
			expectError: true,
		},
		{
			name: "non mongo uri",
			envVars: map[string]string{
				"JWT_SECRET_KEY": testSecret,
				"MONGODB_URI":    "postgresql://localhost:5432/cats",
			},
			expectError: true,
		},
		{
			name: "database disabled skips database checks",
			envVars: map[string]string{
				"JWT_SECRET_KEY": testSecret,
				"USE_DB":         "false",
				"MONGODB_URI":    "",
			},
		},
		{
			name: "invalid origin",
			envVars: map[string]string{
				"JWT_SECRET_KEY":  testSecret,
				"ALLOWED_ORIGINS": "not a url",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "")
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := Load(Options{})
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, cfg)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "cats", cfg.Database.Name)
	assert.Equal(t, int64(5), int64(cfg.Database.OperationTimeout().Seconds()))
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.WindowSeconds)
}

func TestLoad_DatabaseToggle(t *testing.T) {
	tests := []struct {
		value       string
		enabled     bool
		expectError bool
	}{
		{value: "1", enabled: true},
		{value: "true", enabled: true},
		{value: "TRUE", enabled: true},
		{value: "yes", enabled: true},
		{value: "YES", enabled: true},
		{value: "0", enabled: false},
		{value: "no", enabled: false},
		{value: "off", enabled: false},
		{value: "maybe", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", testSecret)
			t.Setenv("USE_DB", tt.value)

			cfg, err := Load(Options{})
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.enabled, cfg.Database.Enabled)
		})
	}
}

func TestLoad_LayeredFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yaml", `
server:
  port: "9000"
  version: "1.2.3"
database:
  name: from_default
`)
	writeFile(t, dir, "staging.yaml", `
database:
  name: from_staging
  uri: mongodb://staging-db:27017
`)
	writeFile(t, dir, "local.yaml", `
server:
  version: "local"
`)

	t.Setenv("RUN_MODE", "staging")
	t.Setenv("JWT_SECRET_KEY", testSecret)

	cfg, err := Load(Options{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "local", cfg.Server.Version)
	assert.Equal(t, "from_staging", cfg.Database.Name)
	assert.Equal(t, "mongodb://staging-db:27017", cfg.Database.URI)

	t.Run("environment wins over files", func(t *testing.T) {
		t.Setenv("PORT", "7000")
		t.Setenv("MONGODB_DATABASE", "from_env")

		cfg, err := Load(Options{Dir: dir})
		require.NoError(t, err)
		assert.Equal(t, "7000", cfg.Server.Port)
		assert.Equal(t, "from_env", cfg.Database.Name)
	})
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, dir, ".env", "JWT_SECRET_KEY="+testSecret+"\nMONGODB_DATABASE=from_dotenv\n")

	// godotenv never overrides variables that are already set.
	t.Setenv("JWT_SECRET_KEY", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET_KEY"))
	t.Setenv("MONGODB_DATABASE", "")
	require.NoError(t, os.Unsetenv("MONGODB_DATABASE"))

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "from_dotenv", cfg.Database.Name)
	assert.Equal(t, testSecret, cfg.Server.JwtSecretKey)
}

func TestLoad_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yaml", "server: [unclosed")
	t.Setenv("JWT_SECRET_KEY", testSecret)

	_, err := Load(Options{Dir: dir})
	assert.Error(t, err)
}
