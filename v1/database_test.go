package v1

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDatabaseConfig(t *testing.T) {
	config := NewDatabaseConfig()
	assert.NotNil(t, config)
	assert.Equal(t, "localhost", config.Host)
	assert.Equal(t, "5432", config.Port)
	assert.Equal(t, "postgres", config.Username)
	assert.Equal(t, "password", config.Password)
	assert.Equal(t, "importiq", config.Database)
	assert.Equal(t, "require", config.SSLMode)
	assert.Equal(t, 25, config.MaxOpenConns)
	assert.Equal(t, 5, config.MaxIdleConns)
	assert.Equal(t, time.Hour, config.ConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, config.ConnMaxIdleTime)
}

func TestNewDatabaseConfig_WithEnvVars(t *testing.T) {
	os.Setenv("IMPORTIQ_DB_HOSTNAME", "test-host")
	os.Setenv("IMPORTIQ_DB_PORT", "5433")
	os.Setenv("IMPORTIQ_DB_USERNAME", "test-user")
	os.Setenv("IMPORTIQ_DB_PASSWORD", "test-pass")
	os.Setenv("IMPORTIQ_DB_DATABASENAME", "test-db")
	os.Setenv("DB_SSLMODE", "disable")
	defer func() {
		os.Unsetenv("IMPORTIQ_DB_HOSTNAME")
		os.Unsetenv("IMPORTIQ_DB_PORT")
		os.Unsetenv("IMPORTIQ_DB_USERNAME")
		os.Unsetenv("IMPORTIQ_DB_PASSWORD")
		os.Unsetenv("IMPORTIQ_DB_DATABASENAME")
		os.Unsetenv("DB_SSLMODE")
	}()

	config := NewDatabaseConfig()
	assert.Equal(t, "test-host", config.Host)
	assert.Equal(t, "5433", config.Port)
	assert.Equal(t, "test-user", config.Username)
	assert.Equal(t, "test-pass", config.Password)
	assert.Equal(t, "test-db", config.Database)
	assert.Equal(t, "disable", config.SSLMode)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Run("Returns env var when set", func(t *testing.T) {
		key := "TEST_ENV_VAR_12345"
		os.Setenv(key, "test-value")
		defer os.Unsetenv(key)

		assert.Equal(t, "test-value", getEnvOrDefault(key, "default"))
	})

	t.Run("Returns default when not set", func(t *testing.T) {
		key := "TEST_ENV_VAR_NONEXISTENT_12345"
		os.Unsetenv(key)

		assert.Equal(t, "default-value", getEnvOrDefault(key, "default-value"))
	})

	t.Run("Returns default when empty string", func(t *testing.T) {
		key := "TEST_ENV_VAR_EMPTY_12345"
		os.Setenv(key, "")
		defer os.Unsetenv(key)

		assert.Equal(t, "default", getEnvOrDefault(key, "default"))
	})
}
