package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "marketplace-orders", cfg.AppName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3306, cfg.MySQLPort)
	assert.Equal(t, "order.exchange", cfg.OrderExchange)
	assert.Equal(t, 30*time.Second, cfg.OrderCacheTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.CacheRedeleteDelay)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.True(t, cfg.DBAutoMigrate)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := "PORT=9000\nMYSQL_DATABASE=fromfile\nORDER_CACHE_TTL=1m\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CART_SERVICE_TIMEOUT", "750ms")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "fromfile", cfg.MySQLDatabase)
	assert.Equal(t, time.Minute, cfg.OrderCacheTTL)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 750*time.Millisecond, cfg.CartServiceTimeout)
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Port: "8080", MySQLHost: "db", MySQLDatabase: "m"}
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Port = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MySQLDatabase = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.IdempotencyTTL = -time.Second
	assert.Error(t, bad.Validate())
}

func TestConfig_MySQLDSN(t *testing.T) {
	cfg := Config{MySQLUser: "u", MySQLPassword: "p", MySQLHost: "h", MySQLPort: 3307, MySQLDatabase: "d"}
	assert.Equal(t, "u:p@tcp(h:3307)/d?charset=utf8mb4&parseTime=True&loc=Local", cfg.MySQLDSN())
}
