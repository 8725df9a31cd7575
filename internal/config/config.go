package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config is read by viper from an optional app.env file and the environment.
// Environment variables win over the file.
type Config struct {
	AppName  string `mapstructure:"APP_NAME"`
	AppEnv   string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	Port     string `mapstructure:"PORT"`

	// MySQL
	MySQLHost      string        `mapstructure:"MYSQL_HOST"`
	MySQLPort      int           `mapstructure:"MYSQL_PORT"`
	MySQLUser      string        `mapstructure:"MYSQL_USER"`
	MySQLPassword  string        `mapstructure:"MYSQL_PASSWORD"`
	MySQLDatabase  string        `mapstructure:"MYSQL_DATABASE"`
	DBMaxOpenConns int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DBConnIdleTime time.Duration `mapstructure:"DB_CONN_MAX_IDLE_TIME"`
	DBAutoMigrate  bool          `mapstructure:"DB_AUTO_MIGRATE"`

	// Redis, empty address disables caching and idempotency keys
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPoolSize int    `mapstructure:"REDIS_POOL_SIZE"`

	// RabbitMQ, empty URL disables event publishing
	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`
	OrderExchange string `mapstructure:"ORDER_EXCHANGE"`

	CartServiceURL     string        `mapstructure:"CART_SERVICE_URL"`
	CartServiceTimeout time.Duration `mapstructure:"CART_SERVICE_TIMEOUT"`

	OrderCacheTTL      time.Duration `mapstructure:"ORDER_CACHE_TTL"`
	CacheRedeleteDelay time.Duration `mapstructure:"ORDER_CACHE_REDELETE_DELAY"`
	IdempotencyTTL     time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout    time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "marketplace-orders")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", "8080")

	v.SetDefault("MYSQL_HOST", "localhost")
	v.SetDefault("MYSQL_PORT", 3306)
	v.SetDefault("MYSQL_USER", "root")
	v.SetDefault("MYSQL_PASSWORD", "")
	v.SetDefault("MYSQL_DATABASE", "marketplace")
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_MAX_IDLE_CONNS", 20)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", time.Minute)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 50)

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("ORDER_EXCHANGE", "order.exchange")

	v.SetDefault("CART_SERVICE_URL", "http://localhost:8081")
	v.SetDefault("CART_SERVICE_TIMEOUT", 2*time.Second)

	v.SetDefault("ORDER_CACHE_TTL", 30*time.Second)
	v.SetDefault("ORDER_CACHE_REDELETE_DELAY", 500*time.Millisecond)
	v.SetDefault("IDEMPOTENCY_TTL", 24*time.Hour)
	v.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
}

// LoadConfig reads configuration from path/app.env, if present, and the
// environment.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err == nil {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("Using config file")
	} else {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		log.Debug().Msg("No config file found, using environment variables and defaults")
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.MySQLHost == "" || c.MySQLDatabase == "" {
		return errors.New("MYSQL_HOST and MYSQL_DATABASE are required")
	}
	if c.OrderCacheTTL < 0 || c.CacheRedeleteDelay < 0 || c.IdempotencyTTL < 0 {
		return errors.New("cache TTLs must not be negative")
	}
	return nil
}

func (c Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.MySQLUser, c.MySQLPassword, c.MySQLHost, c.MySQLPort, c.MySQLDatabase)
}
