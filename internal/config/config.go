// Package config loads eventhub settings from defaults, an optional .env
// file, EVENTHUB_* environment variables and bound command-line flags.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "EVENTHUB"

type Config struct {
	ServerAddress   string        `validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	Store           string        `validate:"oneof=postgres memory"`
	PostgresConn    string        `validate:"required_if=Store postgres"`
	AutoMigrate     bool

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	ReportsDir string `validate:"required"`

	RedisAddr     string
	RedisPassword string
	RedisDB       int    `validate:"gte=0"`
	RedisStream   string `validate:"required_with=RedisAddr"`
	RedisMaxLen   int64  `validate:"gte=0"`

	StrictSponsorAmount bool
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("server.address", "0.0.0.0:8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("store", "postgres")
	v.SetDefault("postgres.conn", "")
	v.SetDefault("migrations.auto", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("reports.dir", "./uploads/reports")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "eventhub:audit")
	v.SetDefault("redis.max_len", 10000)
	v.SetDefault("workflow.strict_sponsor_amount", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unprefixed names kept for existing deployments.
	_ = v.BindEnv("postgres.conn", envPrefix+"_POSTGRES_CONN", "POSTGRES_CONN")
	_ = v.BindEnv("server.address", envPrefix+"_SERVER_ADDRESS", "SERVER_ADDRESS")
	return v
}

// LoadDotEnv loads path into the process environment if it exists.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "stat %s", path)
	}
	return errors.Wrapf(godotenv.Load(path), "load %s", path)
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServerAddress:       v.GetString("server.address"),
		ShutdownTimeout:     v.GetDuration("server.shutdown_timeout"),
		Store:               strings.ToLower(v.GetString("store")),
		PostgresConn:        v.GetString("postgres.conn"),
		AutoMigrate:         v.GetBool("migrations.auto"),
		LogLevel:            strings.ToLower(v.GetString("log.level")),
		LogFormat:           strings.ToLower(v.GetString("log.format")),
		ReportsDir:          v.GetString("reports.dir"),
		RedisAddr:           v.GetString("redis.addr"),
		RedisPassword:       v.GetString("redis.password"),
		RedisDB:             v.GetInt("redis.db"),
		RedisStream:         v.GetString("redis.stream"),
		RedisMaxLen:         v.GetInt64("redis.max_len"),
		StrictSponsorAmount: v.GetBool("workflow.strict_sponsor_amount"),
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
