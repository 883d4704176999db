package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Share    ShareConfig    `mapstructure:"share"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AppConfig struct {
	// PublicURL prefixes share links, e.g. https://grind.example.com
	PublicURL string `mapstructure:"public_url"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
	// Transactions needs a replica set. Without it the fork falls back to
	// compensating cleanup.
	Transactions bool `mapstructure:"transactions"`
}

type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	PresignTTL      time.Duration `mapstructure:"presign_ttl"`
}

// Enabled reports whether plan export has somewhere to write.
func (c S3Config) Enabled() bool { return c.BucketName != "" }

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type ShareConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr             string `mapstructure:"addr"`
	Password         string `mapstructure:"password"`
	PreviewPerMinute int    `mapstructure:"preview_per_minute"`
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

type CacheConfig struct {
	SizeMB int           `mapstructure:"size_mb"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	JSON   bool   `mapstructure:"json"`
	File   string `mapstructure:"file"`
	Stdout bool   `mapstructure:"stdout"`
}

// LoadConfig reads config.yaml from path, then lets environment variables
// override any key (server.address -> SERVER_ADDRESS).
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// no file: defaults plus environment
		err = nil
	} else if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}
	config.App.PublicURL = strings.TrimRight(config.App.PublicURL, "/")

	return config, config.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("app.public_url", "http://localhost:8080")
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "weekly_grind")
	v.SetDefault("database.transactions", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.presign_ttl", "15m")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("share.ttl", "168h")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.preview_per_minute", 30)
	v.SetDefault("cache.size_mb", 8)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.stdout", true)
	// the S3 keys have no sensible defaults but must be known to viper for
	// AutomaticEnv to pick them up during Unmarshal
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	if c.JWT.Expiration <= 0 {
		return errors.New("jwt.expiration must be positive")
	}
	if c.Share.TTL <= 0 {
		return errors.New("share.ttl must be positive")
	}
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" || c.Database.Name == "" {
			return errors.New("database.uri and database.name are required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if c.Redis.Enabled() && c.Redis.PreviewPerMinute <= 0 {
		return errors.New("redis.preview_per_minute must be positive when redis is configured")
	}
	return nil
}
