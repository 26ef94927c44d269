package etc

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the configuration loaded by Init.
var Config *Configuration

//go:embed config.sample.yaml
var DefaultConfig []byte

// Configuration is the Configuration structure.
type Configuration struct {
	LogLevel string `mapstructure:"log_level"`

	Server struct {
		Addr            string        `mapstructure:"addr"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
		// TrustedProxies are the addresses or CIDRs whose forwarding headers
		// are believed. Empty means the peer address is always the client.
		TrustedProxies []string `mapstructure:"trusted_proxies"`
		RateLimit       struct {
			RPS   float64 `mapstructure:"rps"`
			Burst int     `mapstructure:"burst"`
		} `mapstructure:"rate_limit"`
	} `mapstructure:"server"`

	Database struct {
		// Type is the record store backend (memory, postgres, sqlite or redis).
		Type     string `mapstructure:"type"`
		Postgres struct {
			Host     string `mapstructure:"host"`
			Port     int    `mapstructure:"port"`
			User     string `mapstructure:"user"`
			Password string `mapstructure:"password"`
			DBName   string `mapstructure:"dbname"`
			UseSSL   bool   `mapstructure:"use_ssl"`
		} `mapstructure:"postgres"`
		SQLite struct {
			Path string `mapstructure:"path"`
		} `mapstructure:"sqlite"`
		Redis struct {
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
			Prefix   string `mapstructure:"prefix"`
		} `mapstructure:"redis"`
	} `mapstructure:"database"`

	Storage struct {
		// Type is the type of storage (local or minio).
		Type          string `mapstructure:"type"`
		MaxUploadSize int64  `mapstructure:"max_upload_size"`
		Local         struct {
			// Path is the path to the storage directory.
			Path string `mapstructure:"path"`
		} `mapstructure:"local"`
		MinIO struct {
			Endpoint        string `mapstructure:"endpoint"`
			AccessKeyID     string `mapstructure:"access_key_id"`
			SecretAccessKey string `mapstructure:"secret_access_key"`
			UseSSL          bool   `mapstructure:"use_ssl"`
			Bucket          string `mapstructure:"bucket"`
		} `mapstructure:"minio"`
	} `mapstructure:"storage"`

	Events struct {
		Enabled bool `mapstructure:"enabled"`
		Kafka   struct {
			Brokers []string `mapstructure:"brokers"`
			Topic   string   `mapstructure:"topic"`
		} `mapstructure:"kafka"`
	} `mapstructure:"events"`
}

// Validate checks the values that cannot be defaulted.
func (c *Configuration) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	if c.Server.RateLimit.RPS <= 0 || c.Server.RateLimit.Burst <= 0 {
		return errors.New("server.rate_limit rps and burst must be positive")
	}
	switch c.Database.Type {
	case "memory", "postgres", "sqlite", "redis":
	default:
		return fmt.Errorf("invalid database.type %q", c.Database.Type)
	}
	switch c.Storage.Type {
	case "local", "minio":
	default:
		return fmt.Errorf("invalid storage.type %q", c.Storage.Type)
	}
	if c.Storage.MaxUploadSize <= 0 {
		return errors.New("storage.max_upload_size must be positive")
	}
	if c.Events.Enabled && (len(c.Events.Kafka.Brokers) == 0 || c.Events.Kafka.Topic == "") {
		return errors.New("events.kafka brokers and topic are required when events are enabled")
	}
	return nil
}

// Load reads the configuration file at path, or searches /etc/coalhub/ and
// the working directory when path is empty. The embedded sample is used when
// no file is found. Environment variables prefixed with COALHUB_ override
// file values, e.g. COALHUB_DATABASE_TYPE.
func Load(path string) (*Configuration, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("coalhub")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults first, so every key is known to viper for env overrides.
	if err := v.ReadConfig(bytes.NewReader(DefaultConfig)); err != nil {
		return nil, fmt.Errorf("read default config: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("/etc/coalhub/")
		v.AddConfigPath(".")
	}
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Warning("No config file found, use default config")
	}

	var conf Configuration
	if err := v.Unmarshal(&conf, func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
		dc.ZeroFields = true
	}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Init loads the configuration into Config and sets up logging.
func Init(path string) error {
	log.SetFormatter(&nested.Formatter{})
	conf, err := Load(path)
	if err != nil {
		return err
	}
	level, _ := log.ParseLevel(conf.LogLevel)
	log.SetLevel(level)
	Config = conf
	log.WithField("database", conf.Database.Type).WithField("storage", conf.Storage.Type).Info("Loaded config")
	return nil
}
