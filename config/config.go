package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	defaultPath = "./config/config.yaml"
	envPrefix   = "HUB_"
)

type HTTP struct {
	Addr         string        `yaml:"addr" env:"ADDR"`
	ReadTimeout  time.Duration `yaml:"readTimeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `yaml:"idleTimeout" env:"IDLE_TIMEOUT"`
	CORSOrigins  []string      `yaml:"corsOrigins" env:"CORS_ORIGINS" envSeparator:","`
}

type GRPC struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

type Logging struct {
	Env       string `yaml:"env" env:"ENV"`              // dev|stage|prod
	Service   string `yaml:"service" env:"SERVICE"`      // presence-hub
	Version   string `yaml:"version" env:"VERSION"`      // v0.1.0
	Backend   string `yaml:"backend" env:"BACKEND"`      // std|zap
	Level     string `yaml:"level" env:"LEVEL"`          // debug|info|warn|error
	AddSource bool   `yaml:"addSource" env:"ADD_SOURCE"` // false|true
	Debug     bool   `yaml:"debug" env:"DEBUG"`          // false|true
}

type Hub struct {
	MaxMessagesPerRoom int           `yaml:"maxMessagesPerRoom" env:"MAX_MESSAGES_PER_ROOM"`
	ReplayLimit        int           `yaml:"replayLimit" env:"REPLAY_LIMIT"`
	MaxMessageLen      int           `yaml:"maxMessageLen" env:"MAX_MESSAGE_LEN"`
	DeviceActiveWindow time.Duration `yaml:"deviceActiveWindow" env:"DEVICE_ACTIVE_WINDOW"`
	SendQueue          int           `yaml:"sendQueue" env:"SEND_QUEUE"`
	WriteTimeout       time.Duration `yaml:"writeTimeout" env:"WRITE_TIMEOUT"`
	PingEvery          time.Duration `yaml:"pingEvery" env:"PING_EVERY"`
}

type Presence struct {
	// Off keeps join_chat as the only thing that resets a user's idle timer.
	RefreshOnActivity bool `yaml:"refreshOnActivity" env:"REFRESH_ON_ACTIVITY"`
}

type Sweeper struct {
	Interval    time.Duration `yaml:"interval" env:"INTERVAL"`
	PresenceTTL time.Duration `yaml:"presenceTTL" env:"PRESENCE_TTL"`
	DeviceTTL   time.Duration `yaml:"deviceTTL" env:"DEVICE_TTL"`
}

type Config struct {
	HTTP     HTTP     `yaml:"http" envPrefix:"HTTP_"`
	GRPC     GRPC     `yaml:"grpc" envPrefix:"GRPC_"`
	Logging  Logging  `yaml:"logging" envPrefix:"LOG_"`
	Hub      Hub      `yaml:"hub" envPrefix:"HUB_"`
	Presence Presence `yaml:"presence" envPrefix:"PRESENCE_"`
	Sweeper  Sweeper  `yaml:"sweeper" envPrefix:"SWEEPER_"`
}

// LoadConfig reads YAML from CONFIG_PATH (default ./config/config.yaml), then
// applies HUB_* environment overrides. A missing default file is not an error.
func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = defaultPath
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":9090"
	}
	c.HTTP.ReadTimeout = durationOr(c.HTTP.ReadTimeout, 15*time.Second)
	c.HTTP.WriteTimeout = durationOr(c.HTTP.WriteTimeout, 30*time.Second)
	c.HTTP.IdleTimeout = durationOr(c.HTTP.IdleTimeout, 60*time.Second)
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{"*"}
	}

	if c.Logging.Service == "" {
		c.Logging.Service = "presence-hub"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.Logging.Backend != "std" && c.Logging.Backend != "zap" {
		return fmt.Errorf("logging.backend must be std or zap, got %q", c.Logging.Backend)
	}

	if c.Hub.MaxMessagesPerRoom <= 0 {
		c.Hub.MaxMessagesPerRoom = 1000
	}
	if c.Hub.ReplayLimit <= 0 {
		c.Hub.ReplayLimit = 50
	}
	if c.Hub.ReplayLimit > c.Hub.MaxMessagesPerRoom {
		return errors.New("hub.replayLimit must not exceed hub.maxMessagesPerRoom")
	}
	if c.Hub.MaxMessageLen <= 0 {
		c.Hub.MaxMessageLen = 4000
	}
	if c.Hub.SendQueue <= 0 {
		c.Hub.SendQueue = 64
	}
	c.Hub.DeviceActiveWindow = durationOr(c.Hub.DeviceActiveWindow, 30*time.Second)
	c.Hub.WriteTimeout = durationOr(c.Hub.WriteTimeout, 5*time.Second)
	c.Hub.PingEvery = durationOr(c.Hub.PingEvery, 15*time.Second)

	c.Sweeper.Interval = durationOr(c.Sweeper.Interval, 60*time.Second)
	c.Sweeper.PresenceTTL = durationOr(c.Sweeper.PresenceTTL, 300*time.Second)
	c.Sweeper.DeviceTTL = durationOr(c.Sweeper.DeviceTTL, 600*time.Second)
	if c.Sweeper.DeviceTTL < c.Hub.DeviceActiveWindow {
		return errors.New("sweeper.deviceTTL must not be shorter than hub.deviceActiveWindow")
	}
	return nil
}

func durationOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
