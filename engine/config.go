package engine

import (
	"log/slog"
	"time"
)

// Config configures a Link.
type Config struct {
	// Dialer opens the transport. Required.
	Dialer Dialer
	// StartupInterval spaces the startup frames written by Loop.
	StartupInterval time.Duration
	// Logger receives link events.
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.StartupInterval == 0 {
		c.StartupInterval = 250 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// ConfigBuilder assembles a validated Config.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithStartupInterval(d time.Duration) *ConfigBuilder {
	b.config.StartupInterval = d
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}

// DeviceConfig configures a Device.
type DeviceConfig struct {
	// Name identifies the device in logs, metrics and help listings.
	Name string
	// ResponseTimeout bounds each wait for a response-ready signal when the
	// command does not set its own.
	ResponseTimeout time.Duration
	// RepeatInterval is the pause between cycles of a repeated command.
	RepeatInterval time.Duration
	// QueueSize is the capacity of the outbound frame queue.
	QueueSize int
	Logger    *slog.Logger
	Metrics   *Metrics
}

func (c *DeviceConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "device"
	}
	if c.ResponseTimeout == 0 {
		c.ResponseTimeout = time.Second
	}
	if c.RepeatInterval == 0 {
		c.RepeatInterval = time.Second
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 5
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}
