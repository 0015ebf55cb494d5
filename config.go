package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string `yaml:"bind_address"`
	// TilePort is the path to the satellite modem's serial port (e.g. "/dev/ttyUSB0")
	TilePort string `yaml:"tile_port"`
	// TileBaud is the baud rate of the satellite modem's serial line
	TileBaud int `yaml:"tile_baud"`
	// TileVariant selects the modem command set ("tile" or "m138")
	TileVariant string `yaml:"tile_variant"`
	// HostID is reported in position messages
	HostID int `yaml:"host_id"`
	// GPSPort is the path to the GNSS receiver's serial port. Empty disables
	// the receiver.
	GPSPort string `yaml:"gps_port"`
	// GPSBaud is the baud rate of the GNSS receiver's serial line
	GPSBaud int `yaml:"gps_baud"`
	// GPSPPS enables the pulse-per-second time update from the receiver's
	// DCD line
	GPSPPS bool `yaml:"gps_pps"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `yaml:"log_level"`
	// Console starts the interactive operator console on stdin
	Console bool `yaml:"console"`
	// MQTT configures the optional broker bridge
	MQTT MQTTConfig `yaml:"mqtt"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.TilePort = "/dev/ttyUSB0"
		c.TileBaud = 115200
		c.TileVariant = "tile"
		c.GPSBaud = 9600
		c.LogLevel = "info"
		c.MQTT.ClientID = "qube"
		c.MQTT.SendTopic = "qube/send"
		c.MQTT.PositionTopic = "qube/position"
		return nil
	}
}

// WithFile loads configuration from a YAML file. Keys missing from the file
// keep their current values. An empty path is ignored, and so is a missing
// file when optional is set.
func WithFile(path string, optional bool) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			if optional && errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if port := os.Getenv("TILE_PORT"); port != "" {
			c.TilePort = port
		}

		if baud := os.Getenv("TILE_BAUD"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.TileBaud = b
			}
		}

		if variant := os.Getenv("TILE_VARIANT"); variant != "" {
			c.TileVariant = variant
		}

		if id := os.Getenv("HOST_ID"); id != "" {
			if h, err := strconv.Atoi(id); err == nil {
				c.HostID = h
			}
		}

		if port := os.Getenv("GPS_PORT"); port != "" {
			c.GPSPort = port
		}

		if baud := os.Getenv("GPS_BAUD"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.GPSBaud = b
			}
		}

		if pps := os.Getenv("GPS_PPS"); pps != "" {
			if p, err := strconv.ParseBool(pps); err == nil {
				c.GPSPPS = p
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if broker := os.Getenv("MQTT_BROKER"); broker != "" {
			c.MQTT.Broker = broker
		}

		if id := os.Getenv("MQTT_CLIENT_ID"); id != "" {
			c.MQTT.ClientID = id
		}

		if topic := os.Getenv("MQTT_TOPIC"); topic != "" {
			c.MQTT.SendTopic = topic
		}

		if user := os.Getenv("MQTT_USERNAME"); user != "" {
			c.MQTT.Username = user
		}

		if pass := os.Getenv("MQTT_PASSWORD"); pass != "" {
			c.MQTT.Password = pass
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "tile-port":
				c.TilePort = f.Value.String()
			case "tile-baud":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.TileBaud = b
				}
			case "tile-variant":
				c.TileVariant = f.Value.String()
			case "host-id":
				if h, err := strconv.Atoi(f.Value.String()); err == nil {
					c.HostID = h
				}
			case "gps-port":
				c.GPSPort = f.Value.String()
			case "gps-baud":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.GPSBaud = b
				}
			case "gps-pps":
				if p, err := strconv.ParseBool(f.Value.String()); err == nil {
					c.GPSPPS = p
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			case "mqtt-broker":
				c.MQTT.Broker = f.Value.String()
			case "console":
				if p, err := strconv.ParseBool(f.Value.String()); err == nil {
					c.Console = p
				}
			}
		})
		return nil
	}
}
