package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig configures the broker bridge. An empty Broker disables it.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// SendTopic carries {"message": "..."} requests for the modem
	SendTopic string `yaml:"send_topic"`
	// PositionTopic receives the modem position every PositionInterval.
	// Zero disables position publishing.
	PositionTopic    string        `yaml:"position_topic"`
	PositionInterval time.Duration `yaml:"position_interval"`
}

// Bridge connects the modem to an MQTT broker.
type Bridge struct {
	config MQTTConfig
	modem  Modem
	logger *slog.Logger
	client mqtt.Client
}

// NewBridge creates a bridge for modem. Nothing is connected until Run.
func NewBridge(config MQTTConfig, modem Modem, logger *slog.Logger) *Bridge {
	return &Bridge{config: config, modem: modem, logger: logger}
}

// Run connects to the broker, subscribes to the send topic and publishes
// positions until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(b.config.Broker)
	opts.SetClientID(b.config.ClientID)
	if b.config.Username != "" {
		opts.SetUsername(b.config.Username)
		opts.SetPassword(b.config.Password)
	}
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		b.logger.Warn("MQTT connection lost", "error", err)
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		b.logger.Info("MQTT connected", "topic", b.config.SendTopic)
		token := c.Subscribe(b.config.SendTopic, 0, func(_ mqtt.Client, m mqtt.Message) {
			if err := b.handleSend(ctx, m.Payload()); err != nil {
				b.logger.Error("Failed to queue MQTT message", "topic", m.Topic(), "error", err)
			}
		})
		if token.Wait() && token.Error() != nil {
			b.logger.Error("MQTT subscribe failed", "error", token.Error())
		}
	})

	b.client = mqtt.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect %s: %w", b.config.Broker, token.Error())
	}
	defer b.client.Disconnect(500)

	if b.config.PositionInterval <= 0 || b.config.PositionTopic == "" {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(b.config.PositionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			token := b.client.Publish(b.config.PositionTopic, 0, false, b.modem.PositionJSON())
			if token.Wait() && token.Error() != nil {
				b.logger.Error("MQTT publish failed", "topic", b.config.PositionTopic, "error", token.Error())
			}
		}
	}
}

func (b *Bridge) handleSend(ctx context.Context, payload []byte) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("bad payload: %w", err)
	}
	if req.Message == "" {
		return errors.New("'message' field is required")
	}
	if err := b.modem.Send(ctx, req.Message); err != nil {
		return err
	}
	b.logger.Info("Message queued", "source", "mqtt", "message_length", len(req.Message))
	return nil
}
