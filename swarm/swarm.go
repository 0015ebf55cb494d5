// Package swarm implements the protocol engine of the Swarm satellite modems.
// The Tile and the M138 speak the same sentences and differ only in naming,
// the status report tag and whether restart takes a parameter.
package swarm

import (
	"context"
	"errors"
	"fmt"

	"i4.energy/across/qube/engine"
	"i4.energy/across/qube/nmea"
)

// MaxMessageSize is the largest application payload accepted by Send.
const MaxMessageSize = 192

// ErrMessageTooLong is returned by Send for payloads above MaxMessageSize.
var ErrMessageTooLong = errors.New("swarm: message too long")

// Variant selects the modem model.
type Variant struct {
	// Name is the default device name used on the console.
	Name string
	// Title heads help listings and the summary.
	Title string
	// StatusTag is the tag of unsolicited status reports.
	StatusTag    string
	RestartParam bool
}

var (
	Tile = Variant{Name: "tile", Title: "Swarm Tile", StatusTag: "TILE"}
	M138 = Variant{Name: "swarm", Title: "Swarm", StatusTag: "M138", RestartParam: true}
)

// ParseVariant maps a configuration value to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "tile", "":
		return Tile, nil
	case "m138":
		return M138, nil
	}
	return Variant{}, fmt.Errorf("swarm: unknown variant %q", s)
}

// Config configures a modem Device.
type Config struct {
	Device engine.DeviceConfig
	// HostID identifies this controller in position reports.
	HostID int
}

// Device is a Swarm modem bound to the engine.
type Device struct {
	*engine.Device[Model]
	variant Variant
	hostID  int
}

// New builds a modem device of variant v. The device name defaults to the
// variant name.
func New(v Variant, config Config) (*Device, error) {
	if config.Device.Name == "" {
		config.Device.Name = v.Name
	}
	spec := engine.Spec[Model]{
		Routes:   routes(),
		Commands: commands(v, config.Device.Name, config.HostID),
	}
	d, err := engine.NewDevice(spec, config.Device)
	if err != nil {
		return nil, fmt.Errorf("swarm: %w", err)
	}
	return &Device{Device: d, variant: v, hostID: config.HostID}, nil
}

// Variant returns the modem variant.
func (d *Device) Variant() Variant {
	return d.variant
}

// Send queues payload for transmission over the satellite network.
func (d *Device) Send(ctx context.Context, payload string) error {
	if len(payload) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLong, len(payload))
	}
	return d.Enqueue(ctx, nmea.Frame("TD", payload))
}

// PositionJSON returns the last reported position and time as JSON.
func (d *Device) PositionJSON() string {
	var out string
	d.WithModel(func(m *Model) {
		out = positionJSON(m, d.hostID)
	})
	return out
}

// ReportPosition sends the current position as a quoted text message.
func (d *Device) ReportPosition(ctx context.Context) error {
	return d.Send(ctx, `"`+d.PositionJSON()+`"`)
}

// Summary renders the operator summary.
func (d *Device) Summary() string {
	last := d.LastReceived()
	var out string
	d.WithModel(func(m *Model) {
		out = summary(d.variant, m, last)
	})
	return out
}

// Snapshot returns a copy of the model.
func (d *Device) Snapshot() Model {
	var m Model
	d.WithModel(func(cur *Model) {
		m = *cur
	})
	return m
}
