package main

import (
	"context"
	"log/slog"
	"time"

	"go.bug.st/serial"

	"i4.energy/across/qube/engine"
)

const ppsPollInterval = 5 * time.Millisecond

// modemStatus is the part of serial.Port used to sample the DCD line.
type modemStatus interface {
	GetModemStatusBits() (*serial.ModemStatusBits, error)
}

// ppsDialer opens the GNSS receiver port and follows its DCD line, which
// carries the receiver's pulse-per-second output. Every rising edge calls
// Pulse until the dial context is done or the port is closed.
type ppsDialer struct {
	engine.SerialDialer
	Pulse  func()
	Logger *slog.Logger
}

func (d ppsDialer) Dial(ctx context.Context) (engine.Transport, error) {
	t, err := d.SerialDialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	port, ok := t.(modemStatus)
	if !ok {
		d.Logger.Warn("Port does not report modem status, PPS disabled", "port", d.PortName)
		return t, nil
	}
	go watchPPS(ctx, port, ppsPollInterval, d.Pulse, d.Logger)
	return t, nil
}

func watchPPS(ctx context.Context, port modemStatus, interval time.Duration, pulse func(), logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var high bool
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		bits, err := port.GetModemStatusBits()
		if err != nil {
			logger.Debug("PPS polling stopped", "error", err)
			return
		}
		if bits.DCD && !high {
			pulse()
		}
		high = bits.DCD
	}
}
