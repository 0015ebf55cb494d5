package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=engine

// Transport represents an established, bidirectional byte stream to a device.
//
// A Transport is assumed to be already connected and ready for use. Typical
// implementations include serial ports, pseudo terminals attached to a
// simulator, or in-memory fakes used for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to a device.
//
// Dialer abstracts how the connection is created and is intended to be used
// during Link construction only. Once a Transport is obtained, the Dialer is
// no longer needed.
type Dialer interface {
	// Dial creates and returns a connected Transport. It may block and
	// should respect cancellation of ctx.
	Dial(ctx context.Context) (Transport, error)
}

// DefaultBaudRate is used by SerialDialer when neither BaudRate nor Mode is set.
const DefaultBaudRate = 115200

// SerialDialer opens a device over a serial port using go.bug.st/serial.
type SerialDialer struct {
	// PortName is the OS name of the port, e.g. "/dev/ttyUSB0".
	PortName string
	// BaudRate is used when Mode is nil.
	BaudRate int
	// Mode overrides the line settings entirely when non-nil.
	Mode *serial.Mode
}

// Dial opens the configured port.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if d.PortName == "" {
		return nil, errors.New("qube: serial port name is required")
	}
	if ctx == nil {
		return nil, errors.New("qube: context is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		baud := d.BaudRate
		if baud <= 0 {
			baud = DefaultBaudRate
		}
		mode = &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", d.PortName, err)
	}
	return port, nil
}
