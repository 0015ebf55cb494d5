package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.uber.org/atomic"
)

const readBufferSize = 256

// Endpoint is the device side of a Link. *Device[M] implements it.
type Endpoint interface {
	Name() string
	Initialize() error
	Feed(p []byte)
	Outbound() <-chan []byte
	NextStartupFrame() ([]byte, bool)
}

// Link owns the transport of one device. It feeds received bytes into the
// device, writes queued frames, and walks the device through startup.
type Link struct {
	// transport provides the physical connection to the device
	transport Transport
	// endpoint is the device fed by this link
	endpoint Endpoint
	// config contains the link settings
	config Config
	logger *slog.Logger

	// closed indicates if the link has been shut down
	closed *atomic.Bool
	// running indicates if Loop is currently running
	running *atomic.Bool

	// loopCtx is cancelled by Close to stop a running Loop
	loopCtx    context.Context
	loopCancel context.CancelFunc
}

// NewLink dials the device transport and initializes the endpoint. The
// returned Link does no I/O until Loop is called.
func NewLink(ctx context.Context, endpoint Endpoint, config Config) (*Link, error) {
	if config.Dialer == nil {
		return nil, ErrNoDialer
	}
	if endpoint == nil {
		return nil, ErrNoEndpoint
	}
	config.setDefaults()

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint.Name(), err)
	}
	if err := endpoint.Initialize(); err != nil {
		transport.Close()
		return nil, fmt.Errorf("initialize %s: %w", endpoint.Name(), err)
	}

	l := &Link{
		transport: transport,
		endpoint:  endpoint,
		config:    config,
		logger:    config.Logger.With("device", endpoint.Name()),
		closed:    atomic.NewBool(false),
		running:   atomic.NewBool(false),
	}
	l.loopCtx, l.loopCancel = context.WithCancel(context.Background())
	return l, nil
}

// Loop is the only goroutine that touches the transport. It:
//
//  1. feeds every chunk read from the transport into the endpoint parser
//  2. writes frames queued by the endpoint
//  3. writes one startup frame per StartupInterval until the endpoint is ready
//
// Loop runs until ctx is cancelled, Close is called, or the transport fails.
// It returns io.EOF when the transport reaches end of file.
func (l *Link) Loop(ctx context.Context) error {
	if l.running.Swap(true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)
	if l.closed.Load() {
		return ErrAlreadyClosed
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(l.loopCtx, cancel)
	defer stop()

	chunks := make(chan []byte, 10)
	readErrs := make(chan error, 1)

	go func() {
		defer close(chunks)
		buf := make([]byte, readBufferSize)
		for {
			n, err := l.transport.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErrs <- err
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(l.config.StartupInterval)
	defer ticker.Stop()
	startup := ticker.C

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-startup:
			frame, ready := l.endpoint.NextStartupFrame()
			if ready {
				ticker.Stop()
				startup = nil
				l.logger.Info("Startup sequence complete")
				continue
			}
			if frame == nil {
				continue
			}
			if err := l.write(frame); err != nil {
				return err
			}

		case frame := <-l.endpoint.Outbound():
			if err := l.write(frame); err != nil {
				return err
			}

		case chunk, ok := <-chunks:
			if !ok {
				select {
				case err := <-readErrs:
					return fmt.Errorf("read error: %w", err)
				default:
					return io.EOF
				}
			}
			l.endpoint.Feed(chunk)
		}
	}
}

func (l *Link) write(frame []byte) error {
	if _, err := l.transport.Write(frame); err != nil {
		l.logger.Error("Failed to write frame", "frame", string(frame), "error", err)
		return fmt.Errorf("write frame %q: %w", frame, err)
	}
	l.logger.Debug("Frame written", "frame", string(frame))
	return nil
}

// Close stops the loop and closes the transport. After Close the link
// cannot be reused.
func (l *Link) Close() error {
	if l.closed.Swap(true) {
		return ErrAlreadyClosed
	}
	l.loopCancel()
	if l.transport != nil {
		return l.transport.Close()
	}
	return nil
}
