package engine

import (
	"context"
	"io"
	"sync"
)

// TestTransport is a test helper that simulates a blocking serial line using
// channels. Reads block until SendData queues bytes, like a real port would,
// and every Write is published on Written.
type TestTransport struct {
	mu       sync.Mutex
	incoming chan []byte
	written  chan []byte
	closed   bool
}

// NewTestTransport returns an open transport with nothing to read.
// It is exported for the tests of the device packages.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		incoming: make(chan []byte, 10),
		written:  make(chan []byte, 32),
	}
}

// Written delivers a copy of every frame written to the transport.
func (t *TestTransport) Written() <-chan []byte {
	return t.written
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	frame := make([]byte, len(p))
	copy(frame, p)
	select {
	case t.written <- frame:
	default:
	}
	return len(p), nil
}

func (t *TestTransport) Read(p []byte) (n int, err error) {
	data, ok := <-t.incoming
	if !ok {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.incoming)
	return nil
}

// SendData queues bytes as if the device had sent them. It is a no-op
// after Close.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.incoming <- []byte(data)
	}
}

// Dial lets a TestTransport act as its own Dialer.
func (t *TestTransport) Dial(_ context.Context) (Transport, error) {
	return t, nil
}
