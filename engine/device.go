package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"i4.energy/across/qube/nmea"
)

// Direction tells the correlator whether a command goes on the wire and
// whether it waits for an answer.
type Direction int

const (
	// RequestReply transmits a frame and waits for the reply.
	RequestReply Direction = iota
	// ReplyOnly transmits nothing and waits for the next unsolicited report.
	ReplyOnly
	// RequestOnly transmits a frame and does not wait.
	RequestOnly
)

// Handler decodes one inbound sentence into the model. It runs with the
// device lock held and returns the response-ready bits to assert once the
// lock is released.
type Handler[M any] func(s nmea.Sentence, m *M) Flag

// Route binds an inbound tag to its handler.
type Route[M any] struct {
	Tag    string
	Handle Handler[M]
}

// Formatter renders part of the model as operator text. It runs with the
// device lock held.
type Formatter[M any] func(w io.Writer, m *M)

// Wire describes the frame sent for a command and the bit its reply sets.
type Wire struct {
	Flag      Flag
	Direction Direction
	Tag       string
	HasParam  bool
	// Default replaces an empty operator parameter.
	Default string
	// Timeout overrides DeviceConfig.ResponseTimeout when non-zero.
	Timeout time.Duration
}

// Frame templates the wire sentence for arg.
func (w *Wire) Frame(arg string) []byte {
	if !w.HasParam {
		return nmea.Frame(w.Tag)
	}
	if arg == "" {
		arg = w.Default
	}
	return nmea.Frame(w.Tag, arg)
}

// Command is one entry of a device's operator command table.
type Command[M any] struct {
	// Name is matched as a prefix of the operator's command word.
	Name string
	// Startup commands are sent once, in table order, during bring-up.
	Startup bool
	// Separator entries only appear in help listings.
	Separator bool
	// Wire is nil for commands answered locally.
	Wire   *Wire
	Usage  string
	Title  string
	Format Formatter[M]
	// Plan replaces the default request template when set.
	Plan Planner[M]
}

// Spec is everything that distinguishes one kind of device from another.
type Spec[M any] struct {
	Routes   []Route[M]
	Commands []Command[M]
}

// Device is one protocol engine instance bound to a physical peripheral.
// M is the data model its handlers decode into.
type Device[M any] struct {
	name           string
	logger         *slog.Logger
	metrics        *Metrics
	timeout        time.Duration
	repeatInterval time.Duration

	// mu guards model, lastReceived and cursor
	mu           sync.Mutex
	model        M
	lastReceived string
	cursor       int

	routes   []Route[M]
	commands []Command[M]

	signals   *Signals
	parser    *nmea.Parser
	outbound  chan []byte
	lifecycle *fsm.FSM
}

// NewDevice builds a Device from its tables. The device starts in
// StateNotStarted; call Initialize before executing commands.
func NewDevice[M any](spec Spec[M], config DeviceConfig) (*Device[M], error) {
	config.setDefaults()

	owners := make(map[Flag]string)
	for _, c := range spec.Commands {
		if c.Wire == nil || c.Wire.Flag == 0 {
			continue
		}
		if tag, ok := owners[c.Wire.Flag]; ok && tag != c.Wire.Tag {
			return nil, fmt.Errorf("%w: %s and %s", ErrFlagCollision, tag, c.Wire.Tag)
		}
		owners[c.Wire.Flag] = c.Wire.Tag
	}

	logger := config.Logger.With("device", config.Name)
	d := &Device[M]{
		name:           config.Name,
		logger:         logger,
		metrics:        config.Metrics,
		timeout:        config.ResponseTimeout,
		repeatInterval: config.RepeatInterval,
		routes:         spec.Routes,
		commands:       spec.Commands,
		signals:        NewSignals(),
		outbound:       make(chan []byte, config.QueueSize),
		lifecycle:      newLifecycle(logger),
	}
	d.parser = nmea.NewParser(d.Dispatch)
	d.parser.OnDrop(func(reason nmea.Drop) {
		d.metrics.dropped(d.name, reason)
		d.logger.Debug("Frame dropped", "reason", reason)
	})
	return d, nil
}

// Name returns the configured device name.
func (d *Device[M]) Name() string {
	return d.name
}

// Initialize moves the device into startup. Calling it again is a no-op.
func (d *Device[M]) Initialize() error {
	if !d.lifecycle.Is(StateNotStarted) {
		return nil
	}
	return advance(d.lifecycle, eventInitialize)
}

// State returns the current lifecycle state.
func (d *Device[M]) State() string {
	return d.lifecycle.Current()
}

// Feed passes received bytes to the device parser. Feed must only be called
// from one goroutine.
func (d *Device[M]) Feed(p []byte) {
	d.parser.Write(p)
}

// Dispatch routes a complete sentence to the first handler whose tag starts
// with the received tag.
func (d *Device[M]) Dispatch(s nmea.Sentence) {
	d.mu.Lock()
	d.lastReceived = s.Tag
	route := d.route(s.Tag)
	var bits Flag
	if route != nil {
		bits = route.Handle(s, &d.model)
	}
	d.mu.Unlock()

	if route == nil {
		d.metrics.sentence(d.name, resultUnhandled)
		d.logger.Debug("Unhandled sentence", "tag", s.Tag)
		return
	}
	if s.Verified {
		d.metrics.sentence(d.name, resultDispatched)
	} else {
		d.metrics.sentence(d.name, resultUnverified)
	}
	d.logger.Debug("Sentence dispatched", "tag", s.Tag, "verified", s.Verified)
	if bits != 0 {
		d.signals.Set(bits)
	}
}

func (d *Device[M]) route(tag string) *Route[M] {
	if tag == "" {
		return nil
	}
	for i := range d.routes {
		if strings.HasPrefix(d.routes[i].Tag, tag) {
			return &d.routes[i]
		}
	}
	return nil
}

// LastReceived returns the tag of the most recent inbound sentence.
func (d *Device[M]) LastReceived() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastReceived
}

// WithModel runs fn with the device lock held.
func (d *Device[M]) WithModel(fn func(m *M)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.model)
}

// Signals exposes the device's response-ready bits.
func (d *Device[M]) Signals() *Signals {
	return d.signals
}

// Enqueue hands frame to the transport. It blocks while the queue is full.
func (d *Device[M]) Enqueue(ctx context.Context, frame []byte) error {
	select {
	case d.outbound <- frame:
		d.metrics.frameQueued(d.name)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Outbound is drained by the Link that owns the device's transport.
func (d *Device[M]) Outbound() <-chan []byte {
	return d.outbound
}
